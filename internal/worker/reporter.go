package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kkosarev/tasks-api/internal/model"
	"github.com/kkosarev/tasks-api/internal/repo"
)

// StatsSource отдает сводку по задачам
type StatsSource interface {
	Stats(ctx context.Context) (repo.Stats, error)
}

// Reporter периодически пишет в лог количество задач по статусам
type Reporter struct {
	source   StatsSource
	logger   *zap.Logger
	interval time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
}

func NewReporter(source StatsSource, logger *zap.Logger, interval time.Duration) *Reporter {
	return &Reporter{
		source:   source,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (rp *Reporter) Start(ctx context.Context) {
	rp.logger.Info("Starting stats reporter", zap.Duration("interval", rp.interval))
	rp.wg.Add(1)
	go rp.run(ctx)
}

func (rp *Reporter) Stop() {
	close(rp.stop)
	rp.wg.Wait()
	rp.logger.Info("Stats reporter stopped")
}

func (rp *Reporter) run(ctx context.Context) {
	defer rp.wg.Done()

	ticker := time.NewTicker(rp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-rp.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			rp.report(ctx)
		}
	}
}

func (rp *Reporter) report(ctx context.Context) {
	stats, err := rp.source.Stats(ctx)
	if err != nil {
		rp.logger.Error("stats query failed", zap.Error(err))
		return
	}

	rp.logger.Info("task stats",
		zap.Int("total", stats.TotalTasks),
		zap.Int("active", stats.ByStatus[model.StatusActive]),
		zap.Int("completed", stats.ByStatus[model.StatusCompleted]),
	)
}
