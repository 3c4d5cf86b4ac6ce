package repo

import (
	"context"

	"github.com/kkosarev/tasks-api/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, title, status string) (model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter, ordering string, limit, offset int) ([]model.Task, error)
	Count(ctx context.Context, filter model.TaskFilter) (int, error)
	Update(ctx context.Context, id int64, upd model.TaskUpdate) (model.Task, error)
	SetStatus(ctx context.Context, id int64, status string) (model.Task, error)
	Delete(ctx context.Context, id int64) (model.Task, error)
	Stats(ctx context.Context) (Stats, error)
}
