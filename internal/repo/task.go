package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kkosarev/tasks-api/internal/model"
)

var ErrorNotFound = errors.New("not found")

const taskColumns = "id, title, status, created_at, updated_at"

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, title, status string) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, status)
		VALUES ($1, $2)
		RETURNING `+taskColumns+`
	`, title, status).Scan(
		&t.ID, &t.Title, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id).Scan(
		&t.ID, &t.Title, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

// likeEscaper экранирует спецсимволы LIKE, чтобы подстрочные фильтры
// искали значение буквально
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildFilter собирает WHERE-условия; все фильтры объединяются через AND
func buildFilter(filter model.TaskFilter) (string, []interface{}) {
	conds := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.Title != nil {
		add(`title ILIKE '%%' || $%d || '%%' ESCAPE '\'`, likeEscaper.Replace(*filter.Title))
	}
	if filter.Search != nil {
		add(`title ILIKE '%%' || $%d || '%%' ESCAPE '\'`, likeEscaper.Replace(*filter.Search))
	}
	if filter.CreatedAfter != nil {
		add("created_at >= $%d", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		add("created_at <= $%d", *filter.CreatedBefore)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var orderColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"status":     "status",
}

// orderBy переводит параметр ordering в ORDER BY; колонки берутся только
// из белого списка, id добавляется для стабильного порядка
func orderBy(ordering string) string {
	dir := "ASC"
	field := ordering
	if strings.HasPrefix(ordering, "-") {
		dir = "DESC"
		field = ordering[1:]
	}
	col, ok := orderColumns[field]
	if !ok {
		return "ORDER BY created_at DESC, id DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id DESC", col, dir)
}

func (r *TaskRepo) List(ctx context.Context, filter model.TaskFilter, ordering string, limit, offset int) ([]model.Task, error) {
	where, args := buildFilter(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT %s FROM tasks%s %s LIMIT $%d OFFSET $%d",
		taskColumns, where, orderBy(ordering), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, limit)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Count(ctx context.Context, filter model.TaskFilter) (int, error) {
	where, args := buildFilter(filter)

	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM tasks"+where, args...).Scan(&count)
	return count, err
}

func (r *TaskRepo) Update(ctx context.Context, id int64, upd model.TaskUpdate) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($2, title),
		    status = COALESCE($3, status),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+taskColumns+`
	`, id, upd.Title, upd.Status).Scan(
		&t.ID, &t.Title, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) SetStatus(ctx context.Context, id int64, status string) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+taskColumns+`
	`, id, status).Scan(
		&t.ID, &t.Title, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) Delete(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		DELETE FROM tasks
		WHERE id = $1
		RETURNING `+taskColumns,
		id).Scan(
		&t.ID, &t.Title, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

// Stats — сводка по задачам
type Stats struct {
	TotalTasks int            `json:"total_tasks"`
	ByStatus   map[string]int `json:"by_status"`
}

func (r *TaskRepo) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByStatus: make(map[string]int)}

	rows, err := r.pool.Query(ctx, "SELECT status, COUNT(*) FROM tasks GROUP BY status")
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.ByStatus[status] = count
		stats.TotalTasks += count
	}
	return stats, rows.Err()
}
