package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/kkosarev/tasks-api/internal/model"
	"github.com/kkosarev/tasks-api/internal/repo"
	"github.com/kkosarev/tasks-api/pkg/paginate"
)

const maxTitleLength = 200

// Сообщения об ошибках валидации
const (
	MsgTitleRequired = "This field is required."
	MsgTitleBlank    = "Название задачи не может быть пустым"
	MsgTitleTooLong  = "Ensure this field has no more than 200 characters."
	MsgInvalidStatus = "Недопустимый статус. Допустимые значения: active, completed"
)

// ValidationError содержит ошибки валидации, сгруппированные по полям
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string { return "validation error" }

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// validateTitle проверяет название; сохраняется значение без
// окружающих пробелов
func validateTitle(ve *ValidationError, title string) string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		ve.Add("title", MsgTitleBlank)
		return trimmed
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLength {
		ve.Add("title", MsgTitleTooLong)
	}
	return trimmed
}

func validateStatus(ve *ValidationError, status string) {
	if !model.ValidStatus(status) {
		ve.Add("status", MsgInvalidStatus)
	}
}

type TaskService struct {
	repo     repo.TaskRepository
	pageSize int
}

func NewTaskService(repo repo.TaskRepository, pageSize int) *TaskService {
	return &TaskService{repo: repo, pageSize: pageSize}
}

func (s *TaskService) PageSize() int { return s.pageSize }

func (s *TaskService) Create(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	ve := &ValidationError{}

	var title string
	if req.Title == nil {
		ve.Add("title", MsgTitleRequired)
	} else {
		title = validateTitle(ve, *req.Title)
	}

	status := model.StatusActive // Статус по умолчанию
	if req.Status != nil {
		validateStatus(ve, *req.Status)
		status = *req.Status
	}

	if err := ve.orNil(); err != nil {
		return model.Task{}, err
	}
	return s.repo.Create(ctx, title, status)
}

func (s *TaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

// List возвращает страницу задач и общее количество совпадений
func (s *TaskService) List(ctx context.Context, filter model.TaskFilter, ordering string, page int) ([]model.Task, int, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	offset, err := paginate.Offset(total, page, s.pageSize)
	if err != nil {
		return nil, 0, err
	}

	tasks, err := s.repo.List(ctx, filter, ordering, s.pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Update применяет PUT/PATCH: валидируются только переданные поля,
// отсутствующие остаются без изменений
func (s *TaskService) Update(ctx context.Context, id int64, req model.UpdateTaskRequest) (model.Task, error) {
	ve := &ValidationError{}

	upd := model.TaskUpdate{Status: req.Status}
	if req.Title != nil {
		trimmed := validateTitle(ve, *req.Title)
		upd.Title = &trimmed
	}
	if req.Status != nil {
		validateStatus(ve, *req.Status)
	}

	if err := ve.orNil(); err != nil {
		return model.Task{}, err
	}
	return s.repo.Update(ctx, id, upd)
}

func (s *TaskService) Complete(ctx context.Context, id int64) (model.Task, error) {
	return s.repo.SetStatus(ctx, id, model.StatusCompleted)
}

func (s *TaskService) Activate(ctx context.Context, id int64) (model.Task, error) {
	return s.repo.SetStatus(ctx, id, model.StatusActive)
}

func (s *TaskService) Delete(ctx context.Context, id int64) (model.Task, error) {
	return s.repo.Delete(ctx, id)
}

func (s *TaskService) Stats(ctx context.Context) (repo.Stats, error) {
	return s.repo.Stats(ctx)
}
