package model

import (
	"strings"
	"time"
)

// Статусы задачи
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// StatusDisplay возвращает отображаемое название статуса
func StatusDisplay(status string) string {
	switch status {
	case StatusActive:
		return "Активна"
	case StatusCompleted:
		return "Завершена"
	}
	return status
}

func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusCompleted
}

type Task struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskResponse — полное представление задачи в ответах API
type TaskResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	StatusDisplay string    `json:"status_display"`
	IsActive      bool      `json:"is_active"`
	IsCompleted   bool      `json:"is_completed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (t Task) Response() TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Status:        t.Status,
		StatusDisplay: StatusDisplay(t.Status),
		IsActive:      t.Status == StatusActive,
		IsCompleted:   t.Status == StatusCompleted,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

type CreateTaskRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

// UpdateTaskRequest — тело PUT/PATCH; отсутствующие поля не меняются
type UpdateTaskRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

// TaskUpdate — набор изменяемых полей для репозитория
type TaskUpdate struct {
	Title  *string
	Status *string
}

// TaskFilter — условия выборки, объединяются через AND
type TaskFilter struct {
	Status        *string
	Title         *string
	Search        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

const DefaultOrdering = "-created_at"

var orderingFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"status":     true,
}

// NormalizeOrdering проверяет параметр ordering, неизвестные значения
// заменяются сортировкой по умолчанию
func NormalizeOrdering(raw string) string {
	field := strings.TrimPrefix(raw, "-")
	if !orderingFields[field] {
		return DefaultOrdering
	}
	return raw
}
