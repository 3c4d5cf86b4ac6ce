package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kkosarev/tasks-api/internal/model"
	"github.com/kkosarev/tasks-api/internal/repo"
	"github.com/kkosarev/tasks-api/internal/service"
	"github.com/kkosarev/tasks-api/pkg/paginate"
	"github.com/kkosarev/tasks-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

// Routes регистрирует маршруты ресурса
func (h *TaskHandler) Routes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/active", h.ListActive)
		r.Get("/completed", h.ListCompleted)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/complete", h.Complete)
		r.Post("/{id}/activate", h.Activate)
	})
	r.Get("/stats", h.Stats)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	task, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err, "create", 0)
		return
	}

	h.logger.Info("task created", zap.Int64("id", task.ID), zap.String("title", task.Title))
	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task.Response())
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err, "get", id)
		return
	}
	respond.JSON(w, r, http.StatusOK, task.Response())
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ve := parseFilter(r)
	if ve != nil {
		respond.Fields(w, r, http.StatusBadRequest, ve.Fields)
		return
	}
	ordering := model.NormalizeOrdering(r.URL.Query().Get("ordering"))
	h.page(w, r, filter, ordering)
}

// ListActive и ListCompleted отдают списки с фиксированным статусом,
// query-фильтры к ним не применяются
func (h *TaskHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	status := model.StatusActive
	h.page(w, r, model.TaskFilter{Status: &status}, model.DefaultOrdering)
}

func (h *TaskHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	status := model.StatusCompleted
	h.page(w, r, model.TaskFilter{Status: &status}, model.DefaultOrdering)
}

func (h *TaskHandler) page(w http.ResponseWriter, r *http.Request, filter model.TaskFilter, ordering string) {
	page, err := parsePage(r)
	if err != nil {
		h.handleErrors(w, r, err, "list", 0)
		return
	}

	tasks, total, err := h.service.List(r.Context(), filter, ordering, page)
	if err != nil {
		h.handleErrors(w, r, err, "list", 0)
		return
	}

	results := make([]model.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		results = append(results, t.Response())
	}
	respond.JSON(w, r, http.StatusOK, paginate.New(r, total, page, h.service.PageSize(), results))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var req model.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleErrors(w, r, err, "update", id)
		return
	}

	h.logger.Info("task updated", zap.Int64("id", task.ID), zap.String("title", task.Title))
	respond.JSON(w, r, http.StatusOK, task.Response())
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	task, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err, "delete", id)
		return
	}

	h.logger.Info("task deleted", zap.Int64("id", task.ID), zap.String("title", task.Title))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	task, err := h.service.Complete(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err, "complete", id)
		return
	}

	h.logger.Info("task completed", zap.Int64("id", task.ID))
	respond.JSON(w, r, http.StatusOK, task.Response())
}

func (h *TaskHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	task, err := h.service.Activate(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err, "activate", id)
		return
	}

	h.logger.Info("task activated", zap.Int64("id", task.ID))
	respond.JSON(w, r, http.StatusOK, task.Response())
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.handleErrors(w, r, err, "stats", 0)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

// parseFilter разбирает query-параметры списка; неизвестный статус и
// нечитаемые даты отклоняются с ошибкой по полю
func parseFilter(r *http.Request) (model.TaskFilter, *service.ValidationError) {
	var filter model.TaskFilter
	ve := &service.ValidationError{}
	q := r.URL.Query()

	if status := q.Get("status"); status != "" {
		if !model.ValidStatus(status) {
			ve.Add("status", service.MsgInvalidStatus)
		}
		filter.Status = &status
	}
	if title := q.Get("title"); title != "" {
		filter.Title = &title
	}
	if search := q.Get("search"); search != "" {
		filter.Search = &search
	}
	if raw := q.Get("created_after"); raw != "" {
		if ts, err := parseTime(raw); err != nil {
			ve.Add("created_after", "Enter a valid date/time.")
		} else {
			filter.CreatedAfter = &ts
		}
	}
	if raw := q.Get("created_before"); raw != "" {
		if ts, err := parseTime(raw); err != nil {
			ve.Add("created_before", "Enter a valid date/time.")
		} else {
			filter.CreatedBefore = &ts
		}
	}

	if len(ve.Fields) > 0 {
		return filter, ve
	}
	return filter, nil
}

var timeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeFormats {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime: %q", raw)
}

func parsePage(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, paginate.ErrInvalidPage
	}
	return page, nil
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error, op string, id int64) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, repo.ErrorNotFound), errors.Is(err, paginate.ErrInvalidPage):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.As(err, &ve):
		respond.Fields(w, r, http.StatusBadRequest, ve.Fields)
	default:
		h.logger.Error("internal error", zap.String("op", op), zap.Int64("id", id), zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
