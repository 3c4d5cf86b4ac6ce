package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kkosarev/tasks-api/internal/model"
	"github.com/kkosarev/tasks-api/internal/repo"
	"github.com/kkosarev/tasks-api/pkg/paginate"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, title, status string) (model.Task, error) {
	args := m.Called(ctx, title, status)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, id int64) (model.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter model.TaskFilter, ordering string, limit, offset int) ([]model.Task, error) {
	args := m.Called(ctx, filter, ordering, limit, offset)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Count(ctx context.Context, filter model.TaskFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, id int64, upd model.TaskUpdate) (model.Task, error) {
	args := m.Called(ctx, id, upd)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) SetStatus(ctx context.Context, id int64, status string) (model.Task, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) (model.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Stats(ctx context.Context) (repo.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repo.Stats), args.Error(1)
}

func strPtr(s string) *string { return &s }

func TestTaskService_Create(t *testing.T) {
	tests := []struct {
		name       string
		req        model.CreateTaskRequest
		setupMock  func(*MockTaskRepository)
		wantFields []string
	}{
		{
			name: "status defaults to active",
			req:  model.CreateTaskRequest{Title: strPtr("Buy milk")},
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, "Buy milk", model.StatusActive).
					Return(model.Task{ID: 1, Title: "Buy milk", Status: model.StatusActive}, nil)
			},
		},
		{
			name: "explicit completed status",
			req:  model.CreateTaskRequest{Title: strPtr("Done already"), Status: strPtr(model.StatusCompleted)},
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, "Done already", model.StatusCompleted).
					Return(model.Task{ID: 2, Title: "Done already", Status: model.StatusCompleted}, nil)
			},
		},
		{
			name: "title is trimmed before persisting",
			req:  model.CreateTaskRequest{Title: strPtr("  Buy milk  ")},
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, "Buy milk", model.StatusActive).
					Return(model.Task{ID: 3, Title: "Buy milk", Status: model.StatusActive}, nil)
			},
		},
		{
			name:       "missing title",
			req:        model.CreateTaskRequest{},
			setupMock:  func(m *MockTaskRepository) {},
			wantFields: []string{"title"},
		},
		{
			name:       "blank title",
			req:        model.CreateTaskRequest{Title: strPtr("   ")},
			setupMock:  func(m *MockTaskRepository) {},
			wantFields: []string{"title"},
		},
		{
			name:       "title longer than 200 characters",
			req:        model.CreateTaskRequest{Title: strPtr(strings.Repeat("x", 201))},
			setupMock:  func(m *MockTaskRepository) {},
			wantFields: []string{"title"},
		},
		{
			name:       "invalid status",
			req:        model.CreateTaskRequest{Title: strPtr("Task"), Status: strPtr("pending")},
			setupMock:  func(m *MockTaskRepository) {},
			wantFields: []string{"status"},
		},
		{
			name:       "blank title and invalid status reported together",
			req:        model.CreateTaskRequest{Title: strPtr(""), Status: strPtr("done")},
			setupMock:  func(m *MockTaskRepository) {},
			wantFields: []string{"title", "status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			service := NewTaskService(mockRepo, 10)
			result, err := service.Create(context.Background(), tt.req)

			if len(tt.wantFields) > 0 {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				for _, field := range tt.wantFields {
					assert.NotEmpty(t, ve.Fields[field])
				}
			} else {
				require.NoError(t, err)
				assert.NotZero(t, result.ID)
			}

			// Хранилище не трогается при ошибке валидации
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_List(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		setupMock func(*MockTaskRepository)
		wantTotal int
		wantErr   error
	}{
		{
			name: "first page",
			page: 1,
			setupMock: func(m *MockTaskRepository) {
				m.On("Count", mock.Anything, mock.Anything).Return(25, nil)
				m.On("List", mock.Anything, mock.Anything, model.DefaultOrdering, 10, 0).
					Return([]model.Task{{ID: 1}}, nil)
			},
			wantTotal: 25,
		},
		{
			name: "second page uses offset",
			page: 2,
			setupMock: func(m *MockTaskRepository) {
				m.On("Count", mock.Anything, mock.Anything).Return(25, nil)
				m.On("List", mock.Anything, mock.Anything, model.DefaultOrdering, 10, 10).
					Return([]model.Task{{ID: 11}}, nil)
			},
			wantTotal: 25,
		},
		{
			name: "page beyond range",
			page: 4,
			setupMock: func(m *MockTaskRepository) {
				m.On("Count", mock.Anything, mock.Anything).Return(25, nil)
			},
			wantErr: paginate.ErrInvalidPage,
		},
		{
			name: "first page of empty result",
			page: 1,
			setupMock: func(m *MockTaskRepository) {
				m.On("Count", mock.Anything, mock.Anything).Return(0, nil)
				m.On("List", mock.Anything, mock.Anything, model.DefaultOrdering, 10, 0).
					Return([]model.Task{}, nil)
			},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			service := NewTaskService(mockRepo, 10)
			_, total, err := service.List(context.Background(), model.TaskFilter{}, model.DefaultOrdering, tt.page)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantTotal, total)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_Update(t *testing.T) {
	tests := []struct {
		name       string
		req        model.UpdateTaskRequest
		setupMock  func(*MockTaskRepository)
		wantFields []string
	}{
		{
			name: "title only",
			req:  model.UpdateTaskRequest{Title: strPtr("  New title  ")},
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(upd model.TaskUpdate) bool {
					return upd.Title != nil && *upd.Title == "New title" && upd.Status == nil
				})).Return(model.Task{ID: 1, Title: "New title", Status: model.StatusActive}, nil)
			},
		},
		{
			name: "status only",
			req:  model.UpdateTaskRequest{Status: strPtr(model.StatusCompleted)},
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(upd model.TaskUpdate) bool {
					return upd.Title == nil && upd.Status != nil && *upd.Status == model.StatusCompleted
				})).Return(model.Task{ID: 1, Title: "Old title", Status: model.StatusCompleted}, nil)
			},
		},
		{
			name: "no fields refreshes nothing but updated_at",
			req:  model.UpdateTaskRequest{},
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, int64(1), model.TaskUpdate{}).
					Return(model.Task{ID: 1, Title: "Old title", Status: model.StatusActive}, nil)
			},
		},
		{
			name:       "blank title rejected",
			req:        model.UpdateTaskRequest{Title: strPtr("   ")},
			setupMock:  func(m *MockTaskRepository) {},
			wantFields: []string{"title"},
		},
		{
			name:       "invalid status rejected",
			req:        model.UpdateTaskRequest{Status: strPtr("archived")},
			setupMock:  func(m *MockTaskRepository) {},
			wantFields: []string{"status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			service := NewTaskService(mockRepo, 10)
			_, err := service.Update(context.Background(), 1, tt.req)

			if len(tt.wantFields) > 0 {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				for _, field := range tt.wantFields {
					assert.NotEmpty(t, ve.Fields[field])
				}
			} else {
				require.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_CompleteActivate(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("SetStatus", mock.Anything, int64(1), model.StatusCompleted).
		Return(model.Task{ID: 1, Status: model.StatusCompleted}, nil)
	mockRepo.On("SetStatus", mock.Anything, int64(1), model.StatusActive).
		Return(model.Task{ID: 1, Status: model.StatusActive}, nil)

	service := NewTaskService(mockRepo, 10)

	completed, err := service.Complete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, completed.Status)

	activated, err := service.Activate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, activated.Status)

	mockRepo.AssertExpectations(t)
}

func TestTaskService_Delete(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("Delete", mock.Anything, int64(7)).
		Return(model.Task{}, repo.ErrorNotFound)

	service := NewTaskService(mockRepo, 10)
	_, err := service.Delete(context.Background(), 7)

	assert.ErrorIs(t, err, repo.ErrorNotFound)
	mockRepo.AssertExpectations(t)
}
