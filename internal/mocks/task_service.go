package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
)

// MockTaskService implements service.TaskService for testing
type MockTaskService struct {
	// Custom behavior functions
	CreateTaskFn  func(ctx context.Context, userID string, input service.CreateTaskInput) (*domain.Task, error)
	GetTasksFn    func(ctx context.Context, userID string, filters domain.TaskFilters) ([]*domain.Task, error)
	GetTaskByIDFn func(ctx context.Context, id string) (*domain.Task, error)
	UpdateTaskFn  func(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTaskFn  func(ctx context.Context, id string) error

	// Default response values
	Task  *domain.Task
	Tasks []*domain.Task
	Err   error

	// Call tracking for verification
	mu          sync.Mutex
	LastUserID  string
	LastFilters domain.TaskFilters
	LastPatch   domain.TaskPatch
	DeletedIDs  []string
}

// Ensure MockTaskService implements service.TaskService interface
var _ service.TaskService = (*MockTaskService)(nil)

// CreateTask implements the service.TaskService interface
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	userID string,
	input service.CreateTaskInput,
) (*domain.Task, error) {
	m.mu.Lock()
	m.LastUserID = userID
	m.mu.Unlock()

	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, userID, input)
	}
	return m.Task, m.Err
}

// GetTasks implements the service.TaskService interface
func (m *MockTaskService) GetTasks(
	ctx context.Context,
	userID string,
	filters domain.TaskFilters,
) ([]*domain.Task, error) {
	m.mu.Lock()
	m.LastUserID = userID
	m.LastFilters = filters
	m.mu.Unlock()

	if m.GetTasksFn != nil {
		return m.GetTasksFn(ctx, userID, filters)
	}
	return m.Tasks, m.Err
}

// GetTaskByID implements the service.TaskService interface
func (m *MockTaskService) GetTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	if m.GetTaskByIDFn != nil {
		return m.GetTaskByIDFn(ctx, id)
	}
	return m.Task, m.Err
}

// UpdateTask implements the service.TaskService interface
func (m *MockTaskService) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	m.mu.Lock()
	m.LastPatch = patch
	m.mu.Unlock()

	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, id, patch)
	}
	return m.Task, m.Err
}

// DeleteTask implements the service.TaskService interface
func (m *MockTaskService) DeleteTask(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeletedIDs = append(m.DeletedIDs, id)
	m.mu.Unlock()

	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, id)
	}
	return m.Err
}
