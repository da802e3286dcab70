package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/events"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// CreateTaskInput carries the caller-supplied fields of a new task.
type CreateTaskInput struct {
	Title       string
	Description string
}

// TaskService provides the task use cases. Ownership is enforced before
// these are reached; only listing and creation take the caller's identity.
type TaskService interface {
	// CreateTask stores a pending task owned by userID (or the anonymous
	// owner when userID is empty).
	CreateTask(ctx context.Context, userID string, input CreateTaskInput) (*domain.Task, error)

	// GetTasks returns one page of userID's tasks. An empty page is valid.
	GetTasks(ctx context.Context, userID string, filters domain.TaskFilters) ([]*domain.Task, error)

	// GetTaskByID returns the task or domain.ErrTaskNotFound.
	GetTaskByID(ctx context.Context, id string) (*domain.Task, error)

	// UpdateTask applies patch and returns the updated task.
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes the task and emits a TaskDeletedEventType event.
	DeleteTask(ctx context.Context, id string) error
}

// TaskDeletedEventType is emitted after a task is removed.
const TaskDeletedEventType = "task.deleted"

// TaskDeletedPayload is the payload of a TaskDeletedEventType event.
type TaskDeletedPayload struct {
	UserID string `json:"userId"`
	TaskID string `json:"taskId"`
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	tasks  store.TaskStore
	events events.EventEmitter
	now    func() time.Time
	logger *slog.Logger
}

// Ensure TaskServiceImpl implements TaskService interface
var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a new TaskService. emitter may be nil, in which
// case no events are published.
// If logger is nil, a default logger will be used.
func NewTaskService(tasks store.TaskStore, emitter events.EventEmitter, logger *slog.Logger) *TaskServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		tasks:  tasks,
		events: emitter,
		now:    time.Now,
		logger: logger.With(slog.String("component", "task_service")),
	}
}

// CreateTask implements TaskService.CreateTask.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, userID string, input CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(userID, input.Title, input.Description, s.now())
	if err != nil {
		return nil, err
	}
	if task.UserID == domain.AnonymousOwnerID {
		log.Warn("creating task without an authenticated owner", slog.String("task_id", task.ID))
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, translateStoreError("task", "create", err)
	}
	return created, nil
}

// GetTasks implements TaskService.GetTasks.
func (s *TaskServiceImpl) GetTasks(
	ctx context.Context,
	userID string,
	filters domain.TaskFilters,
) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID, filters.Normalize())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, translateStoreError("task", "list", err)
	}
	return tasks, nil
}

// GetTaskByID implements TaskService.GetTaskByID.
func (s *TaskServiceImpl) GetTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError("task", "get", err)
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask.
// An empty patch only refreshes updatedAt.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, translateStoreError("task", "update", err)
	}
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask.
// A failure to publish the event is logged, not returned; the task itself
// is already gone.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return translateStoreError("task", "delete", err)
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return translateStoreError("task", "delete", err)
	}
	log.Info("task deleted", slog.String("task_id", id))

	if s.events == nil {
		return nil
	}
	event, err := events.New(TaskDeletedEventType, TaskDeletedPayload{UserID: task.UserID, TaskID: task.ID}, s.now())
	if err == nil {
		err = s.events.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Warn("failed to publish task deletion",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
	}
	return nil
}
