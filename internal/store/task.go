package store

import (
	"context"

	"github.com/phrazzld/tasks-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task. The stored creation time is returned on the task.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// ListByUser returns one page of the owner's tasks selected by filters.
	// An empty page is a valid result.
	ListByUser(ctx context.Context, userID string, filters domain.TaskFilters) ([]*domain.Task, error)

	// Update applies the supplied fields of patch to the task and returns the result.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task by ID. Deleting an absent task is not an error.
	Delete(ctx context.Context, id string) error
}
