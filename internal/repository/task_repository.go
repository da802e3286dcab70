package repository

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/tasks-api/internal/docstore"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// TaskRepository implements store.TaskStore over the tasks collection.
type TaskRepository struct {
	tasks  docstore.Collection
	logger *slog.Logger
}

// NewTaskRepository creates a TaskRepository backed by ds.
// If logger is nil, a default logger will be used.
func NewTaskRepository(ds docstore.Store, logger *slog.Logger) *TaskRepository {
	if ds == nil {
		panic("document store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskRepository{
		tasks:  ds.Collection(TasksCollection),
		logger: logger.With(slog.String("component", "task_repository")),
	}
}

// Ensure TaskRepository implements store.TaskStore interface
var _ store.TaskStore = (*TaskRepository)(nil)

// Create implements store.TaskStore.Create.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return nil, err
	}

	created, err := r.tasks.Create(ctx, taskDocument(task))
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID))
		return nil, mapError("task", "create", store.ErrTaskNotFound, err)
	}

	stored, err := decodeTask(created)
	if err != nil {
		return nil, store.NewStoreError("task", "create", "failed to decode stored task", err)
	}

	log.Info("task created successfully",
		slog.String("task_id", stored.ID),
		slog.String("user_id", stored.UserID))
	return stored, nil
}

// GetByID implements store.TaskStore.GetByID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)
	log.Debug("retrieving task by ID", slog.String("task_id", id))

	doc, err := r.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, mapError("task", "get", store.ErrTaskNotFound, err)
	}
	return decodeTask(doc)
}

// ListByUser implements store.TaskStore.ListByUser.
//
// Owner and status filters and the creation-time order are pushed down to
// the document store. A search term is matched case-insensitively against
// title and description after fetching at most domain.SearchFetchCap rows,
// so matches beyond the cap are not found. The page window is sliced last.
func (r *TaskRepository) ListByUser(
	ctx context.Context,
	userID string,
	filters domain.TaskFilters,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)
	f := filters.Normalize()

	conditions := []docstore.Condition{docstore.Where("userId", docstore.OpEqual, userID)}
	switch f.StatusFilter {
	case domain.StatusCompleted:
		conditions = append(conditions, docstore.Where("completed", docstore.OpEqual, true))
	case domain.StatusPending:
		conditions = append(conditions, docstore.Where("completed", docstore.OpEqual, false))
	}

	direction := docstore.Desc
	if f.DateOrder == domain.DateOrderAsc {
		direction = docstore.Asc
	}

	docs, err := r.tasks.Query(ctx, docstore.Query{
		Conditions: conditions,
		OrderBy:    &docstore.OrderBy{Field: docstore.FieldCreatedAt, Direction: direction},
		Limit:      f.FetchLimit(),
	})
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, mapError("task", "list", store.ErrTaskNotFound, err)
	}

	term := strings.ToLower(f.SearchTerm)
	matched := make([]*domain.Task, 0, len(docs))
	for _, doc := range docs {
		task, err := decodeTask(doc)
		if err != nil {
			return nil, store.NewStoreError("task", "list", "failed to decode task", err)
		}
		if term != "" && !matchesSearch(task, term) {
			continue
		}
		matched = append(matched, task)
	}

	page := window(matched, f.Offset(), f.Limit)
	log.Debug("listed tasks",
		slog.String("user_id", userID),
		slog.Int("fetched", len(docs)),
		slog.Int("returned", len(page)))
	return page, nil
}

func matchesSearch(t *domain.Task, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(t.Title), lowerTerm) ||
		strings.Contains(strings.ToLower(t.Description), lowerTerm)
}

func window(tasks []*domain.Task, offset, limit int) []*domain.Task {
	if offset >= len(tasks) {
		return []*domain.Task{}
	}
	end := offset + limit
	if end > len(tasks) {
		end = len(tasks)
	}
	return tasks[offset:end]
}

// Update implements store.TaskStore.Update.
func (r *TaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	doc, err := r.tasks.Update(ctx, id, patchDocument(patch))
	if err != nil {
		return nil, mapError("task", "update", store.ErrTaskNotFound, err)
	}

	log.Info("task updated successfully", slog.String("task_id", id))
	return decodeTask(doc)
}

// Delete implements store.TaskStore.Delete.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if err := r.tasks.Delete(ctx, id); err != nil {
		return mapError("task", "delete", store.ErrTaskNotFound, err)
	}
	return nil
}
