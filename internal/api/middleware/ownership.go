package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// TaskIDParam is the URL parameter naming the task of a route.
const TaskIDParam = "id"

// TaskLookup loads a task by id.
type TaskLookup interface {
	GetTaskByID(ctx context.Context, id string) (*domain.Task, error)
}

// OwnershipMiddleware restricts task routes to the task's owner.
type OwnershipMiddleware struct {
	tasks  TaskLookup
	logger *slog.Logger
}

// NewOwnershipMiddleware creates a new OwnershipMiddleware.
// If logger is nil, a default logger will be used.
func NewOwnershipMiddleware(tasks TaskLookup, logger *slog.Logger) *OwnershipMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &OwnershipMiddleware{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "ownership_middleware")),
	}
}

// RequireTaskOwnership loads the task named by the {id} URL parameter and
// lets the request through only when the authenticated caller owns it. The
// loaded task is stored in the request context. It must run after
// Authenticate.
func (m *OwnershipMiddleware) RequireTaskOwnership(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		identity, ok := shared.IdentityFromContext(r.Context())
		if !ok {
			shared.RespondWithError(w, r, shared.ErrorResponse{
				Status: http.StatusUnauthorized,
				Error:  "User not authenticated",
				Code:   domain.ErrAuthRequired.Code,
			})
			return
		}

		taskID := chi.URLParam(r, TaskIDParam)
		task, err := m.tasks.GetTaskByID(r.Context(), taskID)
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			shared.RespondWithError(w, r, shared.ErrorResponse{
				Status: http.StatusNotFound,
				Error:  "Task not found",
				Code:   domain.ErrTaskNotFound.Code,
			})
			return
		case err != nil:
			shared.RespondWithErrorAndLog(w, r, shared.ErrorResponse{
				Status: http.StatusInternalServerError,
				Error:  "Internal server error",
				Code:   domain.CodeInternal,
			}, err)
			return
		}

		if !task.OwnedBy(identity.UserID) {
			log.Info("denied access to another user's task", slog.String("task_id", taskID))
			shared.RespondWithError(w, r, shared.ErrorResponse{
				Status: http.StatusForbidden,
				Error:  "Access denied. You can only access your own tasks.",
				Code:   domain.ErrTaskNotOwned.Code,
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithTask(r.Context(), task)))
	})
}
