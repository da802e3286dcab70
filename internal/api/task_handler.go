package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service"
)

// TaskHandler handles task API requests. Routes with a task id run behind
// the ownership gate.
type TaskHandler struct {
	tasks  service.TaskService
	errors *ErrorHandler
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
// If logger is nil, a default logger will be used.
func NewTaskHandler(tasks service.TaskService, errHandler *ErrorHandler, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		errors: errHandler,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// GetTasks handles GET /api/tasks.
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		h.errors.Handle(w, r, domain.ErrAuthRequired)
		return
	}

	filters := parseTaskFilters(r)
	tasks, err := h.tasks.GetTasks(r.Context(), identity.UserID, filters)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("listed tasks",
		slog.Int("count", len(tasks)),
		slog.Int("page", filters.Page),
		slog.Int("limit", filters.Limit))
	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// CreateTask handles POST /api/tasks. Without an authenticated identity the
// task is owned by the anonymous sentinel.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := requestBody[CreateTaskRequest](w, r)
	if !ok {
		return
	}

	identity, _ := shared.IdentityFromContext(r.Context())
	task, err := h.tasks.CreateTask(r.Context(), identity.UserID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetTaskByID handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	if task, ok := shared.TaskFromContext(r.Context()); ok {
		shared.RespondWithJSON(w, r, http.StatusOK, task)
		return
	}

	task, err := h.tasks.GetTaskByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTask handles PUT /api/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := requestBody[UpdateTaskRequest](w, r)
	if !ok {
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), chi.URLParam(r, "id"), domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
