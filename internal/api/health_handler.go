package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tasks-api/internal/api/shared"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and the reachability of the document store.
type HealthHandler struct {
	store  Pinger
	now    func() time.Time
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
// If logger is nil, a default logger will be used.
func NewHealthHandler(store Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{store: store, now: time.Now, logger: logger}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, HealthResponse{
			Status:    "unavailable",
			Timestamp: h.now().UTC(),
		})
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "OK", Timestamp: h.now().UTC()})
}
