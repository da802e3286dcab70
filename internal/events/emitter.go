package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// InMemoryEventEmitter dispatches events synchronously to the handlers
// registered in this process.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// Ensure InMemoryEventEmitter implements EventEmitter interface
var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
// If logger is nil, a default logger will be used.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler adds a handler that receives every later event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

// EmitEvent implements EventEmitter. Every handler sees the event even when
// an earlier one fails; the failures are joined into the returned error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	log := logger.FromContextOrDefault(ctx, e.logger).With(
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type))

	e.mu.RLock()
	handlers := append([]EventHandler(nil), e.handlers...)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		log.Warn("no handlers registered for event")
		return nil
	}
	log.Debug("emitting event", slog.Int("handler_count", len(handlers)))

	var errs []error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.Error("handler failed to process event",
				slog.String("error", err.Error()),
				slog.Int("handler_index", i))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
