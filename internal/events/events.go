package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is something that happened in the domain.
type Event struct {
	// ID is a unique identifier for this event
	ID string `json:"id"`

	// Type names what happened, e.g. "task.deleted"
	Type string `json:"type"`

	// Payload is the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	OccurredAt time.Time `json:"occurredAt"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// New creates an Event of eventType with payload serialized as JSON.
func New(eventType string, payload any, occurredAt time.Time) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Payload:    data,
		OccurredAt: occurredAt.UTC(),
	}, nil
}

// EventHandler reacts to events. Handlers ignore types they do not handle.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter publishes events to interested handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
