package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/phrazzld/tasks-api/internal/domain"
)

// ContextKey is the type of the request context keys set by this package.
type ContextKey string

const (
	// IdentityContextKey holds the authenticated Identity.
	IdentityContextKey ContextKey = "identity"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TaskContextKey holds the task loaded by the ownership gate.
	TaskContextKey ContextKey = "task"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Email  string
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, id)
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(Identity)
	return id, ok && id.UserID != ""
}

// WithTask returns a copy of ctx carrying the task the request targets.
func WithTask(ctx context.Context, task *domain.Task) context.Context {
	return context.WithValue(ctx, TaskContextKey, task)
}

// TaskFromContext returns the task stored by the ownership gate.
func TaskFromContext(ctx context.Context) (*domain.Task, bool) {
	task, ok := ctx.Value(TaskContextKey).(*domain.Task)
	return task, ok && task != nil
}

// SetTraceID adds a trace ID to the context. The id of the active span is
// reused so logs, responses and exported traces correlate; without a span a
// random id is generated.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID(ctx))
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

func newTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// bodyContextKey holds the decoded and validated request body.
const bodyContextKey ContextKey = "body"

// WithBody returns a copy of ctx carrying the validated request body.
func WithBody(ctx context.Context, body any) context.Context {
	return context.WithValue(ctx, bodyContextKey, body)
}

// BodyFromContext returns the validated request body stored as a T.
func BodyFromContext[T any](ctx context.Context) (T, bool) {
	body, ok := ctx.Value(bodyContextKey).(T)
	return body, ok
}
