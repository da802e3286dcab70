package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrUnknownType is returned when a stored job has no registered factory.
var ErrUnknownType = errors.New("unknown job type")

// Job is a unit of background work.
type Job interface {
	// ID returns the job's unique identifier.
	ID() string

	// Type returns the job type used to find its factory on recovery.
	Type() string

	// Payload returns the data needed to rebuild the job.
	Payload() []byte

	// Execute runs the job.
	Execute(ctx context.Context) error
}

// Record is the persisted form of a job.
type Record struct {
	ID        string
	Type      string
	Payload   []byte
	Status    Status
	Error     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Store persists jobs and their status transitions.
type Store interface {
	// Save persists a new job in the pending state.
	Save(ctx context.Context, job Job) error

	// UpdateStatus records a status transition. errMsg is stored for failures.
	UpdateStatus(ctx context.Context, id string, status Status, errMsg string) error

	// ListByStatus returns jobs in the given status. A positive olderThan
	// restricts the result to jobs whose last transition is at least that old.
	ListByStatus(ctx context.Context, status Status, olderThan time.Duration) ([]Record, error)
}

// Factory rebuilds a job from its stored record.
type Factory func(rec Record) (Job, error)

// Registry maps job types to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds the factory for jobType, replacing any previous one.
func (r *Registry) Register(jobType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[jobType] = f
}

// Build rebuilds the job described by rec.
func (r *Registry) Build(rec Record) (Job, error) {
	r.mu.RLock()
	f, ok := r.factories[rec.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, rec.Type)
	}
	return f(rec)
}

// Observer is notified when a job finishes.
type Observer interface {
	JobFinished(jobType string, status Status, elapsed time.Duration)
}
