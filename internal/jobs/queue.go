package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")
)

// Queue is a bounded buffer of jobs waiting for a worker.
type Queue struct {
	mu     sync.Mutex
	jobs   chan Job
	logger *slog.Logger
	closed bool
}

// NewQueue creates a queue holding at most size jobs.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = 1
	}
	return &Queue{
		jobs:   make(chan Job, size),
		logger: logger,
	}
}

// Enqueue adds a job without blocking.
// Returns ErrQueueFull when the buffer is full and ErrQueueClosed after Close.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued",
			slog.String("job_id", job.ID()),
			slog.String("job_type", job.Type()),
			slog.Int("queue_len", len(q.jobs)),
			slog.Int("queue_cap", cap(q.jobs)))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// Close stops accepting jobs. Jobs already buffered can still be received.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("job queue closed")
	}
}

// Channel returns the receive side of the queue.
func (q *Queue) Channel() <-chan Job {
	return q.jobs
}

// Len reports the number of buffered jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}
