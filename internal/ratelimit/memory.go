package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryLimiter keeps counters in process. Counters are per instance, so
// several replicas each enforce the full quota.
type MemoryLimiter struct {
	policy  Policy
	now     func() time.Time
	mu      sync.Mutex
	windows map[string]*window
}

// Ensure MemoryLimiter implements Limiter interface
var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter creates a limiter enforcing policy.
func NewMemoryLimiter(policy Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:  policy,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow implements Limiter.Allow.
func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.sweep(now)
		w = &window{resetAt: now.Add(l.policy.Window)}
		l.windows[key] = w
	}
	w.count++

	return NewResult(l.policy, w.count, w.resetAt.Sub(now)), nil
}

// sweep drops expired windows. Callers hold l.mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
}
