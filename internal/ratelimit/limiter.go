package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one Allow call.
type Result struct {
	// Allowed is false once the key has used its quota for the window.
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAfter is the time left until the current window ends.
	ResetAfter time.Duration
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Policy is a request quota per window.
type Policy struct {
	Requests int
	Window   time.Duration
}

// NewResult builds the Result for the count-th request of a window with
// ttl remaining.
func NewResult(p Policy, count int64, ttl time.Duration) Result {
	remaining := p.Requests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	if ttl <= 0 || ttl > p.Window {
		ttl = p.Window
	}
	return Result{
		Allowed:    count <= int64(p.Requests),
		Limit:      p.Requests,
		Remaining:  remaining,
		ResetAfter: ttl,
	}
}
