package mocks

import (
	"context"

	"github.com/phrazzld/tasks-api/internal/ratelimit"
)

// MockLimiter implements ratelimit.Limiter for testing
type MockLimiter struct {
	AllowFn func(ctx context.Context, key string) (ratelimit.Result, error)

	// Default values used when AllowFn isn't defined
	Result ratelimit.Result
	Err    error

	// Keys records every key passed to Allow.
	Keys []string
}

// Ensure MockLimiter implements ratelimit.Limiter interface
var _ ratelimit.Limiter = (*MockLimiter)(nil)

// Allow implements the ratelimit.Limiter interface
func (m *MockLimiter) Allow(ctx context.Context, key string) (ratelimit.Result, error) {
	m.Keys = append(m.Keys, key)
	if m.AllowFn != nil {
		return m.AllowFn(ctx, key)
	}
	return m.Result, m.Err
}
