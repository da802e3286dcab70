package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/tasks-api/internal/ratelimit"
)

// DefaultKeyPrefix namespaces limiter counters.
const DefaultKeyPrefix = "tasks-api:ratelimit:"

// Limiter is a fixed-window limiter whose counters live in Redis, so every
// replica shares one quota per key.
type Limiter struct {
	client goredis.Cmdable
	policy ratelimit.Policy
	prefix string
	logger *slog.Logger
}

// Ensure Limiter implements ratelimit.Limiter interface
var _ ratelimit.Limiter = (*Limiter)(nil)

// NewLimiter creates a limiter enforcing policy.
// If logger is nil, a default logger will be used.
func NewLimiter(client goredis.Cmdable, policy ratelimit.Policy, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		client: client,
		policy: policy,
		prefix: DefaultKeyPrefix,
		logger: logger.With(slog.String("component", "redis_limiter")),
	}
}

// Key returns the Redis key holding the counter for key.
func (l *Limiter) Key(key string) string {
	return l.prefix + key
}

// Allow implements ratelimit.Limiter.Allow. The counter is incremented and
// its remaining lifetime read in one round trip; the first request of a
// window sets the expiry.
func (l *Limiter) Allow(ctx context.Context, key string) (ratelimit.Result, error) {
	redisKey := l.Key(key)

	var incr *goredis.IntCmd
	var ttl *goredis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return ratelimit.Result{}, fmt.Errorf("rate limit counter: %w", err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		if err := l.client.PExpire(ctx, redisKey, l.policy.Window).Err(); err != nil {
			return ratelimit.Result{}, fmt.Errorf("rate limit expiry: %w", err)
		}
		remaining = l.policy.Window
	}

	result := ratelimit.NewResult(l.policy, incr.Val(), remaining)
	if !result.Allowed {
		l.logger.Debug("rate limit exceeded", slog.Int64("count", incr.Val()))
	}
	return result, nil
}
