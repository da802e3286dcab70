package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasks-api/internal/ratelimit"
)

// testRedisURL names the environment variable holding a disposable Redis.
const testRedisURL = "TASKS_TEST_REDIS_URL"

func TestLimiterKey(t *testing.T) {
	l := NewLimiter(nil, ratelimit.Policy{Requests: 1, Window: time.Second}, nil)
	assert.Equal(t, "tasks-api:ratelimit:10.0.0.1", l.Key("10.0.0.1"))
}

func TestConnectRejectsInvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "ftp://localhost:6379", nil)
	assert.ErrorContains(t, err, "invalid redis url")
}

func TestLimiterAgainstRedis(t *testing.T) {
	url := os.Getenv(testRedisURL)
	if url == "" {
		t.Skipf("%s not set", testRedisURL)
	}

	ctx := context.Background()
	client, err := Connect(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	l := NewLimiter(client, ratelimit.Policy{Requests: 2, Window: time.Minute}, nil)
	key := uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), l.Key(key)) })

	first, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)
	assert.LessOrEqual(t, first.ResetAfter, time.Minute)

	second, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, second.Allowed)

	third, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, third.Allowed)
	assert.Zero(t, third.Remaining)

	ttl, err := client.PTTL(ctx, l.Key(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
