package auth

import (
	"testing"
	"time"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/stretchr/testify/require"
)

// DefaultTestConfig returns the auth configuration used across tests.
func DefaultTestConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret: "test-jwt-secret-that-is-32-chars-long",
		Issuer:    "tasks-api",
		Audience:  "tasks-users",
	}
}

// NewTestTokenService creates a token service with the test configuration
// and the given clock. A nil clock means time.Now.
func NewTestTokenService(t *testing.T, now func() time.Time) TokenService {
	t.Helper()
	if now == nil {
		now = time.Now
	}
	svc, err := newHMACTokenService(DefaultTestConfig(), now, nil)
	require.NoError(t, err, "failed to create test token service")
	return svc
}
