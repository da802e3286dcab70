package mocks

import (
	"context"

	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// MockTokenService implements auth.TokenService for testing
type MockTokenService struct {
	// IssueFn allows test cases to mock the Issue behavior
	IssueFn func(ctx context.Context, subject auth.Subject) (string, error)

	// VerifyFn allows test cases to mock the Verify behavior
	VerifyFn func(ctx context.Context, token string) (*auth.Claims, error)

	// DecodeFn allows test cases to mock the Decode behavior
	DecodeFn func(token string) (*auth.Claims, bool)

	// Default values used when functions aren't explicitly defined
	Token     string
	Claims    *auth.Claims
	Err       error
	VerifyErr error
}

// Ensure MockTokenService implements auth.TokenService interface
var _ auth.TokenService = (*MockTokenService)(nil)

// Issue implements the auth.TokenService interface
func (m *MockTokenService) Issue(ctx context.Context, subject auth.Subject) (string, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, subject)
	}
	return m.Token, m.Err
}

// Verify implements the auth.TokenService interface
func (m *MockTokenService) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	return m.Claims, m.VerifyErr
}

// Decode implements the auth.TokenService interface
func (m *MockTokenService) Decode(token string) (*auth.Claims, bool) {
	if m.DecodeFn != nil {
		return m.DecodeFn(token)
	}
	return m.Claims, m.Claims != nil
}
