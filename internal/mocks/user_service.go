package mocks

import (
	"context"

	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// MockUserService implements service.UserService for testing
type MockUserService struct {
	RegisterFn     func(ctx context.Context, email string) (*service.AuthResult, error)
	LoginFn        func(ctx context.Context, email string) (*service.AuthResult, error)
	RefreshTokenFn func(ctx context.Context, identity auth.Subject) (string, error)

	// Default values used when functions aren't explicitly defined
	Result *service.AuthResult
	Token  string
	Err    error
}

// Ensure MockUserService implements service.UserService interface
var _ service.UserService = (*MockUserService)(nil)

// Register implements the service.UserService interface
func (m *MockUserService) Register(ctx context.Context, email string) (*service.AuthResult, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, email)
	}
	return m.Result, m.Err
}

// Login implements the service.UserService interface
func (m *MockUserService) Login(ctx context.Context, email string) (*service.AuthResult, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, email)
	}
	return m.Result, m.Err
}

// RefreshToken implements the service.UserService interface
func (m *MockUserService) RefreshToken(ctx context.Context, identity auth.Subject) (string, error) {
	if m.RefreshTokenFn != nil {
		return m.RefreshTokenFn(ctx, identity)
	}
	return m.Token, m.Err
}
