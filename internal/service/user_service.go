package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// AuthResult is returned by registration and login.
type AuthResult struct {
	User   *domain.User `json:"user"`
	Token  string       `json:"token"`
	UserID string       `json:"userId"`
}

// UserService provides registration, login and token refresh.
type UserService interface {
	// Register creates a user for email and issues a token.
	// Returns domain.ErrUserAlreadyExists when the email is taken.
	Register(ctx context.Context, email string) (*AuthResult, error)

	// Login issues a token for an existing user.
	// Returns domain.ErrUserNotFound when no user has the email.
	Login(ctx context.Context, email string) (*AuthResult, error)

	// RefreshToken issues a fresh token for an authenticated identity.
	RefreshToken(ctx context.Context, identity auth.Subject) (string, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users  store.UserStore
	tokens auth.TokenService
	now    func() time.Time
	logger *slog.Logger
}

// Ensure UserServiceImpl implements UserService interface
var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService.
// If logger is nil, a default logger will be used.
func NewUserService(users store.UserStore, tokens auth.TokenService, logger *slog.Logger) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:  users,
		tokens: tokens,
		now:    time.Now,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// Register implements UserService.Register.
// The existence check and the insert are not atomic; two concurrent
// registrations of one email can both succeed.
func (s *UserServiceImpl) Register(ctx context.Context, email string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, s.now())
	if err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		log.Debug("attempted to register an existing email", slog.String("user_id", existing.ID))
		return nil, domain.ErrUserAlreadyExists
	case !store.IsNotFoundError(err):
		log.Error("failed to check for existing user", slog.String("error", err.Error()))
		return nil, translateStoreError("user", "register", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		log.Error("failed to save user", slog.String("error", err.Error()))
		return nil, translateStoreError("user", "register", err)
	}

	token, err := s.tokens.Issue(ctx, auth.Subject{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, NewServiceError("user", "register", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	return &AuthResult{User: user, Token: token, UserID: user.ID}, nil
}

// Login implements UserService.Login.
func (s *UserServiceImpl) Login(ctx context.Context, email string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown email")
		} else {
			log.Error("failed to look up user for login", slog.String("error", err.Error()))
		}
		return nil, translateStoreError("user", "login", err)
	}

	token, err := s.tokens.Issue(ctx, auth.Subject{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, NewServiceError("user", "login", err)
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return &AuthResult{User: user, Token: token, UserID: user.ID}, nil
}

// RefreshToken implements UserService.RefreshToken.
func (s *UserServiceImpl) RefreshToken(ctx context.Context, identity auth.Subject) (string, error) {
	if identity.UserID == "" {
		return "", domain.ErrAuthRequired
	}
	token, err := s.tokens.Issue(ctx, identity)
	if err != nil {
		return "", NewServiceError("user", "refresh_token", err)
	}
	return token, nil
}
