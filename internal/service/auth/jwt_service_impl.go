package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// hmacTokenService is an implementation of TokenService using HMAC-SHA256 signing.
type hmacTokenService struct {
	signingKey []byte
	issuer     string
	audience   string
	lifetime   time.Duration
	timeFunc   func() time.Time // Injectable for testing
	logger     *slog.Logger
}

// tokenClaims is the JWT payload.
type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Ensure hmacTokenService implements TokenService interface
var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a token service from the auth configuration.
// If logger is nil, a default logger will be used.
func NewTokenService(cfg config.AuthConfig, logger *slog.Logger) (TokenService, error) {
	return newHMACTokenService(cfg, time.Now, logger)
}

func newHMACTokenService(cfg config.AuthConfig, timeFunc func() time.Time, logger *slog.Logger) (*hmacTokenService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, ErrWeakSecret
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &hmacTokenService{
		signingKey: []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		lifetime:   TokenLifetime,
		timeFunc:   timeFunc,
		logger:     logger.With(slog.String("component", "token_service")),
	}, nil
}

// Issue implements TokenService.Issue.
func (s *hmacTokenService) Issue(ctx context.Context, subject Subject) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.timeFunc()

	claims := tokenClaims{
		UserID: subject.UserID,
		Email:  subject.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign token",
			slog.String("error", err.Error()),
			slog.String("user_id", subject.UserID))
		return "", fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}
	return signed, nil
}

// Verify implements TokenService.Verify.
// The signature is checked before any claim so an expired token with a bad
// signature is reported as invalid rather than expired.
func (s *hmacTokenService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		log.Debug("token rejected before claim validation", slog.String("error", err.Error()))
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	validator := jwt.NewValidator(
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err := validator.Validate(claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token expired", slog.String("user_id", claims.UserID))
			return nil, ErrExpiredToken
		}
		log.Debug("token claims rejected", slog.String("error", err.Error()))
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		log.Debug("token carries no user id")
		return nil, ErrInvalidToken
	}

	return toClaims(claims), nil
}

// Decode implements TokenService.Decode.
func (s *hmacTokenService) Decode(tokenString string) (*Claims, bool) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, false
	}
	return toClaims(claims), true
}

func toClaims(c *tokenClaims) *Claims {
	out := &Claims{
		UserID:   c.UserID,
		Email:    c.Email,
		Subject:  c.Subject,
		Issuer:   c.Issuer,
		Audience: []string(c.Audience),
		ID:       c.ID,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
