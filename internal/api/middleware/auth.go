package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

const bearerPrefix = "Bearer "

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	tokens auth.TokenService
	logger *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
// If logger is nil, a default logger will be used.
func NewAuthMiddleware(tokens auth.TokenService, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		tokens: tokens,
		logger: logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate verifies the bearer token and adds the caller's identity to
// the request context. A missing or malformed header and an expired token
// are 401; any other verification failure is 403.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			shared.RespondWithError(w, r, shared.ErrorResponse{
				Status:  http.StatusUnauthorized,
				Error:   "Authorization header required with Bearer token",
				Code:    "AUTH_REQUIRED",
				Example: map[string]string{"Authorization": "Bearer your-jwt-token"},
			})
			return
		}

		claims, err := m.tokens.Verify(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				log.Debug("rejected expired token")
				shared.RespondWithError(w, r, shared.ErrorResponse{
					Status:  http.StatusUnauthorized,
					Error:   "Token expired",
					Message: "Your session has expired. Please login again.",
					Code:    "TOKEN_EXPIRED",
				})
				return
			}
			log.Debug("rejected invalid token")
			shared.RespondWithError(w, r, shared.ErrorResponse{
				Status:  http.StatusForbidden,
				Error:   "Invalid token",
				Message: "The provided token is invalid.",
				Code:    "INVALID_TOKEN",
			})
			return
		}

		ctx := shared.WithIdentity(r.Context(), shared.Identity{UserID: claims.UserID, Email: claims.Email})
		ctx = logger.WithLogger(ctx, log.With(slog.String("user_id", claims.UserID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
