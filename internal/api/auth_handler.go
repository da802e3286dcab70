package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users  service.UserService
	errors *ErrorHandler
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
// If logger is nil, a default logger will be used.
func NewAuthHandler(users service.UserService, errHandler *ErrorHandler, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:  users,
		errors: errHandler,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/users/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := requestBody[RegisterRequest](w, r)
	if !ok {
		return
	}

	result, err := h.users.Register(r.Context(), req.Email)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, result)
}

// Login handles POST /api/users/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := requestBody[LoginRequest](w, r)
	if !ok {
		return
	}

	result, err := h.users.Login(r.Context(), req.Email)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// RefreshToken handles POST /api/users/refresh-token. It issues a fresh
// token for the identity established by the authentication gate.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		h.errors.Handle(w, r, domain.ErrAuthRequired)
		return
	}

	token, err := h.users.RefreshToken(r.Context(), auth.Subject{UserID: identity.UserID, Email: identity.Email})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("token refreshed")
	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		Token:   token,
		UserID:  identity.UserID,
		Message: "Token refreshed successfully",
	})
}
