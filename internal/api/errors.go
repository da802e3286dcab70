package api

import (
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/redact"
)

// productionInternalMessage replaces internal error details in production.
const productionInternalMessage = "Something went wrong. Please try again later."

// StatusForKind maps a domain error kind to its HTTP status code.
func StatusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuthRequired, domain.KindTokenExpired:
		return http.StatusUnauthorized
	case domain.KindInvalidToken, domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorTitles are the short "error" strings sent for each code.
var errorTitles = map[string]string{
	domain.CodeValidation:             "Validation error",
	domain.ErrAuthRequired.Code:       "Authentication required",
	domain.ErrTokenExpired.Code:       "Token expired",
	domain.ErrInvalidToken.Code:       "Invalid token",
	domain.ErrUserAlreadyExists.Code:  "User already exists",
	domain.ErrUserNotFound.Code:       "User not found",
	domain.ErrTaskNotFound.Code:       "Task not found",
	domain.ErrTaskNotOwned.Code:       "Access denied",
	domain.ErrAttachmentNotFound.Code: "Attachment not found",
}

// errorMessages override the domain message for codes whose clients expect
// a longer explanation.
var errorMessages = map[string]string{
	domain.ErrTokenExpired.Code:      "Your session has expired. Please login again.",
	domain.ErrInvalidToken.Code:      "The provided token is invalid.",
	domain.ErrUserAlreadyExists.Code: "A user with this email already exists.",
	domain.ErrUserNotFound.Code:      "No user found with the provided email.",
}

// ErrorHandler writes error responses for use case failures. Domain errors
// map to their kind's status and code; anything else is a 500 whose detail
// is hidden in production.
type ErrorHandler struct {
	production bool
}

// NewErrorHandler creates an ErrorHandler. production hides internal error
// details from clients.
func NewErrorHandler(production bool) *ErrorHandler {
	return &ErrorHandler{production: production}
}

// Response builds the client response for err.
func (h *ErrorHandler) Response(err error) shared.ErrorResponse {
	de, ok := domain.AsError(err)
	if !ok || de.Kind == domain.KindInternal {
		message := productionInternalMessage
		if !h.production && err != nil {
			message = redact.Error(err)
		}
		return shared.ErrorResponse{
			Status:  http.StatusInternalServerError,
			Error:   "Internal server error",
			Message: message,
			Code:    domain.CodeInternal,
		}
	}

	title, ok := errorTitles[de.Code]
	if !ok {
		title = de.Kind.String()
	}
	message, ok := errorMessages[de.Code]
	if !ok {
		message = de.Message
	}
	return shared.ErrorResponse{
		Status:  StatusForKind(de.Kind),
		Error:   title,
		Message: message,
		Code:    de.Code,
	}
}

// Handle writes the response for err and logs it.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, h.Response(err), err)
}
