package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
)

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind     domain.Kind
		expected int
	}{
		{domain.KindValidation, http.StatusBadRequest},
		{domain.KindAuthRequired, http.StatusUnauthorized},
		{domain.KindTokenExpired, http.StatusUnauthorized},
		{domain.KindInvalidToken, http.StatusForbidden},
		{domain.KindNotFound, http.StatusNotFound},
		{domain.KindConflict, http.StatusConflict},
		{domain.KindForbidden, http.StatusForbidden},
		{domain.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusForKind(tt.kind))
		})
	}
}

func TestErrorHandlerResponse(t *testing.T) {
	internal := service.NewServiceError("task", "list", errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	tests := []struct {
		name            string
		production      bool
		err             error
		expectedStatus  int
		expectedCode    string
		expectedError   string
		expectedMessage string
	}{
		{
			name:            "conflict",
			err:             domain.ErrUserAlreadyExists,
			expectedStatus:  http.StatusConflict,
			expectedCode:    "USER_EXISTS",
			expectedError:   "User already exists",
			expectedMessage: "A user with this email already exists.",
		},
		{
			name:            "wrapped not found",
			err:             fmt.Errorf("get: %w", domain.ErrTaskNotFound),
			expectedStatus:  http.StatusNotFound,
			expectedCode:    "TASK_NOT_FOUND",
			expectedError:   "Task not found",
			expectedMessage: "task not found",
		},
		{
			name:            "validation keeps the domain message",
			err:             domain.ErrTitleTooLong,
			expectedStatus:  http.StatusBadRequest,
			expectedCode:    domain.CodeValidation,
			expectedError:   "Validation error",
			expectedMessage: "title must be at most 100 characters",
		},
		{
			name:            "expired token",
			err:             domain.ErrTokenExpired,
			expectedStatus:  http.StatusUnauthorized,
			expectedCode:    "TOKEN_EXPIRED",
			expectedError:   "Token expired",
			expectedMessage: "Your session has expired. Please login again.",
		},
		{
			name:            "internal in production hides detail",
			production:      true,
			err:             internal,
			expectedStatus:  http.StatusInternalServerError,
			expectedCode:    domain.CodeInternal,
			expectedError:   "Internal server error",
			expectedMessage: productionInternalMessage,
		},
		{
			name:            "internal in development reveals detail",
			err:             internal,
			expectedStatus:  http.StatusInternalServerError,
			expectedCode:    domain.CodeInternal,
			expectedError:   "Internal server error",
			expectedMessage: internal.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewErrorHandler(tt.production).Response(tt.err)

			assert.Equal(t, tt.expectedStatus, resp.Status)
			assert.Equal(t, tt.expectedCode, resp.Code)
			assert.Equal(t, tt.expectedError, resp.Error)
			assert.Equal(t, tt.expectedMessage, resp.Message)
		})
	}
}

func TestErrorHandlerHandleWritesBody(t *testing.T) {
	rec := httptest.NewRecorder()
	NewErrorHandler(true).Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), domain.ErrUserNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{
		"error": "User not found",
		"message": "No user found with the provided email.",
		"code": "USER_NOT_FOUND"
	}`, rec.Body.String())
}
