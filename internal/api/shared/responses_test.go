package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithJSON(rec, r, http.StatusCreated, map[string]string{"id": "t1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"t1"}`, rec.Body.String())
}

func TestRespondWithErrorIncludesTraceID(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx := context.WithValue(context.Background(), TraceIDKey, "trace-1")
	r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	RespondWithError(rec, r, ErrorResponse{
		Status:  http.StatusUnauthorized,
		Error:   "Token expired",
		Code:    "TOKEN_EXPIRED",
		Message: "Your session has expired. Please login again.",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{
		"error": "Token expired",
		"message": "Your session has expired. Please login again.",
		"code": "TOKEN_EXPIRED",
		"trace_id": "trace-1"
	}`, rec.Body.String())
}

func TestRespondWithErrorAndLogRedactsAndLevels(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedLevel string
	}{
		{"server error", http.StatusInternalServerError, "ERROR"},
		{"rate limited", http.StatusTooManyRequests, "WARN"},
		{"client error", http.StatusNotFound, "DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := logger.NewTestLogger()
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			r = r.WithContext(logger.WithLogger(r.Context(), log))

			cause := errors.New("dial postgres://admin:hunter2@db:5432/tasks failed")
			RespondWithErrorAndLog(rec, r, ErrorResponse{Status: tt.status, Error: "failed", Code: "X"}, cause)

			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "hunter2")

			entries, err := buf.Entries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.expectedLevel, entries[0]["level"])
			assert.NotContains(t, entries[0]["error"], "hunter2")
		})
	}
}

func TestRespondValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	RespondValidationError(rec, r, []FieldError{{Field: "email", Message: "email is required"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Validation error", body["error"])
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Len(t, body["details"], 1)
}
