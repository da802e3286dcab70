package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
)

// ErrorResponse defines the standard error response structure.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Code    string            `json:"code,omitempty"`
	TraceID string            `json:"trace_id,omitempty"`
	Example map[string]string `json:"example,omitempty"`
	Details []FieldError      `json:"details,omitempty"`

	// Status is not serialized; it is used for logging.
	Status int `json:"-"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// RespondWithError writes resp with its status, filling in the request's
// trace ID.
func RespondWithError(w http.ResponseWriter, r *http.Request, resp ErrorResponse) {
	resp.TraceID = GetTraceID(r.Context())

	logger.FromContext(r.Context()).Debug("sending error response",
		slog.Int("status_code", resp.Status),
		slog.String("code", resp.Code),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method))

	RespondWithJSON(w, r, resp.Status, resp)
}

// RespondWithErrorAndLog writes resp and logs err in redacted form.
//
// Log level strategy:
// - 5xx errors: ERROR
// - 429 Too Many Requests: WARN
// - other 4xx errors: DEBUG
func RespondWithErrorAndLog(w http.ResponseWriter, r *http.Request, resp ErrorResponse, err error) {
	resp.TraceID = GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", resp.Status),
		slog.String("code", resp.Code),
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	level := slog.LevelDebug
	switch {
	case resp.Status >= http.StatusInternalServerError:
		level = slog.LevelError
	case resp.Status == http.StatusTooManyRequests:
		level = slog.LevelWarn
	}
	logger.FromContext(r.Context()).LogAttrs(r.Context(), level, "API error response", logAttrs...)

	RespondWithJSON(w, r, resp.Status, resp)
}

// RespondValidationError writes the 400 body for invalid request input.
func RespondValidationError(w http.ResponseWriter, r *http.Request, details []FieldError) {
	RespondWithError(w, r, ErrorResponse{
		Status:  http.StatusBadRequest,
		Error:   "Validation error",
		Code:    "VALIDATION_ERROR",
		Details: details,
	})
}
