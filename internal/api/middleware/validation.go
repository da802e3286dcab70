package middleware

import (
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
)

// ValidateJSON decodes the request body into a T, validates it with the
// struct's validate tags, and stores it in the request context for
// shared.BodyFromContext. Unknown fields are ignored. Every violation is
// reported in one 400 response.
func ValidateJSON[T any](next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body T
		if err := shared.DecodeJSON(r, &body); err != nil {
			shared.RespondValidationError(w, r, []shared.FieldError{
				{Field: "body", Message: "request body must be valid JSON"},
			})
			return
		}

		if details := shared.ValidateRequest(body); len(details) > 0 {
			shared.RespondValidationError(w, r, details)
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithBody(r.Context(), body)))
	})
}
