package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// requestBody returns the body validated by middleware.ValidateJSON, or
// decodes and validates it itself when the route has no such middleware.
// It writes the 400 response and returns false on invalid input.
func requestBody[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	if body, ok := shared.BodyFromContext[T](r.Context()); ok {
		return body, true
	}

	var body T
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.RespondValidationError(w, r, []shared.FieldError{
			{Field: "body", Message: "request body must be valid JSON"},
		})
		return body, false
	}
	if details := shared.ValidateRequest(body); len(details) > 0 {
		shared.RespondValidationError(w, r, details)
		return body, false
	}
	return body, true
}

// parseTaskFilters reads the listing query parameters. Unknown or
// out-of-range values fall back to their defaults instead of failing the
// request.
func parseTaskFilters(r *http.Request) domain.TaskFilters {
	q := r.URL.Query()
	return domain.TaskFilters{
		DateOrder:    domain.DateOrder(strings.ToLower(q.Get("dateOrder"))),
		StatusFilter: domain.StatusFilter(strings.ToLower(q.Get("statusFilter"))),
		SearchTerm:   q.Get("searchTerm"),
		Limit:        queryInt(q.Get("limit")),
		Page:         queryInt(q.Get("page")),
	}.Normalize()
}

// queryInt parses a positive integer parameter; anything else is zero.
func queryInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
