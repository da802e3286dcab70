// Package shared holds the request context values and JSON helpers used by
// both the API handlers and the middleware.
package shared
