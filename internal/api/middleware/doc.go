// Package middleware provides the HTTP middleware of the API: the
// authentication and task ownership gates, request body validation, trace
// ids, rate limiting and security headers.
package middleware
