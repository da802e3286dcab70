// Package api contains the HTTP handlers for users, tasks and attachments.
// Handlers decode requests, call the service layer and write the JSON
// envelopes defined in api/shared. Domain errors become status codes in
// errors.go.
package api
