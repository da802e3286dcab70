// Package logger provides structured logging functionality for the application.
//
// It builds JSON slog loggers with a configurable level, optionally teeing
// output into a size-rotated file, and carries request-scoped loggers through
// context.Context.
package logger
