package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// Error handling principles:
// 1. Expected conditions are returned as domain sentinels (see internal/domain)
// 2. Unexpected failures are wrapped in ServiceError and classify as internal
// 3. The API layer maps domain kinds to HTTP status codes

// ServiceError wraps an unexpected failure with the service and operation
// it happened in.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Operation)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, operation string, err error) *ServiceError {
	return &ServiceError{Service: service, Operation: operation, Err: err}
}

// translateStoreError converts store errors into domain sentinels. A taken
// id surfaces as a conflict. Domain
// errors pass through; anything else becomes a ServiceError.
func translateStoreError(service, operation string, err error) error {
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		return domain.ErrTaskNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return domain.ErrUserNotFound
	case store.IsDuplicateError(err):
		return domain.ErrIDTaken
	}
	if _, ok := domain.AsError(err); ok {
		return err
	}
	return NewServiceError(service, operation, err)
}
