package store

import (
	"errors"
	"fmt"
)

// Repository errors. Entity-specific values wrap the generic ones so callers
// can match either level with errors.Is.
var (
	ErrNotFound  = errors.New("entity not found")
	ErrDuplicate = errors.New("entity already exists")

	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrIDExists is returned when a create targets an id already present in its collection.
	ErrIDExists = fmt.Errorf("%w: id", ErrDuplicate)
)

// IsNotFoundError reports whether err is, or wraps, ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is, or wraps, ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError records which entity and operation a backend failure hit.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Entity, e.Operation, e.Message)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the entity and operation it came from.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
