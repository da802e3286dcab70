package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure so the transport layer can map it to a
// status code without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthRequired
	KindTokenExpired
	KindInvalidToken
	KindNotFound
	KindConflict
	KindForbidden
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthRequired:
		return "auth_required"
	case KindTokenExpired:
		return "token_expired"
	case KindInvalidToken:
		return "invalid_token"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a tagged domain failure. Code is the stable machine-readable
// identifier sent to clients; Message is safe to show to them.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error

	// origin is the sentinel this error was derived from via With or Withf.
	origin *Error
}

// NewError creates a domain error with the given kind, code, and message.
func NewError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel e was derived from, so a
// sentinel still matches after With or Withf.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.origin != nil {
		return e.origin
	}
	return e
}

// With returns a copy of e wrapping cause.
func (e *Error) With(cause error) *Error {
	clone := *e
	clone.Err = cause
	clone.origin = e.root()
	return &clone
}

// Withf returns a copy of e whose message is extended with a formatted detail.
func (e *Error) Withf(format string, args ...any) *Error {
	clone := *e
	clone.Message = e.Message + ": " + fmt.Sprintf(format, args...)
	clone.origin = e.root()
	return &clone
}

// KindOf resolves the kind of err through any wrapping. Errors that carry no
// domain kind are internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// AsError returns the outermost *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Error codes shared by several sentinels.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// Sentinel domain errors.
var (
	ErrAuthRequired = NewError(KindAuthRequired, "AUTH_REQUIRED", "authentication required")
	ErrTokenExpired = NewError(KindTokenExpired, "TOKEN_EXPIRED", "token expired")
	ErrInvalidToken = NewError(KindInvalidToken, "INVALID_TOKEN", "invalid token")

	ErrUserAlreadyExists = NewError(KindConflict, "USER_EXISTS", "user already exists")
	ErrUserNotFound      = NewError(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrIDTaken           = NewError(KindConflict, "ID_TAKEN", "a record with this id already exists")

	ErrTaskNotFound = NewError(KindNotFound, "TASK_NOT_FOUND", "task not found")
	ErrTaskNotOwned = NewError(KindForbidden, "FORBIDDEN", "you can only access your own tasks")

	ErrAttachmentNotFound = NewError(KindNotFound, "ATTACHMENT_NOT_FOUND", "attachment not found")

	ErrEmptyEmail         = NewError(KindValidation, CodeValidation, "email is required")
	ErrInvalidEmail       = NewError(KindValidation, CodeValidation, "email must be a valid address")
	ErrEmptyTitle         = NewError(KindValidation, CodeValidation, "title is required")
	ErrTitleTooLong       = NewError(KindValidation, CodeValidation, "title must be at most 100 characters")
	ErrDescriptionTooLong = NewError(KindValidation, CodeValidation, "description must be at most 500 characters")
	ErrInvalidFileName    = NewError(KindValidation, CodeValidation, "file name is invalid")
	ErrEmptyAttachment    = NewError(KindValidation, CodeValidation, "file is required")
	ErrAttachmentTooLarge = NewError(KindValidation, CodeValidation, "file exceeds the upload size limit")
)
