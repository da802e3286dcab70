package docstore

import "errors"

var (
	// ErrNotFound is returned when no document has the requested id.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate is returned when creating a document whose id is taken.
	ErrDuplicate = errors.New("document already exists")

	// ErrInvalidQuery is returned for malformed field names, operators or limits.
	ErrInvalidQuery = errors.New("invalid query")
)
