// Package blob defines the object storage port used for task attachments
// and an in-memory implementation of it.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("blob object not found")

// Object describes a stored object.
type Object struct {
	Path        string
	ContentType string
	Size        int64
	Updated     time.Time
}

// Store reads and writes objects addressed by slash-separated paths.
type Store interface {
	// Upload writes r to path, replacing any existing object. It returns the
	// object's public URL when uploads are public, otherwise "".
	Upload(ctx context.Context, path string, r io.Reader, contentType string) (string, error)

	// Delete removes the object at path. Returns ErrNotFound when absent.
	Delete(ctx context.Context, path string) error

	// SignedURL returns a time-limited read URL for the object at path.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)

	// List returns the objects whose path starts with prefix, ordered by path.
	List(ctx context.Context, prefix string) ([]Object, error)
}
