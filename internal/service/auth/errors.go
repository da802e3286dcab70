package auth

import (
	"errors"

	"github.com/phrazzld/tasks-api/internal/domain"
)

// Token verification errors. They are the domain sentinels so callers can
// map them by kind without importing this package.
var (
	// ErrInvalidToken indicates a malformed token, a bad signature, or
	// claims that do not match this service.
	ErrInvalidToken = domain.ErrInvalidToken

	// ErrExpiredToken indicates a correctly signed token past its expiry.
	ErrExpiredToken = domain.ErrTokenExpired

	// ErrWeakSecret is returned when the signing secret is too short.
	ErrWeakSecret = errors.New("jwt secret must be at least 32 characters")
)
