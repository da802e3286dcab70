package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. Identity is the email address alone;
// there is no credential beyond control of the address.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser creates a new User with a fresh id and the given creation time.
// Returns an error if validation fails.
func NewUser(email string, now time.Time) (*User, error) {
	user := &User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now.UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// validateEmailFormat performs a shape check only: a non-empty local part,
// an '@', and a domain with an inner dot. The HTTP layer applies the stricter
// validator rule before this is reached.
func validateEmailFormat(email string) bool {
	local, domainPart, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	dot := strings.LastIndexByte(domainPart, '.')
	return dot > 0 && dot < len(domainPart)-1 && !strings.Contains(domainPart, "@")
}
