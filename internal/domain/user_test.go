package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	user, err := NewUser("test@example.com", now)

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, now.UTC(), user.CreatedAt)
	assert.Equal(t, time.UTC, user.CreatedAt.Location())
}

func TestNewUserGeneratesDistinctIDs(t *testing.T) {
	a, err := NewUser("a@example.com", time.Now())
	require.NoError(t, err)
	b, err := NewUser("a@example.com", time.Now())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestUserValidate(t *testing.T) {
	tests := []struct {
		email   string
		wantErr error
	}{
		{"user@example.com", nil},
		{"User.Name+tag@sub.example.org", nil},
		{"", ErrEmptyEmail},
		{"invalidemail", ErrInvalidEmail},
		{"@example.com", ErrInvalidEmail},
		{"user@", ErrInvalidEmail},
		{"user@example", ErrInvalidEmail},
		{"user@example.", ErrInvalidEmail},
		{"user@@example.com", ErrInvalidEmail},
		{"us er@example.com", ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := (&User{ID: "u1", Email: tt.email}).Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
