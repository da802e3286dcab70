package auth

import (
	"context"
	"time"
)

// TokenLifetime is how long an issued token stays valid.
const TokenLifetime = 24 * time.Hour

// Subject identifies the user a token is issued for.
type Subject struct {
	UserID string
	Email  string
}

// Claims is the verified or decoded content of a token.
type Claims struct {
	UserID    string
	Email     string
	Subject   string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// TokenService issues and checks signed bearer tokens.
type TokenService interface {
	// Issue signs a token for subject valid for TokenLifetime.
	Issue(ctx context.Context, subject Subject) (string, error)

	// Verify checks the signature, then the issuer, audience and expiry.
	// Returns ErrExpiredToken for an expired but otherwise valid token and
	// ErrInvalidToken for every other failure.
	Verify(ctx context.Context, token string) (*Claims, error)

	// Decode reads the claims without verifying anything. The boolean is
	// false when the token cannot be parsed.
	Decode(token string) (*Claims, bool)
}
