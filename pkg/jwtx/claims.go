package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Claims are the parts of a ForgeERP access token the console reads.
// The backend signs with a key the console never sees, so these are
// hints for session bookkeeping, never an authorization decision.
type Claims struct {
	jwt.RegisteredClaims

	// Role is set by some backend versions; empty otherwise.
	Role string `json:"role,omitempty"`
}

// ParseUnverified decodes the token payload without checking the signature.
func ParseUnverified(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims, nil
}

// ExpiresBefore returns the earlier of the token exp and limit. Tokens
// without exp are bounded by limit alone.
func (c *Claims) ExpiresBefore(limit time.Time) time.Time {
	if c.ExpiresAt == nil || c.ExpiresAt.After(limit) {
		return limit
	}
	return c.ExpiresAt.Time
}

// ValidateExpiry ensures the token hasn’t expired (exp) and isn’t before nbf.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
