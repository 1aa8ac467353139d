package domain

import "time"

// Session is one signed-in browser. The backend access token is stored
// sealed; TokenHash is the fingerprint of the cookie value, never the
// cookie itself.
type Session struct {
	ID          string
	TokenHash   string
	Username    string
	DisplayName string
	Role        string

	SealedAccessToken []byte
	TokenType         string

	ExpiresAt  time.Time
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
