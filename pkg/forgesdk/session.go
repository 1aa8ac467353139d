package forgesdk

import (
	"context"
	"sync"

	"github.com/go-resty/resty/v2"
)

// Session is an explicit backend credential. It attaches the bearer token
// to each request it sends. Safe for concurrent use.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	accessToken string
	tokenType   string
}

// AccessToken returns the current access token, or "" once cleared.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// TokenType returns the token type reported at login, usually "bearer".
func (s *Session) TokenType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenType
}

// Clear drops the credential. Later calls fail with ErrNoCredential.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
}

func (s *Session) authRequest(ctx context.Context) (*resty.Request, error) {
	token := s.AccessToken()
	if token == "" {
		return nil, ErrNoCredential
	}
	return s.client.request(ctx).SetAuthToken(token), nil
}

// ============================================================================
// Current user
// ============================================================================

// CurrentUser returns the user the credential belongs to.
func (s *Session) CurrentUser(ctx context.Context) (*User, error) {
	req, err := s.authRequest(ctx)
	if err != nil {
		return nil, err
	}
	return send[User](req, methodGet, "/api/v1/auth/me")
}

// Logout tells the backend the session ended, then clears the credential
// whatever the outcome.
func (s *Session) Logout(ctx context.Context) error {
	req, err := s.authRequest(ctx)
	if err != nil {
		return err
	}
	defer s.Clear()

	return sendNoContent(req, methodPost, "/api/v1/auth/logout")
}
