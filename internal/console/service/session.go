package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	"github.com/aussiebroadwan/forgeconsole/internal/console/store"
	"github.com/aussiebroadwan/forgeconsole/pkg/cryptox"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
	"github.com/aussiebroadwan/forgeconsole/pkg/idx"
	"github.com/aussiebroadwan/forgeconsole/pkg/jwtx"
	"github.com/aussiebroadwan/forgeconsole/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInactiveUser       = errors.New("inactive_user")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrSessionExpired     = errors.New("session_expired")
)

// AuthCheck selects how Resolve decides a session is still valid.
type AuthCheck string

const (
	// AuthCheckToken trusts the stored expiry.
	AuthCheckToken AuthCheck = "token"
	// AuthCheckRemote also asks the backend for the current user.
	AuthCheckRemote AuthCheck = "remote"
)

// DefaultSessionTTL bounds a console session when no TTL is configured.
const DefaultSessionTTL = 8 * time.Hour

// SessionService signs users in against the backend and keeps the resulting
// credential sealed in the console store.
type SessionService struct {
	Store  store.Store
	SDK    *forgesdk.SDKClient
	Sealer *cryptox.Sealer
	TTL    time.Duration
	Check  AuthCheck

	// Workspaces, when set, loses a session's screens as soon as the
	// session ends.
	Workspaces *Workspaces

	// Now is overridable in tests.
	Now func() time.Time
}

// LoginResult is what a successful Login hands back to the HTTP layer.
type LoginResult struct {
	// CookieToken goes into the browser cookie. Only its fingerprint is stored.
	CookieToken string
	Session     domain.Session
	Backend     *forgesdk.Session
	User        *forgesdk.User
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

// Login authenticates username against the backend and opens a console session.
func (s *SessionService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	backend, err := s.SDK.AuthenticateWithPassword(ctx, username, password)
	if err != nil {
		var apiErr *forgesdk.APIError
		if errors.As(err, &apiErr) && (apiErr.IsUnauthorized() || apiErr.StatusCode == 400 || apiErr.StatusCode == 422) {
			loginAttemptsTotal.WithLabelValues("rejected").Inc()
			l.Info("login rejected by backend", slog.String("username", username), slog.Int("status", apiErr.StatusCode))
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		loginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	user, err := backend.CurrentUser(ctx)
	if err != nil {
		loginAttemptsTotal.WithLabelValues("error").Inc()
		s.abandon(ctx, backend)
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	if !user.IsActive {
		loginAttemptsTotal.WithLabelValues("rejected").Inc()
		l.Info("login rejected for inactive user", slog.String("username", username))
		s.abandon(ctx, backend)
		return nil, ErrInactiveUser
	}

	expiresAt := now.Add(s.ttl())
	if claims, err := jwtx.ParseUnverified(backend.AccessToken()); err == nil {
		expiresAt = claims.ExpiresBefore(expiresAt)
	} else {
		l.Debug("backend token is not a readable jwt", "error", err)
	}

	sealed, err := s.Sealer.Seal([]byte(backend.AccessToken()))
	if err != nil {
		return nil, fmt.Errorf("failed to seal access token: %w", err)
	}

	cookieToken, err := cryptox.GenerateToken(cryptox.SessionTokenSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	sess := domain.Session{
		ID:                idx.NewAt(now).String(),
		TokenHash:         cryptox.FingerprintToken(cookieToken),
		Username:          user.Username,
		DisplayName:       user.DisplayName(),
		Role:              user.Role,
		SealedAccessToken: sealed,
		TokenType:         backend.TokenType(),
		ExpiresAt:         expiresAt,
		CreatedAt:         now,
		LastSeenAt:        now,
	}
	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		loginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	loginAttemptsTotal.WithLabelValues("success").Inc()
	activeSessions.Inc()
	l.Info("console session opened", slog.String("session_id", sess.ID), slog.String("username", sess.Username))

	return &LoginResult{
		CookieToken: cookieToken,
		Session:     sess,
		Backend:     backend,
		User:        user,
	}, nil
}

// Resolve maps a cookie token to its console session and a backend session
// carrying the unsealed credential.
func (s *SessionService) Resolve(ctx context.Context, cookieToken string) (domain.Session, *forgesdk.Session, error) {
	if cookieToken == "" {
		return domain.Session{}, nil, ErrSessionNotFound
	}

	l := slogx.FromContext(ctx)
	now := s.now()
	sessions := s.Store.Sessions()

	sess, err := sessions.GetSessionByTokenHash(ctx, cryptox.FingerprintToken(cookieToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, nil, ErrSessionNotFound
		}
		return domain.Session{}, nil, err
	}

	if sess.Expired(now) {
		s.end(ctx, sess.ID)
		return domain.Session{}, nil, ErrSessionExpired
	}

	token, err := s.Sealer.Open(sess.SealedAccessToken)
	if err != nil {
		// A rotated master key leaves rows nobody can open.
		l.Warn("failed to open sealed access token", "session_id", sess.ID, "error", err)
		s.end(ctx, sess.ID)
		return domain.Session{}, nil, ErrSessionExpired
	}
	backend := s.SDK.NewSessionFromToken(string(token), sess.TokenType)

	if s.Check == AuthCheckRemote {
		if _, err := backend.CurrentUser(ctx); err != nil {
			if forgesdk.IsUnauthorized(err) {
				s.end(ctx, sess.ID)
				return domain.Session{}, nil, ErrSessionExpired
			}
			return domain.Session{}, nil, err
		}
	}

	if err := sessions.TouchSession(ctx, sess.ID, now); err != nil {
		l.Debug("failed to touch session", "session_id", sess.ID, "error", err)
	} else {
		sess.LastSeenAt = now
	}

	return sess, backend, nil
}

// Logout ends sess. The backend logout is best effort; the local session is
// always removed.
func (s *SessionService) Logout(ctx context.Context, sess domain.Session, backend *forgesdk.Session) error {
	if backend != nil {
		if err := backend.Logout(ctx); err != nil {
			slogx.FromContext(ctx).Warn("backend logout failed", "session_id", sess.ID, "error", err)
		}
		backend.Clear()
	}

	s.dropWorkspace(sess.ID)

	if err := s.Store.Sessions().DeleteSession(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	activeSessions.Dec()
	slogx.FromContext(ctx).Info("console session closed", slog.String("session_id", sess.ID))
	return nil
}

func (s *SessionService) end(ctx context.Context, id string) {
	s.dropWorkspace(id)

	if err := s.Store.Sessions().DeleteSession(ctx, id); err != nil {
		slogx.FromContext(ctx).Warn("failed to delete ended session", "session_id", id, "error", err)
		return
	}
	activeSessions.Dec()
}

func (s *SessionService) dropWorkspace(id string) {
	if s.Workspaces != nil {
		s.Workspaces.Drop(id)
	}
}

// abandon gives back a backend token that never became a console session.
func (s *SessionService) abandon(ctx context.Context, backend *forgesdk.Session) {
	if err := backend.Logout(ctx); err != nil {
		slogx.FromContext(ctx).Debug("failed to release unused backend token", "error", err)
	}
	backend.Clear()
}
