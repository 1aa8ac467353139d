package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the console's own persistence. Clients and configurations live
// in the backend; the console only keeps its sessions.
type Store interface {
	Sessions() Sessions

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Sessions interface {
	// CreateSession inserts a session (id is provided by the caller via ULID).
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash looks a session up by its cookie fingerprint.
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error)

	// TouchSession records activity.
	TouchSession(ctx context.Context, id string, at time.Time) error

	// DeleteSession removes one session. Deleting a missing id is not an error.
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions removes sessions expired at now and returns their ids.
	DeleteExpiredSessions(ctx context.Context, now time.Time) ([]string, error)

	// CountActiveSessions counts sessions still valid at now.
	CountActiveSessions(ctx context.Context, now time.Time) (int64, error)
}
