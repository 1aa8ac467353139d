package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	"github.com/aussiebroadwan/forgeconsole/internal/console/store"
	"github.com/aussiebroadwan/forgeconsole/internal/console/store/drivers/sqlite/gen"
)

type sessionsRepo struct {
	q *gen.Queries
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	err := r.q.CreateSession(ctx, gen.CreateSessionParams{
		ID:                s.ID,
		TokenHash:         s.TokenHash,
		Username:          s.Username,
		DisplayName:       s.DisplayName,
		Role:              s.Role,
		SealedAccessToken: s.SealedAccessToken,
		TokenType:         s.TokenType,
		ExpiresAt:         toMillis(s.ExpiresAt),
		CreatedAt:         toMillis(s.CreatedAt),
		LastSeenAt:        toMillis(s.LastSeenAt),
	})
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	row, err := r.q.GetSessionByTokenHash(ctx, tokenHash)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return mapSession(row), nil
}

func (r *sessionsRepo) TouchSession(ctx context.Context, id string, at time.Time) error {
	return r.q.TouchSession(ctx, gen.TouchSessionParams{LastSeenAt: toMillis(at), ID: id})
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	return r.q.DeleteSession(ctx, id)
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) ([]string, error) {
	return r.q.DeleteExpiredSessions(ctx, toMillis(now))
}

func (r *sessionsRepo) CountActiveSessions(ctx context.Context, now time.Time) (int64, error) {
	return r.q.CountActiveSessions(ctx, toMillis(now))
}

func mapSession(row gen.ConsoleSession) domain.Session {
	return domain.Session{
		ID:                row.ID,
		TokenHash:         row.TokenHash,
		Username:          row.Username,
		DisplayName:       row.DisplayName,
		Role:              row.Role,
		SealedAccessToken: row.SealedAccessToken,
		TokenType:         row.TokenType,
		ExpiresAt:         fromMillis(row.ExpiresAt),
		CreatedAt:         fromMillis(row.CreatedAt),
		LastSeenAt:        fromMillis(row.LastSeenAt),
	}
}
