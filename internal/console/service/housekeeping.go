package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/forgeconsole/internal/console/store"
)

// HousekeepingService periodically removes expired console sessions and
// the screen state that belonged to them.
type HousekeepingService struct {
	Store      store.Store
	Workspaces *Workspaces
	Logger     *slog.Logger
	Interval   time.Duration

	// Now is overridable in tests.
	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. If interval is 0 or
// negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, workspaces *Workspaces, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:      st,
		Workspaces: workspaces,
		Logger:     logger,
		Interval:   interval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each step is independent.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	sessions := s.Store.Sessions()

	ids, err := sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
	} else if len(ids) > 0 {
		if s.Workspaces != nil {
			s.Workspaces.Drop(ids...)
		}
		s.Logger.Debug("deleted expired sessions", "count", len(ids))
	}

	active, err := sessions.CountActiveSessions(ctx, now)
	if err != nil {
		s.Logger.Error("failed to count active sessions", "error", err)
		return
	}
	activeSessions.Set(float64(active))

	s.Logger.Info("housekeeping cleanup completed", "expired", len(ids), "active", active)
}
