package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/forgeconsole/internal/console/crud"
	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	"github.com/aussiebroadwan/forgeconsole/internal/console/service"
	"github.com/aussiebroadwan/forgeconsole/internal/console/store"
	"github.com/aussiebroadwan/forgeconsole/internal/console/store/drivers/sqlite"
	"github.com/aussiebroadwan/forgeconsole/pkg/cryptox"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk/forgesdktest"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

var yes = crud.ConfirmFunc(func(string) bool { return true })

type fixture struct {
	backend    *forgesdktest.Server
	store      *sqlite.Store
	sessions   *service.SessionService
	workspaces *service.Workspaces
	clock      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := forgesdktest.New(t)
	backend.AddUser("admin", "secret", forgesdk.User{FullName: ptr("Ada Admin"), Role: "admin", IsActive: true})
	backend.AddUser("ghost", "secret", forgesdk.User{IsActive: false})

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "console.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sealer, err := cryptox.NewSealer(make([]byte, 32))
	require.NoError(t, err)

	f := &fixture{
		backend:    backend,
		store:      st,
		workspaces: service.NewWorkspaces(domain.IntegerValueTypes),
		clock:      time.Now().UTC(),
	}
	f.sessions = &service.SessionService{
		Store:      st,
		SDK:        forgesdk.NewSDKClient(backend.URL),
		Sealer:     sealer,
		TTL:        time.Hour,
		Check:      service.AuthCheckToken,
		Workspaces: f.workspaces,
		Now:        func() time.Time { return f.clock },
	}
	return f
}

func (f *fixture) login(t *testing.T) *service.LoginResult {
	t.Helper()
	res, err := f.sessions.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	return res
}

func TestSessionLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores a sealed session under the cookie fingerprint", func(t *testing.T) {
		f := newFixture(t)
		res := f.login(t)

		require.NotEmpty(t, res.CookieToken)
		require.Equal(t, "Ada Admin", res.Session.DisplayName)
		require.Equal(t, "admin", res.Session.Role)
		require.NotContains(t, string(res.Session.SealedAccessToken), res.Backend.AccessToken())

		stored, err := f.store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(res.CookieToken))
		require.NoError(t, err)
		require.Equal(t, res.Session.ID, stored.ID)
	})

	t.Run("expiry is bounded by the backend token", func(t *testing.T) {
		f := newFixture(t)
		res := f.login(t)

		// The fake backend issues 30 minute tokens; the console TTL is an hour.
		require.True(t, res.Session.ExpiresAt.Before(f.clock.Add(31*time.Minute)))
		require.True(t, res.Session.ExpiresAt.After(f.clock.Add(29*time.Minute)))
	})

	t.Run("expiry is bounded by the ttl", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.TTL = 10 * time.Minute
		res := f.login(t)

		require.Equal(t, f.clock.Add(10*time.Minute), res.Session.ExpiresAt)
	})

	t.Run("wrong password keeps the backend detail", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.sessions.Login(ctx, "admin", "wrong")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)

		var apiErr *forgesdk.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, "Incorrect username or password", apiErr.Detail)

		n, err := f.store.Sessions().CountActiveSessions(ctx, f.clock)
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("inactive users are rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.sessions.Login(ctx, "ghost", "secret")
		require.ErrorIs(t, err, service.ErrInactiveUser)
		require.Equal(t, 1, f.backend.CallCount(http.MethodPost, "/api/v1/auth/logout"))
	})

	t.Run("backend token is released when the user lookup fails", func(t *testing.T) {
		f := newFixture(t)
		f.backend.Fail(http.MethodGet, "/api/v1/auth/me", http.StatusInternalServerError, "boom")

		_, err := f.sessions.Login(ctx, "admin", "secret")
		require.Error(t, err)
		require.Equal(t, 1, f.backend.CallCount(http.MethodPost, "/api/v1/auth/logout"))

		n, err := f.store.Sessions().CountActiveSessions(ctx, f.clock)
		require.NoError(t, err)
		require.Zero(t, n)
	})
}

func TestSessionResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid cookie restores the backend credential", func(t *testing.T) {
		f := newFixture(t)
		res := f.login(t)

		sess, backend, err := f.sessions.Resolve(ctx, res.CookieToken)
		require.NoError(t, err)
		require.Equal(t, res.Session.ID, sess.ID)
		require.Equal(t, res.Backend.AccessToken(), backend.AccessToken())

		_, err = backend.ListClients(ctx)
		require.NoError(t, err)
	})

	t.Run("unknown and empty cookies", func(t *testing.T) {
		f := newFixture(t)

		_, _, err := f.sessions.Resolve(ctx, "")
		require.ErrorIs(t, err, service.ErrSessionNotFound)

		_, _, err = f.sessions.Resolve(ctx, "nope")
		require.ErrorIs(t, err, service.ErrSessionNotFound)
	})

	t.Run("expired session is deleted", func(t *testing.T) {
		f := newFixture(t)
		res := f.login(t)

		f.workspaces.Get(res.Session.ID, res.Backend)
		require.Equal(t, 1, f.workspaces.Len())

		f.clock = f.clock.Add(2 * time.Hour)
		_, _, err := f.sessions.Resolve(ctx, res.CookieToken)
		require.ErrorIs(t, err, service.ErrSessionExpired)

		_, err = f.store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(res.CookieToken))
		require.ErrorIs(t, err, store.ErrNotFound)
		require.Zero(t, f.workspaces.Len())
	})

	t.Run("token mode does not call the backend", func(t *testing.T) {
		f := newFixture(t)
		res := f.login(t)
		f.backend.ResetCalls()

		_, _, err := f.sessions.Resolve(ctx, res.CookieToken)
		require.NoError(t, err)
		require.Empty(t, f.backend.Calls())
	})

	t.Run("remote mode ends revoked sessions", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.Check = service.AuthCheckRemote
		res := f.login(t)

		_, _, err := f.sessions.Resolve(ctx, res.CookieToken)
		require.NoError(t, err)

		f.workspaces.Get(res.Session.ID, res.Backend)

		f.backend.RevokeTokens()
		_, _, err = f.sessions.Resolve(ctx, res.CookieToken)
		require.ErrorIs(t, err, service.ErrSessionExpired)
		require.Zero(t, f.workspaces.Len())

		_, _, err = f.sessions.Resolve(ctx, res.CookieToken)
		require.ErrorIs(t, err, service.ErrSessionNotFound)
	})

	t.Run("rows sealed with another key are dropped", func(t *testing.T) {
		f := newFixture(t)
		res := f.login(t)

		other := make([]byte, 32)
		other[0] = 1
		sealer, err := cryptox.NewSealer(other)
		require.NoError(t, err)
		f.sessions.Sealer = sealer

		_, _, err = f.sessions.Resolve(ctx, res.CookieToken)
		require.ErrorIs(t, err, service.ErrSessionExpired)
	})
}

func TestSessionLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	res := f.login(t)

	require.NoError(t, f.sessions.Logout(ctx, res.Session, res.Backend))
	require.Equal(t, 1, f.backend.CallCount(http.MethodPost, "/api/v1/auth/logout"))
	require.Empty(t, res.Backend.AccessToken())

	_, _, err := f.sessions.Resolve(ctx, res.CookieToken)
	require.ErrorIs(t, err, service.ErrSessionNotFound)

	t.Run("backend failure still ends the local session", func(t *testing.T) {
		f := newFixture(t)
		res := f.login(t)
		f.backend.Fail(http.MethodPost, "/api/v1/auth/logout", http.StatusInternalServerError, "boom")

		require.NoError(t, f.sessions.Logout(ctx, res.Session, res.Backend))
		_, _, err := f.sessions.Resolve(ctx, res.CookieToken)
		require.ErrorIs(t, err, service.ErrSessionNotFound)
	})
}

func TestWorkspaces(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res := f.login(t)

	ws := service.NewWorkspaces(domain.IntegerValueTypes)
	a := ws.Get("a", res.Backend)
	require.Same(t, a, ws.Get("a", res.Backend))
	require.NotSame(t, a, ws.Get("b", res.Backend))
	require.Equal(t, 2, ws.Len())

	ws.Drop("a", "missing")
	require.Equal(t, 1, ws.Len())
	require.NotSame(t, a, ws.Get("a", res.Backend))
}

func TestClientsScreen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	res := f.login(t)
	seeded := f.backend.SeedClients(forgesdk.Client{Name: "Acme", Code: "acme", NamespacePrefix: "acme"})
	f.backend.ResetCalls()

	screen := service.NewClientsScreen(res.Backend, domain.ClientText)
	require.NoError(t, screen.Mount(ctx))
	require.Len(t, screen.View().List.Rows, 1)

	row, ok := screen.Find(seeded[0].ID)
	require.True(t, ok)
	screen.Form.Edit(row)

	draft := screen.Form.Draft()
	draft.Name = "Acme Ltd"
	draft.Code = "changed"
	screen.Form.SetDraft(draft)
	require.Equal(t, "acme", screen.Form.Draft().Code)

	require.NoError(t, screen.Form.Submit(ctx))

	patches := f.backend.CallsTo(http.MethodPatch, "/api/v1/clients/1")
	require.Len(t, patches, 1)
	require.Equal(t, "Acme Ltd", patches[0].Body["name"])
	require.False(t, patches[0].Has("code"))
	require.Equal(t, 2, f.backend.CallCount(http.MethodGet, "/api/v1/clients"))
	require.Equal(t, crud.Hidden, screen.Form.Mode())

	deleted, err := screen.Delete(ctx, seeded[0].ID, yes)
	require.NoError(t, err)
	require.True(t, deleted)

	view := screen.View()
	require.Empty(t, view.List.Rows)
	require.Equal(t, domain.ClientText.Empty, view.List.Placeholder)
}

func TestConfigurationsScreen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("value type outside the variant is rejected locally", func(t *testing.T) {
		f := newFixture(t)
		res := f.login(t)
		f.backend.ResetCalls()

		screen := service.NewConfigurationsScreen(res.Backend, domain.IntegerValueTypes, domain.ConfigurationText)
		screen.Form.Open()
		screen.Form.SetDraft(domain.ConfigurationDraft{Key: "rate", Value: "1.5", ValueType: "number"})

		require.Error(t, screen.Form.Submit(ctx))
		require.Contains(t, screen.View().Banner, "Tipo")
		require.Zero(t, f.backend.CallCount(http.MethodPost, "/api/v1/configurations"))
		require.Equal(t, crud.Creating, screen.Form.Mode())
	})

	t.Run("number variant accepts number", func(t *testing.T) {
		f := newFixture(t)
		res := f.login(t)

		screen := service.NewConfigurationsScreen(res.Backend, domain.NumberValueTypes, domain.ConfigurationText)
		screen.Form.Open()
		require.Equal(t, domain.DefaultValueType, screen.Form.Draft().ValueType)
		screen.Form.SetDraft(domain.ConfigurationDraft{Key: "rate", Value: "1.5", ValueType: "number"})

		require.NoError(t, screen.Form.Submit(ctx))
		posts := f.backend.CallsTo(http.MethodPost, "/api/v1/configurations")
		require.Len(t, posts, 1)
		require.Equal(t, "number", posts[0].Body["value_type"])
		require.Len(t, screen.View().List.Rows, 1)
	})

	t.Run("backend error surfaces as the banner", func(t *testing.T) {
		f := newFixture(t)
		res := f.login(t)
		f.backend.Fail(http.MethodGet, "/api/v1/configurations", http.StatusInternalServerError, "database offline")

		screen := service.NewConfigurationsScreen(res.Backend, domain.IntegerValueTypes, domain.ConfigurationText)
		require.Error(t, screen.Mount(ctx))
		require.Equal(t, "database offline", screen.View().Banner)
	})
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	res := f.login(t)
	f.backend.SeedClients(
		forgesdk.Client{Name: "Acme", Code: "acme", NamespacePrefix: "acme"},
		forgesdk.Client{Name: "Globex", Code: "globex", NamespacePrefix: "globex"},
	)

	dash := service.NewDashboard(res.Backend)
	require.Equal(t, domain.MsgNotAvailable, dash.View().Role)

	require.NoError(t, dash.Load(ctx))
	view := dash.View()
	require.Equal(t, 2, view.ClientCount)
	require.Equal(t, "admin", view.Role)
	require.Equal(t, domain.MsgStatusActive, view.Status)
	require.Empty(t, view.Placeholder)
	require.Empty(t, view.Error)

	f.backend.Fail(http.MethodGet, "/api/v1/auth/me", http.StatusInternalServerError, "me failed")
	require.Error(t, dash.Load(ctx))
	view = dash.View()
	require.Equal(t, "me failed", view.Error)
	require.Equal(t, 2, view.ClientCount)
}

func TestHousekeepingCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	expired := f.login(t)
	f.sessions.TTL = 24 * time.Hour
	f.backend.TokenTTL = 24 * time.Hour
	live := f.login(t)

	ws := service.NewWorkspaces(domain.IntegerValueTypes)
	ws.Get(expired.Session.ID, expired.Backend)
	ws.Get(live.Session.ID, live.Backend)

	hk := service.NewHousekeepingService(f.store, ws, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Minute)
	hk.Now = func() time.Time { return f.clock.Add(2 * time.Hour) }
	hk.Cleanup(ctx)

	require.Equal(t, 1, ws.Len())
	n, err := f.store.Sessions().CountActiveSessions(ctx, f.clock.Add(2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
