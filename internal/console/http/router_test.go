package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	consolehttp "github.com/aussiebroadwan/forgeconsole/internal/console/http"
	"github.com/aussiebroadwan/forgeconsole/internal/console/service"
	"github.com/aussiebroadwan/forgeconsole/internal/console/store/drivers/sqlite"
	"github.com/aussiebroadwan/forgeconsole/internal/console/web"
	"github.com/aussiebroadwan/forgeconsole/pkg/cryptox"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk/forgesdktest"
	"github.com/aussiebroadwan/forgeconsole/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type harness struct {
	t       *testing.T
	backend    *forgesdktest.Server
	workspaces *service.Workspaces
	server     *httptest.Server
	client     *http.Client
	skew       atomic.Int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{t: t, backend: forgesdktest.New(t)}
	h.backend.AddUser("admin", "secret", forgesdk.User{FullName: ptr("Ada Admin"), Role: "admin", IsActive: true})

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "console.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sealer, err := cryptox.NewSealer(make([]byte, 32))
	require.NoError(t, err)
	renderer, err := web.NewRenderer("", slogx.Discard())
	require.NoError(t, err)

	sdk := forgesdk.NewSDKClient(h.backend.URL)
	router := consolehttp.NewRouter("test", st, slogx.Discard())
	h.workspaces = service.NewWorkspaces(router.ValueTypes)
	router.SDK = sdk
	router.Sessions = &service.SessionService{
		Store:      st,
		SDK:        sdk,
		Sealer:     sealer,
		TTL:        time.Hour,
		Check:      service.AuthCheckToken,
		Workspaces: h.workspaces,
		Now:        func() time.Time { return time.Now().Add(time.Duration(h.skew.Load())) },
	}
	router.Workspaces = h.workspaces
	router.Renderer = renderer
	router.Flash = &web.Flash{Key: []byte("flash-key-flash-key-flash-key-32")}
	router.ApplyRoutes()

	h.server = httptest.NewServer(router)
	t.Cleanup(h.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	h.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return h
}

type result struct {
	status   int
	location string
	body     string
	cookies  []*http.Cookie
}

func (h *harness) do(req *http.Request) result {
	h.t.Helper()

	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return result{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(body),
		cookies:  resp.Cookies(),
	}
}

func (h *harness) get(path string) result {
	h.t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, h.server.URL+path, nil)
	require.NoError(h.t, err)
	return h.do(req)
}

func (h *harness) post(path string, form url.Values) result {
	h.t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, h.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) login() {
	h.t.Helper()
	res := h.post("/login", url.Values{"username": {"admin"}, "password": {"secret"}})
	require.Equal(h.t, http.StatusSeeOther, res.status)
	require.Equal(h.t, "/", res.location)
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGuard(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	for _, path := range []string{"/", "/clients", "/configurations"} {
		res := h.get(path)
		require.Equal(t, http.StatusSeeOther, res.status, path)
		require.Equal(t, "/login", res.location, path)
	}

	res := h.get("/does/not/exist")
	require.Equal(t, http.StatusSeeOther, res.status)
	require.Equal(t, "/", res.location)

	res = h.post("/clients/new", nil)
	require.Equal(t, http.StatusSeeOther, res.status)
	require.Equal(t, "/login", res.location)

	require.Zero(t, h.backend.CallCount(http.MethodGet, "/api/v1/clients"))
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("failure re-renders with the backend detail", func(t *testing.T) {
		h := newHarness(t)

		res := h.post("/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
		require.Equal(t, http.StatusUnauthorized, res.status)
		require.Contains(t, res.body, "Incorrect username or password")
		require.Contains(t, res.body, `value="admin"`)
		require.Nil(t, cookieNamed(res.cookies, consolehttp.SessionCookie))
	})

	t.Run("success sets the session cookie", func(t *testing.T) {
		h := newHarness(t)

		res := h.post("/login", url.Values{"username": {"admin"}, "password": {"secret"}})
		require.Equal(t, http.StatusSeeOther, res.status)
		c := cookieNamed(res.cookies, consolehttp.SessionCookie)
		require.NotNil(t, c)
		require.True(t, c.HttpOnly)

		res = h.get("/login")
		require.Equal(t, http.StatusSeeOther, res.status)
		require.Equal(t, "/", res.location)

		res = h.get("/")
		require.Equal(t, http.StatusOK, res.status)
		require.Contains(t, res.body, "Ada Admin")
		require.Contains(t, res.body, "Nenhum cliente cadastrado")
	})
}

func TestSessionExpiry(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login()

	res := h.get("/clients")
	require.Equal(t, http.StatusOK, res.status)
	require.Equal(t, 1, h.workspaces.Len())

	h.skew.Store(int64(2 * time.Hour))
	res = h.get("/clients")
	require.Equal(t, http.StatusSeeOther, res.status)
	require.Equal(t, "/login", res.location)
	require.Zero(t, h.workspaces.Len())

	res = h.get("/login")
	require.Equal(t, http.StatusOK, res.status)
	require.Contains(t, res.body, "Sessão expirada")

	res = h.get("/login")
	require.NotContains(t, res.body, "Sessão expirada")
}

func TestLogout(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login()

	res := h.post("/logout", nil)
	require.Equal(t, http.StatusSeeOther, res.status)
	require.Equal(t, "/login", res.location)
	require.Equal(t, 1, h.backend.CallCount(http.MethodPost, "/api/v1/auth/logout"))
	require.Zero(t, h.workspaces.Len())

	res = h.get("/login")
	require.Equal(t, http.StatusOK, res.status)
	require.Contains(t, res.body, "Sessão encerrada")

	res = h.get("/")
	require.Equal(t, http.StatusSeeOther, res.status)
	require.Equal(t, "/login", res.location)
}

func TestClientsScreen(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login()

	res := h.get("/clients")
	require.Equal(t, http.StatusOK, res.status)
	require.Contains(t, res.body, "Nenhum cliente cadastrado")

	h.backend.ResetCalls()
	res = h.post("/clients/new", nil)
	require.Equal(t, http.StatusOK, res.status)
	require.Contains(t, res.body, `action="/clients/save"`)
	require.Contains(t, res.body, "unique-code")
	require.Empty(t, h.backend.Calls())

	t.Run("missing required fields keep the form open", func(t *testing.T) {
		res := h.post("/clients/save", url.Values{"email": {"a@b.c"}})
		require.Equal(t, http.StatusUnprocessableEntity, res.status)
		require.Contains(t, res.body, "campo obrigatório")
		require.Contains(t, res.body, `value="a@b.c"`)
		require.Zero(t, h.backend.CallCount(http.MethodPost, "/api/v1/clients"))
	})

	res = h.post("/clients/save", url.Values{
		"name":             {"Acme"},
		"code":             {"acme"},
		"namespace_prefix": {"acme"},
	})
	require.Equal(t, http.StatusOK, res.status)
	require.Contains(t, res.body, "Acme")
	require.NotContains(t, res.body, `action="/clients/save"`)

	posts := h.backend.CallsTo(http.MethodPost, "/api/v1/clients")
	require.Len(t, posts, 1)
	require.Nil(t, posts[0].Body["email"])

	t.Run("backend rejection shows the detail", func(t *testing.T) {
		h.post("/clients/new", nil)
		res := h.post("/clients/save", url.Values{"name": {"Again"}, "code": {"acme"}})
		require.Equal(t, http.StatusUnprocessableEntity, res.status)
		require.Contains(t, res.body, "Client code already exists")
		h.post("/clients/cancel", nil)
	})

	// The first client the fake backend creates gets id 1.
	id := "1"

	t.Run("edit never sends the code", func(t *testing.T) {
		res := h.post("/clients/"+id+"/edit", nil)
		require.Equal(t, http.StatusOK, res.status)
		require.Contains(t, res.body, "Editar Cliente")
		require.Contains(t, res.body, "disabled")

		res = h.post("/clients/save", url.Values{"name": {"Acme Ltd"}})
		require.Equal(t, http.StatusOK, res.status)
		require.Contains(t, res.body, "Acme Ltd")

		patches := h.backend.CallsTo(http.MethodPatch, "/api/v1/clients/"+id)
		require.Len(t, patches, 1)
		require.False(t, patches[0].Has("code"))
	})

	t.Run("unknown row", func(t *testing.T) {
		res := h.post("/clients/999/edit", nil)
		require.Equal(t, http.StatusOK, res.status)
		require.Contains(t, res.body, "Registro não encontrado")
	})

	t.Run("declined delete sends nothing", func(t *testing.T) {
		res := h.get("/clients/" + id + "/delete")
		require.Equal(t, http.StatusOK, res.status)
		require.Contains(t, res.body, "Tem certeza que deseja deletar este cliente?")

		res = h.post("/clients/"+id+"/delete", url.Values{"confirm": {"no"}})
		require.Equal(t, http.StatusOK, res.status)
		require.Zero(t, h.backend.CallCount(http.MethodDelete, "/api/v1/clients/"+id))
	})

	t.Run("confirmed delete reloads once", func(t *testing.T) {
		h.backend.ResetCalls()
		res := h.post("/clients/"+id+"/delete", url.Values{"confirm": {"yes"}})
		require.Equal(t, http.StatusOK, res.status)
		require.Equal(t, 1, h.backend.CallCount(http.MethodDelete, "/api/v1/clients/"+id))
		require.Equal(t, 1, h.backend.CallCount(http.MethodGet, "/api/v1/clients"))
		require.Contains(t, res.body, "Nenhum cliente cadastrado")
	})
}

func TestConfigurationsScreen(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	seeded := h.backend.SeedConfigurations(forgesdk.Configuration{Key: "github_token", Value: "x", ValueType: "string", IsActive: true})
	id := strconv.FormatInt(seeded[0].ID, 10)
	h.login()

	res := h.get("/configurations")
	require.Equal(t, http.StatusOK, res.status)
	require.Contains(t, res.body, "github_token")

	res = h.post("/configurations/"+id+"/edit", nil)
	require.Equal(t, http.StatusOK, res.status)
	require.Contains(t, res.body, "Editar Configuração")
	require.Contains(t, res.body, `<option value="integer">`)

	res = h.post("/configurations/save", url.Values{"value": {"y"}, "value_type": {"json"}, "description": {""}})
	require.Equal(t, http.StatusOK, res.status)

	patches := h.backend.CallsTo(http.MethodPatch, "/api/v1/configurations/"+id)
	require.Len(t, patches, 1)
	require.False(t, patches[0].Has("key"))
	require.Equal(t, "json", patches[0].Body["value_type"])

	t.Run("cancel makes no calls", func(t *testing.T) {
		h.post("/configurations/new", nil)
		h.backend.ResetCalls()

		res := h.post("/configurations/cancel", nil)
		require.Equal(t, http.StatusOK, res.status)
		require.Empty(t, h.backend.Calls())
	})

	t.Run("list failure keeps the page", func(t *testing.T) {
		h.backend.Fail(http.MethodGet, "/api/v1/configurations", http.StatusInternalServerError, "database offline")
		t.Cleanup(h.backend.ClearFailures)

		res := h.get("/configurations")
		require.Equal(t, http.StatusOK, res.status)
		require.Contains(t, res.body, "database offline")
		require.Contains(t, res.body, "github_token")
	})

	t.Run("type outside the variant survives an edit", func(t *testing.T) {
		rate := h.backend.SeedConfigurations(forgesdk.Configuration{Key: "rate", Value: "1.5", ValueType: "number", IsActive: true})
		rateID := strconv.FormatInt(rate[0].ID, 10)

		res := h.get("/configurations")
		require.Equal(t, http.StatusOK, res.status)

		res = h.post("/configurations/"+rateID+"/edit", nil)
		require.Equal(t, http.StatusOK, res.status)
		require.Contains(t, res.body, `<option value="number" selected>`)

		h.backend.ResetCalls()
		res = h.post("/configurations/save", url.Values{"value": {"2.5"}, "value_type": {"number"}})
		require.Equal(t, http.StatusOK, res.status)

		patches := h.backend.CallsTo(http.MethodPatch, "/api/v1/configurations/"+rateID)
		require.Len(t, patches, 1)
		require.Equal(t, "number", patches[0].Body["value_type"])
		require.Equal(t, "2.5", patches[0].Body["value"])
	})

	t.Run("new entries still follow the variant", func(t *testing.T) {
		h.post("/configurations/new", nil)
		h.backend.ResetCalls()

		res := h.post("/configurations/save", url.Values{"key": {"ratio"}, "value": {"0.5"}, "value_type": {"number"}})
		require.Equal(t, http.StatusUnprocessableEntity, res.status)
		require.Zero(t, h.backend.CallCount(http.MethodPost, "/api/v1/configurations"))
		require.NotContains(t, res.body, `<option value="number"`)

		h.post("/configurations/cancel", nil)
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	res := h.get("/livez")
	require.Equal(t, http.StatusOK, res.status)

	var live consolehttp.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(res.body), &live))
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	res = h.get("/readyz")
	require.Equal(t, http.StatusOK, res.status)

	h.backend.Fail(http.MethodGet, "/health", http.StatusInternalServerError, "down")
	res = h.get("/readyz")
	require.Equal(t, http.StatusServiceUnavailable, res.status)

	var ready consolehttp.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(res.body), &ready))
	require.Equal(t, "degraded", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "error: down", ready.Checks.Backend)

	res = h.get("/metrics")
	require.Equal(t, http.StatusOK, res.status)
	require.Contains(t, res.body, "forgeconsole_active_sessions")
}
