package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	"github.com/aussiebroadwan/forgeconsole/internal/console/service"
	"github.com/aussiebroadwan/forgeconsole/internal/console/store"
	"github.com/aussiebroadwan/forgeconsole/internal/console/web"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
	"github.com/aussiebroadwan/forgeconsole/pkg/httpx"
	"github.com/aussiebroadwan/forgeconsole/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/forgeconsole/api/console" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	SDK          *forgesdk.SDKClient
	Sessions     *service.SessionService
	Workspaces   *service.Workspaces
	Renderer     *web.Renderer
	Flash        *web.Flash
	ValueTypes   domain.ValueTypeSet
	CookieSecure bool
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		ValueTypes:   domain.IntegerValueTypes,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerDashboard()
	registerEntity(r, clientRoutes())
	registerEntity(r, configurationRoutes(r.ValueTypes))
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	// Unknown paths land on the dashboard, which sends anonymous users on to /login.
	r.Mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		httpx.SeeOther(w, req, "/")
	})
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			ForgeERP Console
//	@version		0.1.0
//	@description	Server-rendered admin console for the ForgeERP backend.
//	@description	Only the probe endpoints are JSON; every other route renders HTML.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/forgeconsole
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// page guards a page view: a session is required and views are limited per session.
func (r *Router) page(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h,
		httpx.RequireSession(r.resolve, r.deny),
		httpx.RateLimitBySession(httpx.LenientLimit),
	)
}

// action guards a form post that may reach the backend.
func (r *Router) action(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h,
		httpx.RequireSession(r.resolve, r.deny),
		httpx.RateLimitBySession(httpx.ModerateLimit),
	)
}

func (r *Router) registerAuth() {
	// GET /login - logged in users go straight to the dashboard
	r.Mux.Handle("GET /login",
		httpx.Chain(http.HandlerFunc(r.handleLoginPage),
			httpx.RateLimitByIP(httpx.LenientLimit),
			httpx.RedirectWhenSession(r.resolve, "/"),
		),
	)

	// POST /login - strict rate limit by IP + username to slow down guessing
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(r.handleLoginSubmit),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	r.Mux.Handle("POST /logout", r.action(r.handleLogout))
}

func (r *Router) registerDashboard() {
	r.Mux.Handle("GET /{$}", r.page(r.handleDashboard))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.SDK),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics",
		httpx.Chain(promhttp.Handler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

// render fills the layout fields shared by every page.
func (r *Router) render(w http.ResponseWriter, req *http.Request, status int, page string, data web.Page) {
	if data.Flash == nil {
		data.Flash = r.Flash.Pop(w, req)
	}
	if auth := authFrom(req.Context()); auth != nil {
		data.User = auth.Session.DisplayName
	}

	if err := r.Renderer.Render(w, status, page, data); err != nil {
		slogx.FromContext(req.Context()).Error("failed to render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
