package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	httpapi "github.com/aussiebroadwan/forgeconsole/internal/console/http"
	"github.com/aussiebroadwan/forgeconsole/internal/console/service"
	"github.com/aussiebroadwan/forgeconsole/internal/console/store"
	"github.com/aussiebroadwan/forgeconsole/internal/console/store/drivers/sqlite"
	"github.com/aussiebroadwan/forgeconsole/internal/console/web"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
	"github.com/aussiebroadwan/forgeconsole/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the console with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	sdk        *forgesdk.SDKClient
	secrets    *Secrets
	valueTypes domain.ValueTypeSet

	// Services
	sessionService      *service.SessionService
	workspaces          *service.Workspaces
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "forgeconsole",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	valueTypes, err := domain.ValueTypeSetByName(cfg.ValueTypes)
	if err != nil {
		return nil, err
	}
	app.valueTypes = valueTypes

	secrets, err := InitSecrets(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets: %w", err)
	}
	app.secrets = secrets

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.sdk = forgesdk.NewSDKClientWithTimeout(cfg.BackendURL, cfg.BackendTimeout)

	app.initServices()
	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("console starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"backend", app.cfg.BackendURL,
		"auth_check", app.cfg.AuthCheck,
		"value_types", app.valueTypes.Name,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down console...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("console stopped")
	return nil
}

// initDatabase opens the session database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.workspaces = service.NewWorkspaces(app.valueTypes)

	app.sessionService = &service.SessionService{
		Store:      app.db,
		SDK:        app.sdk,
		Sealer:     app.secrets.Sealer,
		TTL:        app.cfg.SessionTTL,
		Check:      service.AuthCheck(app.cfg.AuthCheck),
		Workspaces: app.workspaces,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.workspaces,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	renderer, err := web.NewRenderer(app.cfg.TemplateDir, app.logger)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	if app.cfg.TemplateDir != "" {
		app.logger.Info("templates reload from disk on every render", "dir", app.cfg.TemplateDir)
	}

	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	// Wire services to router
	router.SDK = app.sdk
	router.Sessions = app.sessionService
	router.Workspaces = app.workspaces
	router.Renderer = renderer
	router.Flash = &web.Flash{Key: app.secrets.FlashKey, Secure: app.cfg.CookieSecure}
	router.ValueTypes = app.valueTypes
	router.CookieSecure = app.cfg.CookieSecure
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
