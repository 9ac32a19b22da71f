package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/hillstay/hillstay/config"
	httpx "github.com/hillstay/hillstay/internal/http"
)

// AppDeps contains the connections opened by the entrypoint.
// DB and Redis may be nil when the configuration does not need them.
type AppDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// App is the fully wired session service.
type App struct {
	Config   *config.AppConfig
	Identity *Identity
	Stores   Stores
	Services *ServiceContainer
	Server   *http.Server
	Logger   *slog.Logger
}

// NewApp builds the identity provider, stores, services and HTTP server.
func NewApp(deps AppDeps) (*App, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if err := httpx.ValidateCookieDomain(cfg.HTTP.CookieDomain); err != nil {
		return nil, err
	}

	identity, err := BuildIdentity(AuthConfig{Auth: cfg.Auth, Logger: logger})
	if err != nil {
		return nil, err
	}

	stores, err := BuildStores(StoresConfig{
		Profiles:     cfg.Profiles,
		ListingCache: cfg.ListingCache,
		DB:           deps.DB,
		Redis:        deps.Redis,
		Logger:       logger,
	})
	if err != nil {
		identity.Close()
		return nil, err
	}

	services, err := BuildServices(ServiceConfig{
		Config:   cfg,
		Identity: identity,
		Stores:   stores,
		Logger:   logger,
	})
	if err != nil {
		identity.Close()
		return nil, err
	}

	return &App{
		Config:   cfg,
		Identity: identity,
		Stores:   stores,
		Services: services,
		Server: NewHTTPServer(HTTPServerConfig{
			HTTP:     cfg.HTTP,
			Services: services,
			Identity: identity,
			Logger:   logger,
		}),
		Logger: logger,
	}, nil
}

// Run starts the session controller, the analytics dispatcher and the HTTP
// server, and blocks until ctx is done or the server fails. Shutdown stops the
// server first, then disposes the controller and drains queued analytics.
func (a *App) Run(ctx context.Context) error {
	if err := a.Services.Session.Init(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("init session controller: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)

	// The dispatcher outlives gctx so events emitted during shutdown are still delivered.
	group.Go(func() error {
		return a.Services.Dispatcher.Run(context.WithoutCancel(gctx))
	})

	group.Go(func() error {
		a.Logger.InfoContext(gctx, "starting HTTP server", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		err := ShutdownHTTPServer(ShutdownConfig{
			Context: context.WithoutCancel(gctx),
			Server:  a.Server,
			Timeout: a.Config.HTTP.ShutdownTimeout,
			Logger:  a.Logger,
		})
		a.Services.Session.Dispose()
		a.Services.Dispatcher.Close()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return group.Wait()
}

// Close releases the identity provider and analytics transport.
// Database and Redis connections belong to the caller.
func (a *App) Close() {
	if a == nil {
		return
	}
	a.Identity.Close()
	a.Services.Close()
}

// RunWithShutdown runs app until SIGINT or SIGTERM.
func RunWithShutdown(ctx context.Context, app *App) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := app.Run(sigCtx)
	if ctx.Err() == nil && sigCtx.Err() != nil {
		app.Logger.Info("shutdown signal received")
	}
	return err
}
