package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hillstay/hillstay/config"
	httpx "github.com/hillstay/hillstay/internal/http"
	"github.com/hillstay/hillstay/internal/observability/metrics"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	HTTP     config.HTTPConfig
	Services *ServiceContainer
	Identity *Identity
	Logger   *slog.Logger
}

// NewHTTPServer builds the HTTP server without starting it.
func NewHTTPServer(cfg HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	services := httpx.RouterServices{
		CookieDomain: cfg.HTTP.CookieDomain,
		Logger:       logger,
	}
	if cfg.Services != nil {
		services.Session = cfg.Services.Session
		services.Ready = cfg.Services.Session
		services.Listings = cfg.Services.Listings
		services.Notices = cfg.Services.Notices
		services.Metrics = cfg.Services.MetricsHandler
	}
	if cfg.HTTP.AuthRatePerMinute > 0 {
		services.Limiter = httpx.NewRateLimiter(httpx.RateLimiterConfig{
			PerMinute: cfg.HTTP.AuthRatePerMinute,
			Burst:     cfg.HTTP.AuthRateBurst,
		}, logger)
	}
	if cfg.Identity != nil {
		services.Login = cfg.Identity.Login
		services.DevSignIn = cfg.Identity.Dev
	}

	var recorder metrics.Recorder
	if cfg.Services != nil {
		recorder = cfg.Services.Recorder
	}

	addr := cfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	return &http.Server{
		Addr: addr,
		Handler: buildHTTPHandler(httpHandlerConfig{
			Logger:   logger,
			Services: services,
			HTTP:     cfg.HTTP,
			Recorder: recorder,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	HTTP     config.HTTPConfig
	Recorder metrics.Recorder
}

func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	// Order: Recover -> Logging -> LimitBody -> Router
	h := httpx.NewRouter(cfg.Services)
	h = httpx.LimitBody(cfg.HTTP.MaxBodyBytes)(h)
	h = httpx.Logging(cfg.Logger, cfg.Recorder)(h)
	h = httpx.Recover(cfg.Logger)(h)
	return h
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	shutdownCtx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
