package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hillstay/hillstay/config"
	"github.com/hillstay/hillstay/internal/observability/analytics"
	"github.com/hillstay/hillstay/internal/observability/metrics"
	"github.com/hillstay/hillstay/internal/observability/notify"
	"github.com/hillstay/hillstay/internal/service"
)

// ServiceContainer holds the initialized services.
type ServiceContainer struct {
	Session    *service.SessionController
	Listings   *service.ListingService
	Dispatcher *service.Dispatcher
	Notices    *notify.Feed
	// MetricsHandler serves /metrics; nil when metrics are disabled.
	MetricsHandler http.Handler
	Recorder       metrics.Recorder

	statsd *analytics.StatsDSink
}

// ServiceConfig contains the dependencies needed to build the services.
type ServiceConfig struct {
	Config   *config.AppConfig
	Identity *Identity
	Stores   Stores
	Logger   *slog.Logger
}

// BuildServices wires observability and the session and listing services.
func BuildServices(cfg ServiceConfig) (*ServiceContainer, error) {
	if cfg.Config == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Identity == nil {
		return nil, errors.New("identity provider is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	obs := cfg.Config.Observability

	c := &ServiceContainer{Recorder: metrics.Nop{}}
	if obs.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		c.Recorder = metrics.NewCollector(reg)
		c.MetricsHandler = metrics.Handler(reg)
	}

	c.Notices = notify.NewFeed(notify.FeedOptions{
		Capacity: obs.Notices.Capacity,
		Logger:   logger,
	})

	sink, err := c.buildAnalyticsSink(obs.Analytics, logger)
	if err != nil {
		return nil, err
	}
	c.Dispatcher, err = service.NewDispatcher(service.DispatcherOptions{
		Sink:      sink,
		QueueSize: obs.Analytics.QueueSize,
		Timeout:   obs.Analytics.Timeout,
		Logger:    logger,
		Metrics:   c.Recorder,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create analytics dispatcher: %w", err)
	}

	c.Session, err = service.NewSessionController(service.SessionControllerOptions{
		Provider:          cfg.Identity.Provider,
		Profiles:          cfg.Stores.Profiles,
		Analytics:         c.Dispatcher,
		Notifier:          c.Notices,
		Metrics:           c.Recorder,
		Logger:            logger,
		OptimisticLocking: cfg.Config.Profiles.OptimisticLocking,
		RemoteTimeout:     cfg.Config.Profiles.RemoteTimeout,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create session controller: %w", err)
	}

	c.Listings, err = service.NewListingService(service.ListingServiceOptions{
		Session:  c.Session,
		Store:    cfg.Stores.Listings,
		Cache:    cfg.Stores.Cache,
		Notifier: c.Notices,
		Metrics:  c.Recorder,
		Logger:   logger,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create listing service: %w", err)
	}

	return c, nil
}

func (c *ServiceContainer) buildAnalyticsSink(cfg config.AnalyticsConfig, logger *slog.Logger) (analytics.EventLogger, error) {
	logSink := analytics.NewLogSink(logger)
	if !cfg.StatsdEnabled {
		return logSink, nil
	}
	statsd, err := analytics.NewStatsDSink(analytics.StatsDConfig{
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create statsd sink: %w", err)
	}
	c.statsd = statsd
	logger.Info("analytics statsd sink enabled", "address", cfg.StatsdAddress)
	return analytics.MultiSink{logSink, statsd}, nil
}

// Close releases the analytics transport.
func (c *ServiceContainer) Close() {
	if c == nil || c.statsd == nil {
		return
	}
	if err := c.statsd.Close(); err != nil {
		slog.Default().Warn("close statsd sink", "error", err)
	}
	c.statsd = nil
}
