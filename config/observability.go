package config

import (
	"strings"
	"time"
)

const defaultObservabilityName = "hillstay"

// ObservabilityConfig groups configuration for analytics, metrics and notices.
type ObservabilityConfig struct {
	Analytics AnalyticsConfig
	Metrics   MetricsConfig
	Notices   NoticesConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Analytics.Sanitize()
	c.Notices.Sanitize()
}

// AnalyticsConfig controls delivery of analytics events.
// Events are always logged; StatsD delivery is added when enabled.
type AnalyticsConfig struct {
	StatsdEnabled bool          `env:"ANALYTICS_STATSD_ENABLED" envDefault:"false"`
	StatsdAddress string        `env:"ANALYTICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string        `env:"ANALYTICS_PREFIX"         envDefault:"hillstay"`
	QueueSize     int           `env:"ANALYTICS_QUEUE_SIZE"     envDefault:"256"`
	Timeout       time.Duration `env:"ANALYTICS_TIMEOUT"        envDefault:"2s"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *AnalyticsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.StatsdEnabled = false
	}
	if c.Prefix = strings.TrimSpace(c.Prefix); c.Prefix == "" {
		c.Prefix = defaultObservabilityName
	}
	if c.QueueSize < 1 {
		c.QueueSize = 1
	}
	if c.QueueSize > 65536 {
		c.QueueSize = 65536
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Second
	}
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// NoticesConfig bounds the in-memory notice feed.
type NoticesConfig struct {
	Capacity int `env:"NOTICES_CAPACITY" envDefault:"50"`
}

// Sanitize clamps the feed capacity.
func (c *NoticesConfig) Sanitize() {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.Capacity > 1000 {
		c.Capacity = 1000
	}
}
