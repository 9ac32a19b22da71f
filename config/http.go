package config

import (
	"strings"
	"time"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `env:"HTTP_MAX_BODY_BYTES" envDefault:"1048576"`

	// CookieDomain scopes the login flow cookies. Empty means host-only.
	CookieDomain string `env:"HTTP_COOKIE_DOMAIN"`

	// AuthRatePerMinute throttles sign-in and session changes per client IP. Zero disables it.
	AuthRatePerMinute float64 `env:"HTTP_AUTH_RATE_PER_MIN" envDefault:"30"`
	AuthRateBurst     int     `env:"HTTP_AUTH_RATE_BURST"   envDefault:"10"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.CookieDomain = strings.TrimSpace(h.CookieDomain)
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
	if h.AuthRatePerMinute < 0 {
		h.AuthRatePerMinute = 0
	}
	if h.AuthRateBurst <= 0 {
		h.AuthRateBurst = 10
	}
	if h.MaxBodyBytes <= 0 {
		h.MaxBodyBytes = 1 << 20
	}
}
