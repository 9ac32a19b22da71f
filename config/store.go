package config

import (
	"fmt"
	"strings"
	"time"
)

// ProfileBackend selects where profile documents live.
type ProfileBackend string

const (
	ProfileBackendPostgres ProfileBackend = "postgres"
	ProfileBackendRedis    ProfileBackend = "redis"
	ProfileBackendMemory   ProfileBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for ProfileBackend.
func (b *ProfileBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch ProfileBackend(v) {
	case ProfileBackendPostgres, ProfileBackendRedis, ProfileBackendMemory:
		*b = ProfileBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid ProfileBackend: %q (valid options: postgres, redis, memory)", v)
	}
}

// ProfileStoreConfig selects the profile and listing backend.
// Listings always live next to profiles: Postgres or memory. The redis backend keeps
// listings in memory since Redis only serves as their cache.
type ProfileStoreConfig struct {
	Backend ProfileBackend `env:"PROFILE_STORE" envDefault:"memory"`

	// OptimisticLocking sends the last-read version with each profile write.
	OptimisticLocking bool `env:"PROFILE_OPTIMISTIC_LOCKING" envDefault:"false"`

	// RemoteTimeout bounds every profile store call.
	RemoteTimeout time.Duration `env:"PROFILE_REMOTE_TIMEOUT" envDefault:"10s"`

	// KeyPrefix namespaces profile keys when Backend=redis.
	KeyPrefix string `env:"PROFILE_REDIS_PREFIX" envDefault:"profile:"`
}

// Sanitize applies guardrails to profile store values.
func (c *ProfileStoreConfig) Sanitize() {
	if c.RemoteTimeout <= 0 {
		c.RemoteTimeout = 10 * time.Second
	}
	if c.RemoteTimeout > time.Minute {
		c.RemoteTimeout = time.Minute
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "profile:"
	}
}

// ListingCacheConfig controls the Redis fallback copy of owner listings.
type ListingCacheConfig struct {
	Enabled   bool          `env:"LISTING_CACHE_ENABLED" envDefault:"false"`
	TTL       time.Duration `env:"LISTING_CACHE_TTL"     envDefault:"168h"`
	KeyPrefix string        `env:"LISTING_CACHE_PREFIX"  envDefault:"listings:"`
}

// Sanitize applies guardrails to listing cache values.
func (c *ListingCacheConfig) Sanitize() {
	if c.TTL < 0 {
		c.TTL = 0
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "listings:"
	}
}
