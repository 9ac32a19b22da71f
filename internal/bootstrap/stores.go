package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/hillstay/hillstay/config"
	"github.com/hillstay/hillstay/internal/adapters/memstore"
	redisadapter "github.com/hillstay/hillstay/internal/adapters/redis"
	"github.com/hillstay/hillstay/internal/data"
	"github.com/hillstay/hillstay/internal/ports"
)

// Stores groups the persistence ports used by the services.
type Stores struct {
	Profiles ports.ProfileStore
	Listings ports.ListingStore
	// Cache is nil when the listing fallback cache is disabled.
	Cache ports.ListingCache
}

// StoresConfig contains the connections available to BuildStores.
type StoresConfig struct {
	Profiles     config.ProfileStoreConfig
	ListingCache config.ListingCacheConfig
	DB           *sql.DB
	Redis        redis.UniversalClient
	Logger       *slog.Logger
}

// BuildStores selects the profile and listing backends.
// The redis profile backend keeps listings in memory.
func BuildStores(cfg StoresConfig) (Stores, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var stores Stores
	switch cfg.Profiles.Backend {
	case config.ProfileBackendPostgres:
		if cfg.DB == nil {
			return Stores{}, errors.New("postgres profile store requires a database connection")
		}
		stores.Profiles = data.NewProfileRepo(cfg.DB)
		stores.Listings = data.NewListingRepo(cfg.DB)
	case config.ProfileBackendRedis:
		if cfg.Redis == nil {
			return Stores{}, errors.New("redis profile store requires a redis connection")
		}
		stores.Profiles = redisadapter.NewProfileStoreWithPrefix(cfg.Redis, cfg.Profiles.KeyPrefix)
		stores.Listings = memstore.NewListingStore()
	case config.ProfileBackendMemory:
		stores.Profiles = memstore.NewProfileStore()
		stores.Listings = memstore.NewListingStore()
	default:
		return Stores{}, fmt.Errorf("unsupported profile store %q", cfg.Profiles.Backend)
	}

	if cfg.ListingCache.Enabled {
		if cfg.Redis == nil {
			return Stores{}, errors.New("listing cache requires a redis connection")
		}
		stores.Cache = redisadapter.NewListingCache(cfg.Redis, redisadapter.ListingCacheOptions{
			Prefix: cfg.ListingCache.KeyPrefix,
			TTL:    cfg.ListingCache.TTL,
		})
	}

	logger.Info("stores configured",
		"profile_store", cfg.Profiles.Backend,
		"listing_cache", cfg.ListingCache.Enabled,
	)
	return stores, nil
}
