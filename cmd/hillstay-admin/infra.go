package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hillstay/hillstay/config"
	"github.com/hillstay/hillstay/internal/bootstrap"
	"github.com/hillstay/hillstay/internal/data"
	"github.com/hillstay/hillstay/internal/devseed"
)

var errMemoryStore = errors.New("PROFILE_STORE=memory holds no durable data; point the admin tool at postgres or redis")

// storeConns holds the connections behind the configured stores.
type storeConns struct {
	DB     *sql.DB
	Redis  redis.UniversalClient
	Stores bootstrap.Stores
}

// openStores connects what the configuration needs and builds the same stores the service uses.
func openStores(ctx context.Context, cmdCtx *commandContext) (*storeConns, error) {
	cfg := &cmdCtx.Config
	if cfg.Profiles.Backend == config.ProfileBackendMemory {
		return nil, errMemoryStore
	}

	conns := &storeConns{}
	dbCfg := bootstrap.DatabaseConfig{
		DBConfig:    cfg.Postgres,
		RedisConfig: cfg.Redis,
		Logger:      cmdCtx.Logger,
	}
	if cfg.NeedsPostgres() {
		db, err := bootstrap.ConnectDB(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		conns.DB = db
	}
	if cfg.NeedsRedis() {
		client, err := bootstrap.ConnectRedis(ctx, dbCfg)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connect redis: %w", err), conns.close())
		}
		conns.Redis = client
	}

	stores, err := bootstrap.BuildStores(bootstrap.StoresConfig{
		Profiles:     cfg.Profiles,
		ListingCache: cfg.ListingCache,
		DB:           conns.DB,
		Redis:        conns.Redis,
		Logger:       cmdCtx.Logger,
	})
	if err != nil {
		return nil, errors.Join(err, conns.close())
	}
	conns.Stores = stores
	return conns, nil
}

func (c *storeConns) close() error {
	var closeErr error
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close db: %w", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close redis: %w", err))
		}
	}
	return closeErr
}

func closeConns(cmdCtx *commandContext, conns *storeConns) {
	if err := conns.close(); err != nil {
		cmdCtx.Logger.Warn("close connections failed", "error", err)
	}
}

func postgresSeedStores(db *sql.DB) devseed.Stores {
	return devseed.Stores{
		Profiles: data.NewProfileRepo(db),
		Listings: data.NewListingRepo(db),
	}
}
