package bootstrap

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hillstay/hillstay/config"
	"github.com/hillstay/hillstay/internal/adapters/memstore"
	redisadapter "github.com/hillstay/hillstay/internal/adapters/redis"
	"github.com/hillstay/hillstay/internal/data"
	"github.com/hillstay/hillstay/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		Auth: config.AuthConfig{
			Mode: config.AuthModeDev,
			DevAuth: config.DevAuthConfig{
				UserID: "dev-user",
				Email:  "dev@example.com",
			},
		},
		Profiles: config.ProfileStoreConfig{Backend: config.ProfileBackendMemory},
		HTTP:     config.HTTPConfig{Addr: "127.0.0.1:0"},
	}
	cfg.Observability.Metrics.Enabled = true
	cfg.Sanitize()
	return cfg
}

func TestBuildIdentity(t *testing.T) {
	t.Run("dev mode exposes dev sign-in", func(t *testing.T) {
		id, err := BuildIdentity(AuthConfig{Auth: testConfig().Auth, Logger: discardLogger()})
		require.NoError(t, err)
		defer id.Close()
		assert.NotNil(t, id.Provider)
		assert.NotNil(t, id.Login)
		assert.NotNil(t, id.Dev)
	})

	t.Run("oidc mode requires client config", func(t *testing.T) {
		_, err := BuildIdentity(AuthConfig{
			Auth:   config.AuthConfig{Mode: config.AuthModeOIDC},
			Logger: discardLogger(),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OIDC_DISCOVERY_URL")
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := BuildIdentity(AuthConfig{Auth: config.AuthConfig{Mode: "saml"}, Logger: discardLogger()})
		require.Error(t, err)
	})
}

func TestBuildStores(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		stores, err := BuildStores(StoresConfig{
			Profiles: config.ProfileStoreConfig{Backend: config.ProfileBackendMemory},
			Logger:   discardLogger(),
		})
		require.NoError(t, err)
		assert.IsType(t, &memstore.ProfileStore{}, stores.Profiles)
		assert.IsType(t, &memstore.ListingStore{}, stores.Listings)
		assert.Nil(t, stores.Cache)
	})

	t.Run("postgres requires db", func(t *testing.T) {
		_, err := BuildStores(StoresConfig{
			Profiles: config.ProfileStoreConfig{Backend: config.ProfileBackendPostgres},
			Logger:   discardLogger(),
		})
		require.Error(t, err)
	})

	t.Run("postgres", func(t *testing.T) {
		// sql.Open does not dial.
		db, err := sql.Open("pgx", "postgres://hillstay@localhost/hillstay")
		require.NoError(t, err)
		defer db.Close()
		stores, buildErr := BuildStores(StoresConfig{
			Profiles: config.ProfileStoreConfig{Backend: config.ProfileBackendPostgres},
			DB:       db,
			Logger:   discardLogger(),
		})
		require.NoError(t, buildErr)
		assert.IsType(t, &data.ProfileRepo{}, stores.Profiles)
		assert.IsType(t, &data.ListingRepo{}, stores.Listings)
	})

	t.Run("redis with listing cache", func(t *testing.T) {
		client, _ := testutil.SetupTestRedis(t)
		stores, err := BuildStores(StoresConfig{
			Profiles:     config.ProfileStoreConfig{Backend: config.ProfileBackendRedis, KeyPrefix: "p:"},
			ListingCache: config.ListingCacheConfig{Enabled: true, TTL: time.Hour},
			Redis:        client,
			Logger:       discardLogger(),
		})
		require.NoError(t, err)
		assert.IsType(t, &redisadapter.ProfileStore{}, stores.Profiles)
		assert.IsType(t, &memstore.ListingStore{}, stores.Listings)
		assert.IsType(t, &redisadapter.ListingCache{}, stores.Cache)
	})

	t.Run("listing cache requires redis", func(t *testing.T) {
		_, err := BuildStores(StoresConfig{
			Profiles:     config.ProfileStoreConfig{Backend: config.ProfileBackendMemory},
			ListingCache: config.ListingCacheConfig{Enabled: true},
			Logger:       discardLogger(),
		})
		require.Error(t, err)
	})
}

func TestNewAppServesAPI(t *testing.T) {
	app, err := NewApp(AppDeps{Config: testConfig(), Logger: discardLogger()})
	require.NoError(t, err)
	defer app.Close()

	srv := httptest.NewServer(app.Server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/session")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"is_loading":true`)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "hillstay_http_status_total")

	resp, err = http.Post(srv.URL+"/api/session/guest", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAppRunStopsOnCancel(t *testing.T) {
	app, err := NewApp(AppDeps{Config: testConfig(), Logger: discardLogger()})
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// Disposed controllers reject a second Init.
	assert.Error(t, app.Services.Session.Init(context.Background()))
}
