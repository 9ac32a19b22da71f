package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("defaults to local test database port 55432", func(t *testing.T) {
		for _, key := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME"} {
			t.Setenv(key, "")
		}
		cfg := DefaultTestDBConfig()
		assert.Equal(t, TestDBConfig{Host: "localhost", Port: "55432", User: "hillstay", Password: "hillstay", DBName: "hillstay"}, cfg)
	})

	t.Run("respects environment overrides", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "postgres")
		t.Setenv("TEST_DB_PORT", "5432")
		cfg := DefaultTestDBConfig()
		assert.Equal(t, "postgres", cfg.Host)
		assert.Equal(t, "5432", cfg.Port)
	})
}

func TestTestDBConfig_DSN(t *testing.T) {
	t.Setenv("DB_SSL_MODE", "")
	cfg := TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", cfg.DSN())
}

func TestSetupTestRedis(t *testing.T) {
	client, srv := SetupTestRedis(t)
	assert.NoError(t, client.Set(t.Context(), "k", "v", 0).Err())
	got, err := srv.Get("k")
	assert.NoError(t, err)
	assert.Equal(t, "v", got)
}
