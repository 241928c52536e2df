package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// These tests use t.Setenv and therefore cannot run in parallel.

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "http://127.0.0.1:8000/api", cfg.BaseURL)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 10*time.Second, cfg.RefreshTimeout)
	require.Zero(t, cfg.RateLimit)
	require.Equal(t, 1, cfg.RateBurst)
	require.Equal(t, StoreSQLite, cfg.Store.Driver)
	require.Equal(t, "kingpanel.db", cfg.Store.SQLiteFile)
	require.Equal(t, "kingpanel", cfg.Redis.Prefix)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	t.Setenv("KINGPANEL_BASE_URL", "https://api.example.test/api")
	t.Setenv("KINGPANEL_STORE", "redis")
	t.Setenv("KINGPANEL_REDIS_ADDR", "cache:6379")
	t.Setenv("KINGPANEL_REDIS_DB", "2")
	t.Setenv("KINGPANEL_REFRESH_TIMEOUT", "3s")
	t.Setenv("KINGPANEL_RATE_LIMIT", "2.5")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "https://api.example.test/api", cfg.BaseURL)
	require.Equal(t, StoreRedis, cfg.Store.Driver)
	require.Equal(t, "cache:6379", cfg.Redis.Addr)
	require.Equal(t, 2, cfg.Redis.DB)
	require.Equal(t, 3*time.Second, cfg.RefreshTimeout)
	require.InDelta(t, 2.5, cfg.RateLimit, 1e-9)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kingpanel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://panel.example.test/api
store:
  driver: memory
log_level: debug
`), 0o600))

	t.Run("explicit path", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "https://panel.example.test/api", cfg.BaseURL)
		require.Equal(t, StoreMemory, cfg.Store.Driver)
		require.Equal(t, "debug", cfg.LogLevel)
		require.Equal(t, 10*time.Second, cfg.HTTPTimeout, "defaults fill the rest")
	})

	t.Run("path from env", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, path)

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		require.Equal(t, StoreMemory, cfg.Store.Driver)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "")
		t.Setenv("LOG_LEVEL", "warn")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")

	base, err := LoadConfig("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base URL", func(c *Config) { c.BaseURL = "/api" }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "etcd" }},
		{"sqlite without file", func(c *Config) { c.Store.SQLiteFile = "" }},
		{"sqlite without key", func(c *Config) { c.Store.MasterKeyFile = "" }},
		{"redis without address", func(c *Config) { c.Store.Driver = StoreRedis; c.Redis.Addr = "" }},
		{"zero refresh timeout", func(c *Config) { c.RefreshTimeout = 0 }},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	require.NoError(t, base.Validate())
}
