package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadDefaults", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", t.TempDir())
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, err := Load(ctx, "")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		// Verify server defaults
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

		// Verify store defaults
		assert.Equal(t, "libsql", cfg.Store.Driver)
		assert.Equal(t, DefaultStorePath(), cfg.Store.Path)
		assert.Equal(t, "", cfg.Store.URL)
		assert.Equal(t, "", cfg.Store.AuthToken)

		// Verify throttle defaults
		assert.True(t, cfg.Throttle.PersistWindows)
		assert.Empty(t, cfg.Throttle.Services)

		// Verify pipeline defaults
		assert.Equal(t, "Draftmill", cfg.Pipeline.Author)
		assert.Equal(t, "compliance", cfg.Pipeline.Category)

		// Verify logging defaults
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "SIMPLE", cfg.Logging.Profile)

		// Verify metrics defaults
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, 9090, cfg.Metrics.Port)

		// Verify health defaults
		assert.True(t, cfg.Health.Enabled)

		// Verify debug defaults
		assert.False(t, cfg.Debug.Enabled)
		assert.False(t, cfg.Debug.PprofEnabled)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("DRAFTMILL_SERVER_PORT", "3000")
		t.Setenv("DRAFTMILL_LOGGING_LEVEL", "warn")
		t.Setenv("DRAFTMILL_METRICS_ENABLED", "false")
		t.Setenv("DRAFTMILL_PROVIDERS_CONTENT_API_KEY", "sk-test")

		cfg, err := Load(ctx, "")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.False(t, cfg.Metrics.Enabled)
		assert.Equal(t, "sk-test", cfg.Providers.Content.APIKey)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfgFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte(`
server:
  host: 0.0.0.0
  port: 9000
providers:
  content:
    base_url: https://llm.example.com/v1
    model: gpt-test
throttle:
  persist_windows: false
  services:
    content:
      max_requests: 5
      window: 30s
      max_retries: 2
`), 0o600))

		cfg, err := Load(ctx, cfgFile)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "https://llm.example.com/v1", cfg.Providers.Content.BaseURL)
		assert.Equal(t, "gpt-test", cfg.Providers.Content.Model)
		assert.False(t, cfg.Throttle.PersistWindows)

		svc, ok := cfg.Throttle.Services["content"]
		require.True(t, ok)
		assert.Equal(t, 5, svc.MaxRequests)
		assert.Equal(t, 30*time.Second, svc.Window)
		assert.Equal(t, 2, svc.MaxRetries)

		// Non-overridden values keep defaults
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("MissingExplicitConfigFileFails", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}

func TestDurationParsing(t *testing.T) {
	ctx := context.Background()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DRAFTMILL_SERVER_READ_TIMEOUT", "45s")
	t.Setenv("DRAFTMILL_SERVER_SHUTDOWN_TIMEOUT", "5m")

	cfg, err := Load(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Server.ShutdownTimeout)
}

func TestGetConfig(t *testing.T) {
	ctx := context.Background()

	cfg, err := Load(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	retrieved := GetConfig()
	assert.NotNil(t, retrieved)
	assert.Equal(t, cfg.Server.Port, retrieved.Server.Port)
	assert.Equal(t, cfg.Logging.Level, retrieved.Logging.Level)
}
