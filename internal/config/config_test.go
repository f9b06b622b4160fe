package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultConfigWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	require.NoError(t, err)
	require.Equal(t, path, resolved)
	require.Equal(t, Default(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "database_path: wirefeed.db")
	require.Contains(t, text, "name: DiscountNews")
	require.Contains(t, text, "delivery_timeout: 2s")
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := strings.Join([]string{
		"database_path: /tmp/feed.db",
		"log_level: debug",
		"default_channel:",
		"  name: General",
		"fanout:",
		"  max_concurrent: 3",
		"  delivery_timeout: 750ms",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)

	require.Equal(t, "/tmp/feed.db", cfg.DatabasePath)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "General", cfg.DefaultChannel.Name)
	require.Equal(t, Default().DefaultChannel.Description, cfg.DefaultChannel.Description)
	require.Equal(t, 3, cfg.Fanout.MaxConcurrent)
	require.Equal(t, 750*time.Millisecond, cfg.Fanout.DeliveryTimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database_path: from-file.db\n"), 0o600))

	t.Setenv("WIREFEED_DATABASE_PATH", "from-env.db")
	t.Setenv("WIREFEED_FANOUT_MAX_CONCURRENT", "4")
	t.Setenv("WIREFEED_DEFAULT_CHANNEL_NAME", "EnvNews")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)

	require.Equal(t, "from-env.db", cfg.DatabasePath)
	require.Equal(t, 4, cfg.Fanout.MaxConcurrent)
	require.Equal(t, "EnvNews", cfg.DefaultChannel.Name)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fanout: [unclosed"), 0o600))

	_, _, err := Load(nil, path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	tests := map[string]func(*Config){
		"empty database path": func(c *Config) { c.DatabasePath = "" },
		"unknown log level":   func(c *Config) { c.LogLevel = "loud" },
		"empty channel name":  func(c *Config) { c.DefaultChannel.Name = "" },
		"zero concurrency":    func(c *Config) { c.Fanout.MaxConcurrent = 0 },
		"zero timeout":        func(c *Config) { c.Fanout.DeliveryTimeout = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestUpdateFromKeepsZeroValues(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{
		DatabasePath: "other.db",
		Fanout:       FanoutConfig{DeliveryTimeout: time.Second},
	})

	require.Equal(t, "other.db", cfg.DatabasePath)
	require.Equal(t, time.Second, cfg.Fanout.DeliveryTimeout)
	require.Equal(t, Default().Fanout.MaxConcurrent, cfg.Fanout.MaxConcurrent)
	require.Equal(t, Default().LogLevel, cfg.LogLevel)
}
