package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.ViewWriteLimit)
	assert.Equal(t, time.Minute, cfg.ViewWriteWindow)
	assert.Equal(t, 4, cfg.BeaconWorkers)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("GRACEFUL_SHUTDOWN_TIMEOUT", "5")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("VIEW_WRITE_LIMIT", "10")
	t.Setenv("VIEW_WRITE_WINDOW", "30s")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.EqualValues(t, 10, cfg.ViewWriteLimit)
	assert.Equal(t, 30*time.Second, cfg.ViewWriteWindow)
}

func TestLoadFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redis_addr: file-redis:6379\nlog_level: debug\nbeacon_workers: 2\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("config", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level=warn"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "file-redis:6379", cfg.RedisAddr)
	assert.Equal(t, "warn", cfg.LogLevel, "flags override the file")
	assert.Equal(t, 2, cfg.BeaconWorkers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid, err := Load("", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no listen addr", func(c *Config) { c.ListenAddr = "" }},
		{"no redis", func(c *Config) { c.RedisAddr = "" }},
		{"zero shutdown", func(c *Config) { c.GracefulShutdownTimeout = 0 }},
		{"negative limit", func(c *Config) { c.ViewWriteLimit = -1 }},
		{"limit without window", func(c *Config) { c.ViewWriteLimit = 5; c.ViewWriteWindow = 0 }},
		{"no workers", func(c *Config) { c.BeaconWorkers = 0 }},
		{"bad trusted proxy", func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/33"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.10")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.TrustedProxies)

	prefixes, err := cfg.TrustedProxyPrefixes()
	require.NoError(t, err)
	require.Len(t, prefixes, 2)
	assert.True(t, prefixes[0].Contains(netip.MustParseAddr("10.1.2.3")))
	assert.True(t, prefixes[1].Contains(netip.MustParseAddr("192.0.2.10")))
	assert.False(t, prefixes[1].Contains(netip.MustParseAddr("192.0.2.11")))

	t.Setenv("TRUSTED_PROXIES", "not-an-ip")
	_, err = Load("", nil)
	assert.ErrorContains(t, err, "trusted_proxies")
}
