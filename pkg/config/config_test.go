package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable LoadConfig reads, restoring them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	names := []string{ConfigFileEnv}
	for _, b := range envBindings {
		names = append(names, b.name)
	}
	for _, n := range names {
		t.Setenv(n, "")
		require.NoError(t, os.Unsetenv(n))
	}
}

func TestLoadConfig_defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Proxy.APIKey)
	assert.Equal(t, DefaultUpstreamURL, cfg.Proxy.UpstreamURL)
	assert.Equal(t, "0.0.0.0:3000", cfg.ListenAddr())
	assert.Equal(t, 600, cfg.Cache.TTLSeconds)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 10_000, cfg.Cache.MaxCapacity)
	assert.Equal(t, DefaultOriginExact, cfg.Origin.Exact)
	assert.Equal(t, DefaultOriginSuffix, cfg.Origin.Suffix)
	assert.Equal(t, 10*time.Second, cfg.Proxy.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.Proxy.RequestTimeout)
	assert.True(t, cfg.Cache.SingleFlight)
}

func TestLoadConfig_envOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "k")
	t.Setenv("UPSTREAM_URL", "http://127.0.0.1:9000")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "8081")
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("CACHE_MAX_CAPACITY", "5")
	t.Setenv("ALLOWED_ORIGIN_SUFFIX", ".example.org")
	t.Setenv("ALLOWED_ORIGIN_EXACT", "example.org")
	t.Setenv("CACHE_SINGLE_FLIGHT", "false")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000", cfg.Proxy.UpstreamURL)
	assert.Equal(t, "127.0.0.1:8081", cfg.ListenAddr())
	assert.Equal(t, 30, cfg.Cache.TTLSeconds)
	assert.Equal(t, 5, cfg.Cache.MaxCapacity)
	assert.Equal(t, ".example.org", cfg.Origin.Suffix)
	assert.Equal(t, "example.org", cfg.Origin.Exact)
	assert.False(t, cfg.Cache.SingleFlight)
}

func TestLoadConfig_unparsableNumbersKeepDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "k")
	t.Setenv("PORT", "not-a-port")
	t.Setenv("CACHE_TTL_SECONDS", "ten")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 600, cfg.Cache.TTLSeconds)
}

func TestLoadConfig_missingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig("")
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "API_KEY", cfgErr.Key)
	assert.Equal(t, "API_KEY environment variable is required", cfgErr.Error())
}

func TestLoadConfig_emptyAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Equal(t, "API_KEY cannot be empty", err.Error())
}

func TestLoadConfig_rejectsNonPositiveCacheLimits(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "k")
	t.Setenv("CACHE_MAX_CAPACITY", "0")

	_, err := LoadConfig("")
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "CACHE_MAX_CAPACITY", cfgErr.Key)
}

func TestLoadConfig_tomlFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = 4000

[proxy]
upstreamURL = "http://file-upstream"
apiKey = "from-file"
requestTimeout = "5s"

[cache]
ttlSeconds = 42
`), 0o600))
	t.Setenv("CACHE_TTL_SECONDS", "7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "http://file-upstream", cfg.Proxy.UpstreamURL)
	assert.Equal(t, "from-file", cfg.Proxy.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Proxy.RequestTimeout)
	assert.Equal(t, 7, cfg.Cache.TTLSeconds, "env wins over file")
	assert.Equal(t, 10_000, cfg.Cache.MaxCapacity, "untouched keys keep defaults")
}

func TestLoadConfig_missingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "k")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "config", cfgErr.Key)
}
