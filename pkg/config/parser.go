package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/ashpect/edgeproxy/pkg/utils"
)

// ConfigFileEnv names a TOML file to load when no path is passed to LoadConfig.
const ConfigFileEnv = "EDGEPROXY_CONFIG"

const (
	DefaultUpstreamURL = "https://tracker.israeli.ovh"
	DefaultOriginExact  = "artistgrid.cx"
	DefaultOriginSuffix = ".artistgrid."
)

// Default returns the built-in settings. APIKey is left empty.
func Default() *SystemCfg {
	return &SystemCfg{
		Host:            "0.0.0.0",
		Port:            3000,
		ShutdownTimeout: 10 * time.Second,
		Proxy: proxyCfg{
			UpstreamURL:         DefaultUpstreamURL,
			ConnectTimeout:      10 * time.Second,
			RequestTimeout:      30 * time.Second,
			MaxIdleConnsPerHost: 32,
			IdleConnTimeout:     90 * time.Second,
			KeepAlive:           60 * time.Second,
		},
		Cache: cacheCfg{
			TTLSeconds:             600,
			MaxCapacity:            10_000,
			Shards:                 16,
			CleanupIntervalSeconds: 60,
			SingleFlight:           true,
		},
		Origin: originCfg{
			Exact:  DefaultOriginExact,
			Suffix: DefaultOriginSuffix,
		},
		Log: logCfg{
			Level:      utils.DefaultLogLevel,
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// ConfigError reports missing or invalid configuration. It is fatal at startup.
type ConfigError struct {
	Key string
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// env var -> setter applied when the variable is present
type envBinding struct {
	name  string
	apply func(cfg *SystemCfg, raw string)
}

var envBindings = []envBinding{
	{"API_KEY", func(c *SystemCfg, s string) { c.Proxy.APIKey = s }},
	{"UPSTREAM_URL", func(c *SystemCfg, s string) { c.Proxy.UpstreamURL = s }},
	{"HOST", func(c *SystemCfg, s string) { c.Host = s }},
	{"PORT", func(c *SystemCfg, s string) { setInt(&c.Port, s) }},
	{"CACHE_TTL_SECONDS", func(c *SystemCfg, s string) { setInt(&c.Cache.TTLSeconds, s) }},
	{"CACHE_MAX_CAPACITY", func(c *SystemCfg, s string) { setInt(&c.Cache.MaxCapacity, s) }},
	{"CACHE_SHARDS", func(c *SystemCfg, s string) { setInt(&c.Cache.Shards, s) }},
	{"CACHE_CLEANUP_INTERVAL_SECONDS", func(c *SystemCfg, s string) { setInt(&c.Cache.CleanupIntervalSeconds, s) }},
	{"CACHE_SINGLE_FLIGHT", func(c *SystemCfg, s string) { setBool(&c.Cache.SingleFlight, s) }},
	{"ALLOWED_ORIGIN_SUFFIX", func(c *SystemCfg, s string) { c.Origin.Suffix = s }},
	{"ALLOWED_ORIGIN_EXACT", func(c *SystemCfg, s string) { c.Origin.Exact = s }},
	{"LOG_LEVEL", func(c *SystemCfg, s string) { c.Log.Level = s }},
	{"LOG_FORMAT", func(c *SystemCfg, s string) { c.Log.Format = s }},
	{"LOG_FILE", func(c *SystemCfg, s string) { c.Log.File = s }},
	{"SHUTDOWN_TIMEOUT_SECONDS", func(c *SystemCfg, s string) {
		if n, err := strconv.Atoi(s); err == nil {
			c.ShutdownTimeout = time.Duration(n) * time.Second
		}
	}},
}

// LoadConfig builds the configuration: defaults, then the TOML file at path
// (or $EDGEPROXY_CONFIG) if any, then environment variables.
func LoadConfig(path string) (*SystemCfg, error) {
	config := Default()

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, &ConfigError{Key: "config", Msg: fmt.Sprintf("cannot read config file %s: %v", path, err)}
		}
	}

	v := viper.New()
	v.AllowEmptyEnv(true)
	for _, b := range envBindings {
		if err := v.BindEnv(b.name); err != nil {
			return nil, err
		}
		if v.IsSet(b.name) {
			b.apply(config, v.GetString(b.name))
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings that cannot fall back to a default.
func (c *SystemCfg) Validate() error {
	switch {
	case c.Proxy.APIKey == "":
		if _, ok := os.LookupEnv("API_KEY"); ok {
			return &ConfigError{Key: "API_KEY", Msg: "API_KEY cannot be empty"}
		}
		return &ConfigError{Key: "API_KEY", Msg: "API_KEY environment variable is required"}
	case c.Port <= 0 || c.Port > 65535:
		return &ConfigError{Key: "PORT", Msg: fmt.Sprintf("PORT out of range: %d", c.Port)}
	case c.Cache.TTLSeconds <= 0:
		return &ConfigError{Key: "CACHE_TTL_SECONDS", Msg: "CACHE_TTL_SECONDS must be > 0"}
	case c.Cache.MaxCapacity <= 0:
		return &ConfigError{Key: "CACHE_MAX_CAPACITY", Msg: "CACHE_MAX_CAPACITY must be > 0"}
	case c.Cache.CleanupIntervalSeconds <= 0:
		return &ConfigError{Key: "CACHE_CLEANUP_INTERVAL_SECONDS", Msg: "CACHE_CLEANUP_INTERVAL_SECONDS must be > 0"}
	}
	return nil
}

// unparsable numbers keep the previous value, like an unset variable
func setInt(dst *int, raw string) {
	if n, err := strconv.Atoi(raw); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, raw string) {
	if b, err := strconv.ParseBool(raw); err == nil {
		*dst = b
	}
}
