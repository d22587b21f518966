package config

import (
	"net"
	"strconv"
	"time"
)

type proxyCfg struct {
	UpstreamURL         string        `toml:"upstreamURL"`
	APIKey              string        `toml:"apiKey"`
	ConnectTimeout      time.Duration `toml:"connectTimeout"`
	RequestTimeout      time.Duration `toml:"requestTimeout"`
	MaxIdleConnsPerHost int           `toml:"maxIdleConnPerHost"`
	IdleConnTimeout     time.Duration `toml:"idleConnTimeout"`
	KeepAlive           time.Duration `toml:"keepAlive"`
}

type cacheCfg struct {
	TTLSeconds             int  `toml:"ttlSeconds"`
	MaxCapacity            int  `toml:"maxCapacity"`
	Shards                 int  `toml:"shards"`
	CleanupIntervalSeconds int  `toml:"cleanupIntervalSeconds"`
	SingleFlight           bool `toml:"singleFlight"`
}

type originCfg struct {
	Exact  string `toml:"exact"`
	Suffix string `toml:"suffix"`
}

type logCfg struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"maxSizeMB"`
	MaxBackups int    `toml:"maxBackups"`
	MaxAgeDays int    `toml:"maxAgeDays"`
}

// SystemCfg is built once at startup and treated as read-only afterwards.
type SystemCfg struct {
	Host            string        `toml:"host"`
	Port            int           `toml:"port"`
	ShutdownTimeout time.Duration `toml:"shutdownTimeout"`
	Proxy           proxyCfg      `toml:"proxy"`
	Cache           cacheCfg      `toml:"cache"`
	Origin          originCfg     `toml:"origin"`
	Log             logCfg        `toml:"log"`
}

// ListenAddr joins Host and Port.
func (c *SystemCfg) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// CacheTTL returns the configured entry lifetime.
func (c *SystemCfg) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
