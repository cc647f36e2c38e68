package config

import (
	"time"
)

// Config represents the complete application configuration. Values are
// layered as flags > environment > config file > defaults.
type Config struct {
	ClickUp   ClickUpConfig `mapstructure:"clickup" yaml:"clickup"`
	Transport string        `mapstructure:"transport" yaml:"transport"`
	Server    ServerConfig  `mapstructure:"server" yaml:"server"`
	Cache     CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Logging   LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics   MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Debug     DebugConfig   `mapstructure:"debug" yaml:"debug"`
}

// ClickUpConfig contains API access settings. These are fixed for the life
// of a client session.
type ClickUpConfig struct {
	APIKey          string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit       int           `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateLimitPolicy string        `mapstructure:"rate_limit_policy" yaml:"rate_limit_policy"`
	RetryAttempts   int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

// ServerConfig contains HTTP server configuration for the sse transport
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// CacheConfig controls the GET response cache. The backing store is
// libsql: a local file path or a remote URL with an auth token.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Path      string        `mapstructure:"path" yaml:"path"`
	URL       string        `mapstructure:"url" yaml:"url"`
	AuthToken string        `mapstructure:"auth_token" yaml:"auth_token"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the dedicated Prometheus exporter port
	Port int `mapstructure:"port" yaml:"port"`
}

// DebugConfig contains debug configuration
type DebugConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)
