// Package config provides centralized configuration management for the
// ClickUp MCP server. Flags, CLICKUP_* environment variables and an optional
// JSON or YAML file are layered through viper and decoded into Config.
package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// AppName names config and data directories.
const AppName = "clickup-mcp"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CLICKUP"

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// envBinding maps an environment variable to a config key.
type envBinding struct {
	Key string
	Env string
}

var envBindings = []envBinding{
	// ClickUp API access
	{Key: "clickup.api_key", Env: "API_KEY"},
	{Key: "clickup.base_url", Env: "BASE_URL"},
	{Key: "clickup.timeout", Env: "TIMEOUT"},
	{Key: "clickup.rate_limit", Env: "RATE_LIMIT"},
	{Key: "clickup.rate_limit_policy", Env: "RATE_LIMIT_POLICY"},
	{Key: "clickup.retry_attempts", Env: "RETRY_ATTEMPTS"},
	{Key: "clickup.retry_delay", Env: "RETRY_DELAY"},

	// Transport and server
	{Key: "transport", Env: "TRANSPORT"},
	{Key: "server.host", Env: "HOST"},
	{Key: "server.port", Env: "PORT"},

	{Key: "logging.level", Env: "LOG_LEVEL"},

	// Response cache
	{Key: "cache.enabled", Env: "CACHE_ENABLED"},
	{Key: "cache.ttl", Env: "CACHE_TTL"},
	{Key: "cache.path", Env: "CACHE_PATH"},
	{Key: "cache.url", Env: "CACHE_URL"},
	{Key: "cache.auth_token", Env: "CACHE_AUTH_TOKEN"},

	{Key: "metrics.enabled", Env: "METRICS_ENABLED"},
	{Key: "metrics.port", Env: "METRICS_PORT"},

	{Key: "debug.enabled", Env: "DEBUG"},
}

// EnvVars lists the supported environment variables.
func EnvVars() []string {
	out := make([]string, 0, len(envBindings))
	for _, binding := range envBindings {
		out = append(out, EnvPrefix+"_"+binding.Env)
	}
	return out
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("clickup.base_url", "https://api.clickup.com/api/v2")
	v.SetDefault("clickup.timeout", 30*time.Second)
	v.SetDefault("clickup.rate_limit", 100)
	v.SetDefault("clickup.rate_limit_policy", "fail")
	v.SetDefault("clickup.retry_attempts", 3)
	v.SetDefault("clickup.retry_delay", time.Second)

	v.SetDefault("transport", TransportStdio)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.path", DefaultCachePath())

	v.SetDefault("logging.level", "info")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("debug.enabled", false)
}

// BindEnv binds every CLICKUP_* variable on v.
func BindEnv(v *viper.Viper) error {
	for _, binding := range envBindings {
		if err := v.BindEnv(binding.Key, EnvPrefix+"_"+binding.Env); err != nil {
			return fmt.Errorf("bind %s: %w", binding.Env, err)
		}
	}
	return nil
}

// ReadFile merges a JSON or YAML config file into v. The format follows the
// file extension.
func ReadFile(v *viper.Viper, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// Load decodes the effective settings from v into a Config and stores it as
// the current configuration.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			millisecondsDurationHook(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ClickUp.APIKey = strings.TrimSpace(cfg.ClickUp.APIKey)
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	cfg.ClickUp.RateLimitPolicy = strings.ToLower(strings.TrimSpace(cfg.ClickUp.RateLimitPolicy))
	if cfg.Debug.Enabled {
		cfg.Logging.Level = "debug"
	}
	if strings.TrimSpace(cfg.Cache.URL) == "" && strings.TrimSpace(cfg.Cache.Path) == "" {
		cfg.Cache.Path = DefaultCachePath()
	}

	setConfig(cfg)
	return cfg, nil
}

// millisecondsDurationHook decodes bare numbers as milliseconds and strings
// as either milliseconds or Go durations ("1500ms", "2s").
func millisecondsDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		switch value := data.(type) {
		case time.Duration:
			return value, nil
		case int:
			return time.Duration(value) * time.Millisecond, nil
		case int32:
			return time.Duration(value) * time.Millisecond, nil
		case int64:
			return time.Duration(value) * time.Millisecond, nil
		case uint:
			return time.Duration(value) * time.Millisecond, nil
		case uint64:
			return time.Duration(value) * time.Millisecond, nil
		case float64:
			return time.Duration(value * float64(time.Millisecond)), nil
		case string:
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				return time.Duration(0), nil
			}
			if ms, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
				return time.Duration(ms) * time.Millisecond, nil
			}
			parsed, err := time.ParseDuration(trimmed)
			if err != nil {
				return nil, fmt.Errorf("invalid duration %q: %w", value, err)
			}
			return parsed, nil
		}
		return data, nil
	}
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(AppName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultCachePath returns the XDG-compliant path to the cache database.
func DefaultCachePath() string {
	dataDir := gfconfig.GetAppDataDir(AppName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + AppName + "-cache.db"
	}
	return filepath.Join(dataDir, "cache.db")
}
