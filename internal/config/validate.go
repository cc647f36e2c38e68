package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ariadng/clickup-mcp/internal/core/engine"
)

var apiKeyPattern = regexp.MustCompile(`^pk_\d+_[A-Z0-9]{32}$`)

var logLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// ValidAPIKey reports whether key has the ClickUp personal token shape.
func ValidAPIKey(key string) bool {
	return apiKeyPattern.MatchString(strings.TrimSpace(key))
}

// Validate checks the configuration, reporting every problem found.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	switch {
	case c.ClickUp.APIKey == "":
		add("clickup.api_key is required (set --api-key or CLICKUP_API_KEY)")
	case !ValidAPIKey(c.ClickUp.APIKey):
		add("clickup.api_key has an invalid format (expected pk_<digits>_<32 uppercase alphanumerics>)")
	}

	if c.ClickUp.Timeout <= 0 {
		add("clickup.timeout must be positive")
	}
	if c.ClickUp.RateLimit <= 0 {
		add("clickup.rate_limit must be positive")
	}
	if c.ClickUp.RetryAttempts < 0 {
		add("clickup.retry_attempts must not be negative")
	}
	if c.ClickUp.RetryDelay < 0 {
		add("clickup.retry_delay must not be negative")
	}
	if _, err := engine.ParseRateLimitPolicy(c.ClickUp.RateLimitPolicy); err != nil {
		add("clickup.rate_limit_policy: %v", err)
	}

	switch c.Transport {
	case TransportStdio:
	case TransportSSE:
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			add("server.port must be between 1 and 65535")
		}
	default:
		add("transport must be %q or %q, got %q", TransportStdio, TransportSSE, c.Transport)
	}

	if level := strings.ToLower(strings.TrimSpace(c.Logging.Level)); level != "" && !logLevels[level] {
		add("logging.level %q is not one of trace, debug, info, warn, error", c.Logging.Level)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		add("cache.ttl must be positive when the cache is enabled")
	}

	return errors.Join(problems...)
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.ClickUp.APIKey = RedactAPIKey(c.ClickUp.APIKey)
	if out.Cache.AuthToken != "" {
		out.Cache.AuthToken = "********"
	}
	return &out
}

// RedactAPIKey keeps the account prefix and the last four characters.
func RedactAPIKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "********"
	}
	prefix := ""
	if idx := strings.LastIndex(key, "_"); idx > 0 && idx < len(key)-4 {
		prefix = key[:idx+1]
	}
	return prefix + "****" + key[len(key)-4:]
}
