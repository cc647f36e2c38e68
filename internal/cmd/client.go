package cmd

import (
	"context"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/ariadng/clickup-mcp/internal/config"
	"github.com/ariadng/clickup-mcp/internal/core/clickup"
	"github.com/ariadng/clickup-mcp/internal/core/engine"
	"github.com/ariadng/clickup-mcp/internal/core/store"
	"github.com/ariadng/clickup-mcp/internal/metrics"
)

// newClient builds the ClickUp client for cfg. cache may be nil.
func newClient(cfg *config.Config, logger *logging.Logger, cache *store.Store) *clickup.Client {
	policy, _ := engine.ParseRateLimitPolicy(cfg.ClickUp.RateLimitPolicy)

	opts := clickup.Options{
		APIKey:          cfg.ClickUp.APIKey,
		BaseURL:         cfg.ClickUp.BaseURL,
		UserAgent:       config.AppName + "/" + versionInfo.Version,
		Timeout:         cfg.ClickUp.Timeout,
		RateLimit:       cfg.ClickUp.RateLimit,
		RateLimitPolicy: policy,
		MaxRetries:      cfg.ClickUp.RetryAttempts,
		RetryDelay:      cfg.ClickUp.RetryDelay,
		Logger:          logger,
		Metrics:         metrics.APIRecorder{},
		CacheTTL:        cfg.Cache.TTL,
	}
	if cache != nil {
		opts.Cache = cache
	}
	return clickup.NewClient(opts)
}

// openCache opens the response cache when enabled. A cache that cannot be
// opened is logged and skipped; requests then always go to ClickUp.
func openCache(ctx context.Context, cfg *config.Config, logger *logging.Logger) *store.Store {
	if !cfg.Cache.Enabled {
		return nil
	}
	db, err := store.OpenAndMigrate(ctx, cfg.Cache)
	if err != nil {
		if logger != nil {
			logger.Warn("Response cache unavailable, continuing without it", zap.Error(err))
		}
		return nil
	}
	return db
}

// openStore opens the response cache for the cache subcommands.
func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.OpenAndMigrate(ctx, cfg.Cache)
}
