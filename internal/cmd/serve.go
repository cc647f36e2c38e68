package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/signals"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ariadng/clickup-mcp/internal/config"
	"github.com/ariadng/clickup-mcp/internal/core/clickup"
	"github.com/ariadng/clickup-mcp/internal/core/store"
	apperrors "github.com/ariadng/clickup-mcp/internal/errors"
	"github.com/ariadng/clickup-mcp/internal/metrics"
	"github.com/ariadng/clickup-mcp/internal/observability"
	"github.com/ariadng/clickup-mcp/internal/server"
	"github.com/ariadng/clickup-mcp/internal/server/handlers"
	"github.com/ariadng/clickup-mcp/internal/tools"
)

const (
	startupCheckTimeout = 15 * time.Second
	healthCheckTTL      = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve ClickUp tools over stdio or sse",
	Long: `Serve ClickUp tools to an MCP host.

The connection to ClickUp is verified before serving; the process exits
if the API key is rejected or ClickUp is unreachable.

Transports:
  stdio  JSON-RPC over stdin/stdout (default). Logs go to stderr.
  sse    HTTP server with /sse and /message, plus /health, /version and
         /metrics.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}

	observability.InitServerLogger(config.AppName, cfg.Logging.Level, map[string]any{
		"transport": cfg.Transport,
		"version":   versionInfo.Version,
	})
	logger := observability.ServerLogger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cache := openCache(ctx, cfg, logger)
	if cache != nil {
		defer cache.Close() // nolint:errcheck // best-effort cleanup
	}
	client := newClient(cfg, logger, cache)

	checkCtx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	err = client.TestConnection(checkCtx)
	cancel()
	if err != nil {
		ExitWithCode(logger, foundry.ExitExternalServiceUnavailable, "ClickUp connection test failed", err)
	}

	logger.Info("Connected to ClickUp",
		zap.String("base_url", client.BaseURL),
		zap.Int("rate_limit", cfg.ClickUp.RateLimit),
		zap.String("rate_limit_policy", cfg.ClickUp.RateLimitPolicy),
		zap.Bool("cache", cache != nil))

	mcpServer := tools.NewMCPServer(versionInfo.Version, tools.New(client, logger))

	signals.OnShutdown(func(ctx context.Context) error {
		if err := logger.Sync(); err != nil {
			// Sync on stderr commonly fails with EINVAL.
			logger.Debug("Logger sync returned error", zap.Error(err))
		}
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	if cfg.Transport == config.TransportSSE {
		return serveSSE(ctx, cfg, client, cache, mcpServer)
	}
	return serveStdio(ctx, mcpServer)
}

func serveStdio(ctx context.Context, mcpServer *mcpserver.MCPServer) error {
	logger := observability.ServerLogger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signals.OnShutdown(func(context.Context) error {
		logger.Info("Stopping stdio transport")
		cancel()
		return nil
	})
	go listenSignals(ctx)

	logger.Info("Serving tools over stdio")
	err := tools.ServeStdio(ctx, mcpServer, os.Stdin, os.Stdout)
	if err != nil && !stderrors.Is(err, context.Canceled) {
		return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "stdio transport failed")
	}
	return nil
}

func serveSSE(ctx context.Context, cfg *config.Config, client *clickup.Client, cache *store.Store, mcpServer *mcpserver.MCPServer) error {
	logger := observability.ServerLogger

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(cfg.Server.Host, cfg.Metrics.Port, observability.DefaultMetricsNamespace); err != nil {
			return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "metrics initialization failed")
		}
		metrics.SetServerStartTime(time.Now().Unix())
	}

	health := handlers.NewHealthManager(versionInfo.Version)
	health.RegisterChecker("clickup", &handlers.CachedChecker{
		Checker: handlers.HealthCheckerFunc(client.TestConnection),
		TTL:     healthCheckTTL,
	})
	if cache != nil {
		health.RegisterChecker("cache", handlers.HealthCheckerFunc(func(ctx context.Context) error {
			_, err := cache.Stats(ctx)
			return err
		}))
	}
	health.SetRateLimitSource(client.RateLimitStatus)

	var toolNames []string
	for _, def := range tools.Definitions() {
		toolNames = append(toolNames, def.Name)
	}
	handlers.SetMCPInfo(tools.ServerName, toolNames)

	address := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := server.New(server.Options{
		Config:     cfg.Server,
		Health:     health,
		Transport:  tools.NewSSEServer(mcpServer, "http://"+address),
		AdminToken: os.Getenv(server.AdminTokenEnv),
	})

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	signals.OnShutdown(func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "server shutdown failed")
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	logger.Info("Serving tools over sse",
		zap.String("address", address),
		zap.String("sse", "http://"+address+"/sse"),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Int("metrics_port", observability.GetMetricsPort()))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()
	go listenSignals(ctx)

	if err := <-errChan; err != nil {
		return apperrors.Wrap(ctx, apperrors.CodeServiceUnavailable, err, fmt.Sprintf("listen on %s", address))
	}
	return nil
}

func listenSignals(ctx context.Context) {
	if err := signals.Listen(ctx); err != nil && observability.ServerLogger != nil {
		observability.ServerLogger.Error("Signal handler error", zap.Error(err))
	}
}
