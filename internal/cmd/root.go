package cmd

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ariadng/clickup-mcp/internal/config"
	"github.com/ariadng/clickup-mcp/internal/observability"
)

var (
	cfgFile string
	debug   bool

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd serves tools when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "MCP server exposing ClickUp tasks, lists, spaces and workspaces",
	Long: `clickup-mcp is a Model Context Protocol server for the ClickUp API.

Without a subcommand it serves tools over stdio. Use --transport sse to
serve over HTTP instead.`,
	SilenceUsage: true,
}

// Execute runs the root command. Failures exit with a foundry code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ExitWithCode(observability.CLILogger, exitCodeFor(err), "Command execution failed", err)
	}
}

// flagBinding ties a persistent flag to its config key.
type flagBinding struct {
	Flag string
	Key  string
}

var flagBindings = []flagBinding{
	{Flag: "api-key", Key: "clickup.api_key"},
	{Flag: "timeout", Key: "clickup.timeout"},
	{Flag: "rate-limit", Key: "clickup.rate_limit"},
	{Flag: "rate-limit-policy", Key: "clickup.rate_limit_policy"},
	{Flag: "retry-attempts", Key: "clickup.retry_attempts"},
	{Flag: "retry-delay", Key: "clickup.retry_delay"},
	{Flag: "transport", Key: "transport"},
	{Flag: "host", Key: "server.host"},
	{Flag: "port", Key: "server.port"},
	{Flag: "debug", Key: "debug.enabled"},
	{Flag: "cache", Key: "cache.enabled"},
	{Flag: "cache-ttl", Key: "cache.ttl"},
}

func init() {
	// Stdout may carry the stdio transport; keep global telemetry quiet until
	// the sse transport installs an exporter.
	if sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false}); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file, JSON or YAML (default $XDG_CONFIG_HOME/clickup-mcp/config.yaml)")
	flags.StringP("api-key", "k", "", "ClickUp personal API token")
	flags.StringP("transport", "t", config.TransportStdio, "transport: stdio or sse")
	flags.String("host", "localhost", "sse listen host")
	flags.IntP("port", "p", 3000, "sse listen port")
	flags.Int("timeout", 30000, "request timeout in milliseconds")
	flags.IntP("rate-limit", "r", 100, "requests allowed per minute")
	flags.Int("retry-attempts", 3, "retries after the first attempt")
	flags.Int("retry-delay", 1000, "base retry delay in milliseconds")
	flags.String("rate-limit-policy", "fail", "when the window is full: fail or wait")
	flags.BoolVarP(&debug, "debug", "d", false, "debug logging")
	flags.Bool("cache", false, "enable the GET response cache")
	flags.String("cache-ttl", "5m", "response cache TTL")

	for _, binding := range flagBindings {
		_ = viper.BindPFlag(binding.Key, flags.Lookup(binding.Flag))
	}

	rootCmd.RunE = runServe
}

// initConfig layers defaults, environment and the config file into viper.
func initConfig() {
	observability.InitCLILogger(config.AppName, debug)

	v := viper.GetViper()
	config.SetDefaults(v)
	if err := config.BindEnv(v); err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to bind environment", err)
	}

	path := strings.TrimSpace(cfgFile)
	if path == "" {
		path = defaultConfigFile()
	}
	if path == "" {
		observability.CLILogger.Debug("No config file found, using defaults and environment variables")
		return
	}

	if err := config.ReadFile(v, path); err != nil {
		code := foundry.ExitConfigInvalid
		if stderrors.Is(err, fs.ErrNotExist) {
			code = foundry.ExitFileNotFound
		}
		ExitWithCode(observability.CLILogger, code, "Failed to read config file", err)
	}
	observability.CLILogger.Debug("Using config file", zap.String("path", path))
}

func defaultConfigFile() string {
	path := config.DefaultConfigPath()
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// loadConfig decodes the layered settings. Validation is left to callers
// that talk to ClickUp.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, &configError{err: err}
	}
	return cfg, nil
}

// loadValidConfig loads and validates the configuration.
func loadValidConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, &configError{err: err}
	}
	return cfg, nil
}
