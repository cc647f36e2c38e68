package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariadng/clickup-mcp/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		rendered, err := renderConfig(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if _, err := fmt.Fprint(out, rendered); err != nil {
			return err
		}

		if err := cfg.Validate(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\nConfiguration problems:\n%v\n", err)
		}
		return nil
	},
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range config.EnvVars() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configEnvCmd)
}

func renderConfig(cfg *config.Config) (string, error) {
	data, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return "", fmt.Errorf("render config: %w", err)
	}
	return string(data), nil
}
