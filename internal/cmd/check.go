package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ariadng/clickup-mcp/internal/core/clickup"
	"github.com/ariadng/clickup-mcp/internal/observability"
	"github.com/ariadng/clickup-mcp/internal/output"
)

var checkOutput string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the API key and show the authorized user",
	Long: `Verify that ClickUp accepts the configured API key.

Prints the authorized user, the number of visible workspaces and the
state of the outbound rate limit window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(checkOutput)
		if err != nil {
			return err
		}

		cfg, err := loadValidConfig()
		if err != nil {
			return err
		}

		client := newClient(cfg, observability.CLILogger, nil)
		report, err := runCheck(cmd.Context(), client)
		if err != nil {
			return err
		}

		if format == output.FormatJSON {
			rendered, err := output.JSON(report)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), output.CheckTable(report))
		return err
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "table", "output format: table or json")
}

func runCheck(ctx context.Context, client *clickup.Client) (output.CheckReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	user, err := client.GetAuthorizedUser(ctx)
	if err != nil {
		return output.CheckReport{}, err
	}
	latency := time.Since(start)

	teams, err := client.GetWorkspaces(ctx)
	if err != nil {
		return output.CheckReport{}, err
	}

	return output.CheckReport{
		BaseURL:    client.BaseURL,
		UserID:     user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Workspaces: len(teams),
		Latency:    latency,
		RateLimit:  client.RateLimitStatus(),
	}, nil
}
