package cmd

import (
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/ariadng/clickup-mcp/internal/output"
	"github.com/ariadng/clickup-mcp/internal/tools"
)

var toolsOutput string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools this server exposes",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(toolsOutput)
		if err != nil {
			return err
		}

		rows := toolRows(tools.Definitions())
		if format == output.FormatJSON {
			rendered, err := output.JSON(rows)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), output.ToolsTable(rows))
		return err
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().StringVarP(&toolsOutput, "output", "o", "table", "output format: table or json")
}

func toolRows(defs []mcp.Tool) []output.ToolRow {
	rows := make([]output.ToolRow, 0, len(defs))
	for _, def := range defs {
		required := make(map[string]bool, len(def.InputSchema.Required))
		for _, name := range def.InputSchema.Required {
			required[name] = true
		}

		var optional []string
		for name := range def.InputSchema.Properties {
			if !required[name] {
				optional = append(optional, name)
			}
		}
		sort.Strings(optional)

		rows = append(rows, output.ToolRow{
			Name:        def.Name,
			Description: def.Description,
			Required:    append([]string(nil), def.InputSchema.Required...),
			Optional:    optional,
		})
	}
	return rows
}
