package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ariadng/clickup-mcp/internal/core"
)

// ToolRow describes one tool in the catalog.
type ToolRow struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    []string `json:"required,omitempty"`
	Optional    []string `json:"optional,omitempty"`
}

// CheckReport is the result of a connection check.
type CheckReport struct {
	BaseURL    string               `json:"base_url"`
	UserID     int64                `json:"user_id"`
	Username   string               `json:"username"`
	Email      string               `json:"email"`
	Workspaces int                  `json:"workspaces"`
	Latency    time.Duration        `json:"latency"`
	RateLimit  core.RateLimitStatus `json:"rate_limit"`
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

// ToolsTable renders the tool catalog.
func ToolsTable(rows []ToolRow) string {
	t := newTable()
	t.AppendHeader(table.Row{"Tool", "Required", "Optional", "Description"})
	for _, row := range rows {
		t.AppendRow(table.Row{
			row.Name,
			joinOrDash(row.Required),
			joinOrDash(row.Optional),
			firstLine(row.Description),
		})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d tools", len(rows))})
	return t.Render()
}

// CacheStatsTable renders response cache statistics.
func CacheStatsTable(driver string, stats *core.CacheStats) string {
	t := newTable()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Driver", driver})
	if stats == nil {
		t.AppendRow(table.Row{"Entries", 0})
		return t.Render()
	}
	t.AppendRow(table.Row{"Entries", stats.Entries})
	t.AppendRow(table.Row{"Expired", stats.Expired})
	t.AppendRow(table.Row{"Bytes", stats.Bytes})
	t.AppendRow(table.Row{"Oldest", timeOrDash(stats.Oldest)})
	t.AppendRow(table.Row{"Newest", timeOrDash(stats.Newest)})
	return t.Render()
}

// CheckTable renders a connection check report.
func CheckTable(report CheckReport) string {
	t := newTable()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"API", report.BaseURL})
	t.AppendRow(table.Row{"User", fmt.Sprintf("%s (%d)", report.Username, report.UserID)})
	t.AppendRow(table.Row{"Email", report.Email})
	t.AppendRow(table.Row{"Workspaces", report.Workspaces})
	t.AppendRow(table.Row{"Latency", report.Latency.Round(time.Millisecond).String()})
	t.AppendRow(table.Row{"Rate limit", fmt.Sprintf("%d/%d remaining per %s",
		report.RateLimit.Remaining, report.RateLimit.Limit, report.RateLimit.Window)})
	return t.Render()
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func firstLine(value string) string {
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		return strings.TrimSpace(value[:idx])
	}
	return value
}

func timeOrDash(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format(time.RFC3339)
}
