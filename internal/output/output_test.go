package output

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ariadng/clickup-mcp/internal/core"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("markdown")
	require.Error(t, err)
}

func TestToolsTable(t *testing.T) {
	rendered := ToolsTable([]ToolRow{
		{Name: "create_task", Description: "Create a new task\nmore", Required: []string{"list_id", "name"}},
		{Name: "get_workspaces", Description: "List workspaces"},
	})

	require.Contains(t, rendered, "create_task")
	require.Contains(t, rendered, "list_id, name")
	require.Contains(t, rendered, "Create a new task")
	require.NotContains(t, rendered, "more")
	require.Contains(t, strings.ToLower(rendered), "2 tools")
}

func TestCacheStatsTable(t *testing.T) {
	oldest := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rendered := CacheStatsTable("libsql", &core.CacheStats{Entries: 3, Expired: 1, Bytes: 42, Oldest: &oldest})

	require.Contains(t, rendered, "libsql")
	require.Contains(t, rendered, "2024-01-02T03:04:05Z")
	require.Contains(t, rendered, "42")

	require.Contains(t, CacheStatsTable("libsql", nil), "Entries")
}

func TestCheckTable(t *testing.T) {
	rendered := CheckTable(CheckReport{
		BaseURL:    "https://api.clickup.com/api/v2",
		UserID:     7,
		Username:   "ada",
		Email:      "ada@example.com",
		Workspaces: 2,
		Latency:    120 * time.Millisecond,
		RateLimit:  core.RateLimitStatus{Limit: 100, Remaining: 98, Window: time.Minute},
	})

	require.Contains(t, rendered, "ada (7)")
	require.Contains(t, rendered, "98/100 remaining per 1m0s")
	require.Contains(t, rendered, "120ms")
}

func TestJSON(t *testing.T) {
	rendered, err := JSON(ToolRow{Name: "get_task", Required: []string{"task_id"}})
	require.NoError(t, err)
	require.Contains(t, rendered, "\"name\": \"get_task\"")
	require.Contains(t, rendered, "\"task_id\"")
}
