package metrics

import (
	"time"

	"github.com/ariadng/clickup-mcp/internal/observability"
)

// Tool and server metrics
const (
	ToolCallsTotal   = "tool_calls_total"
	ToolCallDuration = "tool_call_duration_ms"

	CacheLookupsTotal = "response_cache_lookups_total"

	ServerStartTime = "app_server_start_time_seconds"
)

// RecordToolCall records one tool invocation with its outcome. Status is
// "success" or the error code returned to the host.
func RecordToolCall(tool string, status string, duration time.Duration) {
	if sys := observability.TelemetrySystem; sys != nil {
		_ = sys.Counter(ToolCallsTotal, 1, map[string]string{
			"tool":   tool,
			"status": status,
		})
		_ = sys.Histogram(ToolCallDuration, duration, map[string]string{
			"tool": tool,
		})
	}
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	if sys := observability.TelemetrySystem; sys != nil {
		_ = sys.Counter(CacheLookupsTotal, 1, map[string]string{"result": result})
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if sys := observability.TelemetrySystem; sys != nil {
		_ = sys.Gauge(ServerStartTime, float64(timestamp), nil)
	}
}
