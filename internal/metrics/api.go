package metrics

import (
	"time"

	"github.com/ariadng/clickup-mcp/internal/core/engine"
	"github.com/ariadng/clickup-mcp/internal/observability"
)

// ClickUp API metrics following Prometheus conventions
const (
	APIRequestsTotal        = "clickup_api_requests_total"
	APIRequestDuration      = "clickup_api_request_duration_ms"
	APIRetriesTotal         = "clickup_api_retries_total"
	RateLimitRejectionTotal = "clickup_rate_limit_rejections_total"
	RateLimitRemaining      = "clickup_rate_limit_remaining"
)

// APIRecorder reports executor activity to the telemetry system. The zero
// value is ready to use and does nothing while telemetry is disabled.
type APIRecorder struct{}

var _ engine.Recorder = APIRecorder{}

// RecordAttempt counts one HTTP attempt and its latency.
func (APIRecorder) RecordAttempt(label string, duration time.Duration, err *engine.Error) {
	sys := observability.TelemetrySystem
	if sys == nil {
		return
	}

	status := "success"
	if err != nil {
		status = string(err.Kind)
	}

	_ = sys.Counter(APIRequestsTotal, 1, map[string]string{
		"operation": label,
		"status":    status,
	})
	_ = sys.Histogram(APIRequestDuration, duration, map[string]string{
		"operation": label,
	})
}

// RecordRetry counts a retry scheduled after a failure of kind.
func (APIRecorder) RecordRetry(label string, kind engine.Kind) {
	if sys := observability.TelemetrySystem; sys != nil {
		_ = sys.Counter(APIRetriesTotal, 1, map[string]string{
			"operation": label,
			"kind":      string(kind),
		})
	}
}

// RecordRejection counts a local limiter rejection.
func (APIRecorder) RecordRejection(label string, remaining int) {
	if sys := observability.TelemetrySystem; sys != nil {
		_ = sys.Counter(RateLimitRejectionTotal, 1, map[string]string{
			"operation": label,
		})
		_ = sys.Gauge(RateLimitRemaining, float64(remaining), nil)
	}
}

// SetRateLimitRemaining publishes the limiter's remaining budget.
func SetRateLimitRemaining(remaining int) {
	if sys := observability.TelemetrySystem; sys != nil {
		_ = sys.Gauge(RateLimitRemaining, float64(remaining), nil)
	}
}

// RecordCacheLookup counts a response cache hit or miss.
func (APIRecorder) RecordCacheLookup(hit bool) {
	RecordCacheLookup(hit)
}
