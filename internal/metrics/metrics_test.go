package metrics

import (
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariadng/clickup-mcp/internal/core/engine"
	"github.com/ariadng/clickup-mcp/internal/observability"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: collector,
	})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() {
		observability.TelemetrySystem = original
	})

	return collector
}

func TestAPIRecorder_RecordAttempt(t *testing.T) {
	collector := setupTelemetry(t)
	rec := APIRecorder{}

	rec.RecordAttempt("getTasks", 12*time.Millisecond, nil)
	rec.RecordAttempt("getTasks", 30*time.Millisecond, &engine.Error{Kind: engine.KindNetworkOrServerFault})

	assert.GreaterOrEqual(t, collector.CountMetricsByName(APIRequestsTotal), 2)
	assert.GreaterOrEqual(t, collector.CountMetricsByName(APIRequestDuration), 2)
}

func TestAPIRecorder_RetryAndRejection(t *testing.T) {
	collector := setupTelemetry(t)
	rec := APIRecorder{}

	rec.RecordRetry("createTask", engine.KindRateLimited)
	rec.RecordRejection("createTask", 0)

	assert.Greater(t, collector.CountMetricsByName(APIRetriesTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(RateLimitRejectionTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(RateLimitRemaining), 0)
}

func TestToolAndErrorMetrics(t *testing.T) {
	collector := setupTelemetry(t)

	RecordToolCall("get_tasks", "success", 5*time.Millisecond)
	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordError("NOT_FOUND", 404)
	RecordErrorByEndpoint("/health/ready", "EXTERNAL_SERVICE_ERROR")
	RecordPanic()
	SetServerStartTime(time.Now().Unix())
	SetRateLimitRemaining(42)

	assert.Greater(t, collector.CountMetricsByName(ToolCallsTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(ToolCallDuration), 0)
	assert.GreaterOrEqual(t, collector.CountMetricsByName(CacheLookupsTotal), 2)
	assert.Greater(t, collector.CountMetricsByName(ErrorsTotalName), 0)
	assert.Greater(t, collector.CountMetricsByName(ErrorsByEndpointName), 0)
	assert.Greater(t, collector.CountMetricsByName(PanicsTotalName), 0)
	assert.Greater(t, collector.CountMetricsByName(ServerStartTime), 0)
	assert.Greater(t, collector.CountMetricsByName(RateLimitRemaining), 0)
}

func TestMetrics_TelemetryDisabled(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	defer func() {
		observability.TelemetrySystem = original
	}()

	assert.NotPanics(t, func() {
		APIRecorder{}.RecordAttempt("getTask", time.Millisecond, nil)
		APIRecorder{}.RecordRetry("getTask", engine.KindRateLimited)
		APIRecorder{}.RecordRejection("getTask", 0)
		RecordToolCall("get_task", "success", time.Millisecond)
		RecordPanic()
	})
}
