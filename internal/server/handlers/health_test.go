package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariadng/clickup-mcp/internal/core"
)

type stubChecker struct {
	err error
}

func (s stubChecker) CheckHealth(ctx context.Context) error {
	return s.err
}

func TestHealthHandlerReturnsHealthyStatus(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("clickup", stubChecker{})
	manager.SetRateLimitSource(func() core.RateLimitStatus {
		return core.RateLimitStatus{Limit: 100, Remaining: 97, Window: time.Minute}
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	manager.HealthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, StatusHealthy, resp.Checks["clickup"])
	require.NotNil(t, resp.RateLimit)
	assert.Equal(t, 97, resp.RateLimit.Remaining)
}

func TestReadinessReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("clickup", stubChecker{err: errors.New("down")})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()

	manager.ReadinessHandler(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp struct {
		Error struct {
			Code    string                 `json:"code"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)

	checks, ok := resp.Error.Details["checks"].(map[string]interface{})
	require.True(t, ok, "expected checks in error details")
	assert.Equal(t, StatusUnhealthy, checks["clickup"])
	assert.Equal(t, "ready", resp.Error.Details["probe"])
}

func TestLivenessRunsNoChecks(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("clickup", stubChecker{err: errors.New("down")})

	rec := httptest.NewRecorder()
	manager.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDetermineOverallStatusTreatsTimeoutAsDegraded(t *testing.T) {
	manager := NewHealthManager("dev")

	status := manager.determineOverallStatus(map[string]string{
		"clickup": StatusTimeout,
	})

	assert.Equal(t, StatusDegraded, status)
}

func TestCachedCheckerReusesResult(t *testing.T) {
	var calls atomic.Int32
	checker := &CachedChecker{
		Checker: HealthCheckerFunc(func(ctx context.Context) error {
			calls.Add(1)
			return nil
		}),
		TTL: time.Hour,
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, checker.CheckHealth(context.Background()))
	}
	assert.Equal(t, int32(1), calls.Load())
}
