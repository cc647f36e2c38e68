package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry/exporters"

	"github.com/ariadng/clickup-mcp/internal/observability"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// stubExporter installs a non-started exporter and routes the proxy
// client through rt.
func stubExporter(t *testing.T, rt roundTripFunc) {
	t.Helper()
	originalClient := metricsProxyClient
	originalExporter := observability.PrometheusExporter
	t.Cleanup(func() {
		metricsProxyClient = originalClient
		observability.PrometheusExporter = originalExporter
	})

	metricsProxyClient = &http.Client{Transport: rt}
	observability.PrometheusExporter = exporters.NewPrometheusExporter("clickup_mcp", "127.0.0.1:9090")
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Error.Code
}

func TestMetricsHandlerProxiesPrometheusOutput(t *testing.T) {
	var proxiedAccept string
	stubExporter(t, func(req *http.Request) (*http.Response, error) {
		proxiedAccept = req.Header.Get("Accept")
		body := "# TYPE clickup_mcp_tool_calls_total counter\nclickup_mcp_tool_calls_total{tool=\"get_task\",status=\"success\"} 3\n"
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}
		resp.Header.Set("Connection", "keep-alive")
		return resp, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept", "text/plain")
	rec := httptest.NewRecorder()
	MetricsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if proxiedAccept != "text/plain" {
		t.Fatalf("expected Accept to be forwarded, got %q", proxiedAccept)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/plain; version=0.0.4" {
		t.Fatalf("expected default Prometheus content type, got %s", got)
	}
	if rec.Header().Get("Connection") != "" {
		t.Fatal("expected hop-by-hop headers to be dropped")
	}
	if !strings.Contains(rec.Body.String(), "clickup_mcp_tool_calls_total") {
		t.Fatalf("expected tool metrics in output, got: %s", rec.Body.String())
	}
}

func TestMetricsHandlerExporterUnreachable(t *testing.T) {
	stubExporter(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "EXTERNAL_SERVICE_ERROR" {
		t.Fatalf("expected EXTERNAL_SERVICE_ERROR, got %s", code)
	}
}

func TestMetricsHandlerReturnsServiceUnavailableWithoutExporter(t *testing.T) {
	original := observability.PrometheusExporter
	observability.PrometheusExporter = nil
	t.Cleanup(func() { observability.PrometheusExporter = original })

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "SERVICE_UNAVAILABLE" {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %s", code)
	}
}
