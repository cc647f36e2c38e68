package observability

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/fulmenhq/gofulmen/telemetry/exporters"
)

// DefaultMetricsNamespace prefixes exported metric names.
const DefaultMetricsNamespace = "clickup_mcp"

var (
	// TelemetrySystem is the global telemetry system. Nil disables metrics.
	TelemetrySystem *telemetry.System

	// PrometheusExporter is the prometheus metrics exporter
	PrometheusExporter *exporters.PrometheusExporter

	// metricsPort stores the port the Prometheus exporter is listening on
	metricsPort int
)

// InitMetrics starts a Prometheus exporter on host:port (port 0 picks a free
// port) and installs a telemetry system that emits to it.
func InitMetrics(host string, port int, namespace string) error {
	requestedPort := port
	if requestedPort < 0 {
		requestedPort = 0
	}
	metricsPort = requestedPort

	if strings.TrimSpace(namespace) == "" {
		namespace = DefaultMetricsNamespace
	}

	endpoint := net.JoinHostPort(strings.TrimSpace(host), strconv.Itoa(requestedPort))
	PrometheusExporter = exporters.NewPrometheusExporter(namespace, endpoint)

	if err := PrometheusExporter.Start(); err != nil {
		return fmt.Errorf("start prometheus exporter: %w", err)
	}

	if actualPort, err := resolvePort(PrometheusExporter.GetAddr()); err == nil {
		metricsPort = actualPort
	}

	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: PrometheusExporter,
	})
	if err != nil {
		return fmt.Errorf("create telemetry system: %w", err)
	}

	TelemetrySystem = sys
	telemetry.SetGlobalSystem(sys)
	return nil
}

// GetMetricsPort returns the port the Prometheus exporter is listening on
func GetMetricsPort() int {
	return metricsPort
}

func resolvePort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}
