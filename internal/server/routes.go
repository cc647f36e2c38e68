package server

import (
	"github.com/fulmenhq/gofulmen/signals"
	"go.uber.org/zap"

	"github.com/ariadng/clickup-mcp/internal/observability"
	"github.com/ariadng/clickup-mcp/internal/server/handlers"
)

// AdminTokenEnv enables the admin signal endpoint when set.
const AdminTokenEnv = "CLICKUP_ADMIN_TOKEN"

func (s *Server) registerRoutes() {
	health := s.opts.Health
	s.router.Get("/health", health.HealthHandler)
	s.router.Get("/health/live", health.LivenessHandler)
	s.router.Get("/health/ready", health.ReadinessHandler)
	s.router.Get("/health/startup", health.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", MetricsHandler)

	if transport := s.opts.Transport; transport != nil {
		s.router.Handle("/sse", transport.SSEHandler())
		s.router.Handle("/message", transport.MessageHandler())
	}

	s.registerAdminEndpoint()
}

// registerAdminEndpoint exposes gofulmen's signal handler behind a bearer
// token. Without a token the route is not registered.
func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger

	if s.opts.AdminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no " + AdminTokenEnv + " set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.opts.AdminToken,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
	}
}
