package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ariadng/clickup-mcp/internal/config"
	apperrors "github.com/ariadng/clickup-mcp/internal/errors"
	"github.com/ariadng/clickup-mcp/internal/observability"
	"github.com/ariadng/clickup-mcp/internal/server/handlers"
	servermw "github.com/ariadng/clickup-mcp/internal/server/middleware"
)

// MCPTransport is the SSE transport mounted next to the operational routes.
type MCPTransport interface {
	SSEHandler() http.Handler
	MessageHandler() http.Handler
}

// Options configures a Server.
type Options struct {
	Config     config.ServerConfig
	Health     *handlers.HealthManager
	Transport  MCPTransport
	AdminToken string
}

// Server is the HTTP surface of the sse transport.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	opts    Options
	address string
}

// New creates a new HTTP server instance
func New(opts Options) *Server {
	if opts.Health == nil {
		opts.Health = handlers.NewHealthManager(handlers.AppVersion)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)

	// RequestID → Metrics → Recovery
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router:  r,
		opts:    opts,
		address: net.JoinHostPort(opts.Config.Host, strconv.Itoa(opts.Config.Port)),
	}

	handlers.SetHTTPErrorResponder(HandleError)
	s.registerRoutes()

	return s
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener. http.ErrServerClosed is not an error.
func (s *Server) Serve(listener net.Listener) error {
	cfg := s.opts.Config
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("addr", listener.Addr().String()),
			zap.Bool("mcp_sse", s.opts.Transport != nil))
	}

	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.address
}
