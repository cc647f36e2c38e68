package tools

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"
)

// ServerName is the MCP server name announced to hosts.
const ServerName = "clickup-mcp-server"

// NewMCPServer builds an MCP server with every tool registered.
func NewMCPServer(version string, ts *Toolset) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	ts.Register(s)
	return s
}

// ServeStdio serves s over in/out until ctx is done or in closes.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

// NewSSEServer returns an SSE transport for s. baseURL is the externally
// reachable origin used in the endpoint event.
func NewSSEServer(s *server.MCPServer, baseURL string) *server.SSEServer {
	return server.NewSSEServer(s,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
	)
}
