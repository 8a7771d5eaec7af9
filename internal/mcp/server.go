// ABOUTME: MCP server setup for the haul load tracker.
// ABOUTME: Wraps MCP server with a ledger controller connection.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/haul/internal/ledger"
)

// Server wraps the MCP server with ledger access.
type Server struct {
	mcpServer *mcp.Server
	ctrl      *ledger.Controller
}

// NewServer creates a new MCP server over the given ledger.
func NewServer(ctrl *ledger.Controller) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "haul",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		ctrl:      ctrl,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
