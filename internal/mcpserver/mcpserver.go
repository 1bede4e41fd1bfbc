package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers the sweep tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all sweepstacx tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "sweepstacx",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scan_unused_imports",
		Description: describeScan(),
	}, handleScanUnusedImports)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "preview_patch",
		Description: describePreviewPatch(),
	}, handlePreviewPatch)
}
