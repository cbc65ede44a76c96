package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	serverName    = "ammo-bundler"
	serverVersion = "1.0.0"
)

// NewServer builds the MCP server with all tools registered.
func NewServer(svc Service, logger *zap.Logger) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	registerTools(s, svc, logger)
	return s
}

// Serve starts the MCP stdio server.
func Serve(svc Service, logger *zap.Logger) error {
	return server.ServeStdio(NewServer(svc, logger))
}
