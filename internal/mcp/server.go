package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/containerbot/internal/discord"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Sender delivers container messages. *discord.Client implements it.
type Sender interface {
	Send(ctx context.Context, target discord.Target, content string, overrides discord.Overrides) (discord.Message, error)
	SendMany(ctx context.Context, target discord.Target, contents []string, overrides discord.Overrides) (discord.Message, error)
}

// Server wraps an MCP server that exposes container message tools.
type Server struct {
	sender         Sender
	defaultChannel string
	logger         *slog.Logger
	mcp            *server.MCPServer
}

// NewServer creates a new MCP server. defaultChannel is used when a tool
// call has no channel_id; it may be empty.
func NewServer(sender Sender, defaultChannel string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		sender:         sender,
		defaultChannel: defaultChannel,
		logger:         logger,
	}

	s.mcp = server.NewMCPServer(
		"containerbot",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(sendContainerTool, s.handleSendContainer)
	s.mcp.AddTool(sendContainerLinesTool, s.handleSendContainerLines)
	s.mcp.AddTool(buildContainerTool, s.handleBuildContainer)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
