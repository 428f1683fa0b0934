package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/containerbot/internal/discord"
)

// handleSendContainer sends a single-text container.
func (s *Server) handleSendContainer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: content"), nil
	}
	target, errResult := s.target(request)
	if errResult != nil {
		return errResult, nil
	}

	msg, err := s.sender.Send(ctx, target, content, nil)
	return s.sendResult(target, msg, err), nil
}

// handleSendContainerLines sends a container with one text block per line.
func (s *Server) handleSendContainerLines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lines, err := request.RequireStringSlice("lines")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: lines"), nil
	}
	target, errResult := s.target(request)
	if errResult != nil {
		return errResult, nil
	}

	msg, err := s.sender.SendMany(ctx, target, lines, nil)
	return s.sendResult(target, msg, err), nil
}

// handleBuildContainer returns the message body as indented JSON.
func (s *Server) handleBuildContainer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lines, err := request.RequireStringSlice("lines")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: lines"), nil
	}

	out, err := json.MarshalIndent(discord.BuildMany(lines, nil), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding document: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// target resolves the channel for a send tool, falling back to the default.
func (s *Server) target(request mcp.CallToolRequest) (discord.Target, *mcp.CallToolResult) {
	id := request.GetString("channel_id", s.defaultChannel)
	if id == "" {
		return discord.Target{}, mcp.NewToolResultError("no channel_id given and no default channel configured")
	}
	return discord.RawID(id), nil
}

func (s *Server) sendResult(target discord.Target, msg discord.Message, err error) *mcp.CallToolResult {
	if err != nil {
		s.logger.Error("mcp send failed", slog.String("channel_id", target.ID()), slog.String("error", err.Error()))
		return mcp.NewToolResultError(fmt.Sprintf("send failed: %v", err))
	}
	if msg == nil {
		return mcp.NewToolResultError("message rejected")
	}
	return mcp.NewToolResultText(fmt.Sprintf("Sent message %s to channel %s", msg.ID(), target.ID()))
}
