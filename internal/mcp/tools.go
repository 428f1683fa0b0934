package mcp

import "github.com/mark3labs/mcp-go/mcp"

// sendContainerTool defines the send_container MCP tool.
var sendContainerTool = mcp.NewTool("send_container",
	mcp.WithDescription("Send a Discord message holding one container with a single markdown text block."),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("Markdown text to display inside the container"),
	),
	mcp.WithString("channel_id",
		mcp.Description("Target channel ID (defaults to the configured channel)"),
	),
)

// sendContainerLinesTool defines the send_container_lines MCP tool.
var sendContainerLinesTool = mcp.NewTool("send_container_lines",
	mcp.WithDescription("Send a Discord message holding one container with a separate text block per line, in order."),
	mcp.WithArray("lines",
		mcp.Required(),
		mcp.Description("Markdown strings, one text block each"),
		mcp.WithStringItems(),
	),
	mcp.WithString("channel_id",
		mcp.Description("Target channel ID (defaults to the configured channel)"),
	),
)

// buildContainerTool defines the build_container MCP tool.
var buildContainerTool = mcp.NewTool("build_container",
	mcp.WithDescription("Build the JSON message body for a container without sending it."),
	mcp.WithArray("lines",
		mcp.Required(),
		mcp.Description("Markdown strings, one text block each"),
		mcp.WithStringItems(),
	),
)
