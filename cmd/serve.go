package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/containerbot/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing tools that build and send container messages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newClient(cfg, logger)
		if err != nil {
			return err
		}

		mcpserver.Version = Version

		channel := cfg.ChannelID
		if channel == "" {
			channel = "(none)"
		}
		fmt.Fprintf(os.Stderr, "containerbot MCP server started on stdio (default channel=%s)\n", channel)

		srv := mcpserver.NewServer(client, cfg.ChannelID, logger)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
