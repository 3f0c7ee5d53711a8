package main

import (
	"context"
	"fmt"

	"github.com/aretw0/graphnav/internal/cli"
	"github.com/aretw0/graphnav/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts one editor session as an MCP server, so AI agents can create nodes,
link them, set outputs and move between nested graphs as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if transport != "stdio" && transport != "sse" {
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}

		s, _, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close(context.Background())

		// Logs go to stderr, so stdout stays free for JSON-RPC.
		srv := mcp.NewServer(s.Editor, mcp.WithLogger(s.Logger.With("component", "mcp")))

		if transport == "stdio" {
			s.Logger.Info("starting MCP server (stdio)", "session", s.ID)
			return srv.ServeStdio()
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		s.Logger.Info("starting MCP server (SSE)", "session", s.ID, "port", port)
		err = srv.ServeSSE(sigCtx, fmt.Sprintf(":%d", port), fmt.Sprintf("http://localhost:%d", port))
		s.Logger.Info("MCP server stopped")
		return err
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
