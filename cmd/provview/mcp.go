package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/provview"
	"github.com/aretw0/provview/pkg/adapters/mcp"
	"github.com/aretw0/provview/pkg/session"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [source...]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts provview as an MCP Server so AI agents can load results and
search their provenance as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")

		sessions := session.NewManager(
			session.WithLogger(logger),
			session.WithResultOptions(provview.WithMaxQuerySize(cfg.Query.MaxSize)),
		)
		defer sessions.Close(context.Background())

		if err := preload(cmd.Context(), sessions, args); err != nil {
			return err
		}
		srv := mcp.NewServer(sessions, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting provview MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr, _ := cmd.Flags().GetString("address")
			if addr == "" {
				addr = cfg.HTTP.Address
			}
			if err := srv.ServeSSE(ctx, addr); err != nil {
				return fmt.Errorf("MCP server execution failed: %w", err)
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("address", "", "Address to listen on (only for SSE, default http.address)")
}
