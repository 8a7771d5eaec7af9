// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server over the ledger.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/haul/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant
integration. The server communicates via stdin/stdout.

CONFIGURATION:

  {
    "mcpServers": {
      "haul": {
        "command": "haul",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  record_load   Record a load dumped onto a field
  undo_load     Undo the current driver's most recent load
  list_fields   List active fields, sorted by priority
  driver_stats  Per-driver totals, rate, and streak
  activity      Recent load activity
  pin_field     Pin a field to the top of the board
  unpin_field   Remove a field's pin

AVAILABLE RESOURCES:

  haul://today          Today's dashboard
  haul://fields         Field board with progress
  haul://achievements   Earned badges and catalog`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(ctrl)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		// Keep the board fresh while the assistant is connected.
		go func() {
			_ = ctrl.Run(ctx)
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
