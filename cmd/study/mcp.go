// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server over the same tracker service as the HTTP API.
package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/study/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Writes made through its tools run the
same recompute and notification pass as the HTTP API.

AVAILABLE TOOLS:

  get_evolution          Per-discipline aggregates
  get_performance_history  Daily performance history
  get_goals_progress     Goals with current value and progress
  list_notifications     Recent or unread notifications
  mark_notifications_read  Mark notifications as read
  check_notifications    Evaluate notification rules now
  record_result          Record an exercise result
  record_session         Record a study session
  complete_task          Mark a task completed

AVAILABLE RESOURCES:

  study://evolution        Evolution snapshot with totals
  study://notifications    Unread notifications`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(current.svc)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
