package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/flowboard/internal/adapters/mcp"
)

// errMCPDisabled is returned when the MCP server is switched off in config.
var errMCPDisabled = errors.New("MCP server is disabled (set mcp.enabled = true)")

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server exposes the signed-in user's board: listing, searching, creating,
advancing and deleting tasks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.config.MCP.Enabled {
			return errMCPDisabled
		}
		if err := requireStore(); err != nil {
			return err
		}

		// stdout carries the protocol; status goes to stderr.
		errOut := cmd.ErrOrStderr()
		fmt.Fprintln(errOut, "🚀 Starting MCP server...")
		fmt.Fprintln(errOut, "   The server will communicate via stdio")
		fmt.Fprintln(errOut, "   Press Ctrl+C to stop")

		app.logger.Info("mcp server starting", "user_id", app.board.UserID())

		server := mcp.NewServer(app.board)
		if err := server.Start(cmd.Context()); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}
