// Package cmd provides the CLI commands for the flowboard application.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/xvierd/flowboard/internal/domain"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	dbPath     string
	jsonOutput bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flowboard",
	Short: "flowboard - a kanban board with a focus timer",
	Long: `flowboard keeps your tasks on a three-column board (To Do, In Progress,
Complete) and runs a focus timer against the task you are working on.

Run "flowboard" with no arguments to open the board.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(cmd.Context(), "")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_ = cleanupServices()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Backend credentials: a SQLite path or postgres:// URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write debug logs")

	// Set version - cobra handles --version automatically
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("flowboard\nVersion: {{.Version}}\n")

	// Add subcommands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(advanceCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// getStatusIcon returns an icon for a task status.
func getStatusIcon(status domain.TaskStatus) string {
	switch status {
	case domain.StatusTodo:
		return "⏳"
	case domain.StatusInProgress:
		return "▶️"
	case domain.StatusComplete:
		return "✅"
	default:
		return "❓"
	}
}

// shortID returns the first 8 characters of an id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// printTask writes one task line with its details.
func printTask(w io.Writer, task *domain.Task) {
	fmt.Fprintf(w, "%s %s (ID: %s)\n", getStatusIcon(task.Status), task.Title, shortID(task.ID))
	fmt.Fprintf(w, "   %dm · %s energy · %s\n", task.FocusTime, task.EnergyLevel, task.Type)
}
