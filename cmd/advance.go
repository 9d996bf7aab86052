package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// advanceCmd represents the advance command
var advanceCmd = &cobra.Command{
	Use:   "advance [task-id]",
	Short: "Move a task to the next column",
	Long: `Move a task along the board: To Do → In Progress → Complete → To Do.

The task ID may be shortened to any unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		ctx := cmd.Context()

		task, err := resolveTask(ctx, args[0])
		if err != nil {
			return err
		}
		from := task.Status

		task, err = app.board.AdvanceTask(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("failed to advance task: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{
				"task": task,
				"from": from,
				"to":   task.Status,
			})
		}

		fmt.Fprintf(out, "%s %s: %s → %s\n", getStatusIcon(task.Status), task.Title, from.Label(), task.Status.Label())
		return nil
	},
}
