package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Long:  `Delete a task by its ID. Use with caution - this cannot be undone.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		// Get task info first for confirmation
		task, err := resolveTask(ctx, args[0])
		if err != nil {
			return err
		}

		// Confirm deletion
		if !jsonOutput && !deleteYes {
			fmt.Fprintf(out, "Are you sure you want to delete task '%s' (%s)? [y/N]: ", task.Title, shortID(task.ID))
			confirm, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			confirm = strings.TrimSpace(confirm)
			if confirm != "y" && confirm != "Y" {
				fmt.Fprintln(out, "Deletion cancelled.")
				return nil
			}
		}

		if err := app.board.DeleteTask(ctx, task.ID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		if jsonOutput {
			return printJSON(out, map[string]any{"deleted": true, "task_id": task.ID})
		}
		fmt.Fprintf(out, "✅ Task '%s' deleted successfully.\n", task.Title)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}
