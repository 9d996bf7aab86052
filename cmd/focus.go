package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/flowboard/internal/domain"
)

// focusCmd represents the focus command
var focusCmd = &cobra.Command{
	Use:   "focus [task-id]",
	Short: "Open the board with a task focused",
	Long: `Open the board and attach the given task to the focus timer.
A To Do task moves to In Progress. With timer.auto_start the countdown
begins right away.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		task, err := resolveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !task.CanFocus() {
			return fmt.Errorf("cannot focus %q: %w", task.Title, domain.ErrTaskComplete)
		}
		return runBoard(cmd.Context(), task.ID)
	},
}
