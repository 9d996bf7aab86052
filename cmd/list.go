package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/flowboard/internal/domain"
)

var (
	listStatus string
	listType   string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long:  `List the tasks on the board, optionally filtered by status and type.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		ctx := cmd.Context()

		filter, err := parseFilter(listStatus, listType)
		if err != nil {
			return err
		}

		tasks, err := app.board.ListTasks(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if tasks == nil {
				tasks = []*domain.Task{}
			}
			return printJSON(out, map[string]any{
				"tasks": tasks,
				"count": len(tasks),
			})
		}

		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		for _, status := range domain.ValidStatuses {
			column := domain.FilterTasks(tasks, domain.TaskFilter{Status: status})
			if len(column) == 0 {
				continue
			}
			fmt.Fprintf(out, "📋 %s (%d):\n", status.Label(), len(column))
			for _, task := range column {
				printTask(out, task)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

// parseFilter validates the optional status and type flags.
func parseFilter(status, taskType string) (domain.TaskFilter, error) {
	var filter domain.TaskFilter
	if status != "" {
		s, err := domain.ParseTaskStatus(status)
		if err != nil {
			return filter, err
		}
		filter.Status = s
	}
	if taskType != "" {
		t, err := domain.ParseTaskType(taskType)
		if err != nil {
			return filter, err
		}
		filter.Type = t
	}
	return filter, nil
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Filter by status (todo, in-progress, complete)")
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Filter by type (project, daily)")
}
