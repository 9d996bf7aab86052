package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xvierd/flowboard/internal/domain"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy-search task titles",
	Long:  `Search task titles with fuzzy matching. Best matches are listed first.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}

		query := strings.Join(args, " ")
		tasks, err := app.board.SearchTasks(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to search tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if tasks == nil {
				tasks = []*domain.Task{}
			}
			return printJSON(out, map[string]any{
				"query": query,
				"tasks": tasks,
				"count": len(tasks),
			})
		}

		if len(tasks) == 0 {
			fmt.Fprintf(out, "No tasks match %q.\n", query)
			return nil
		}
		fmt.Fprintf(out, "🔍 %d match(es) for %q:\n\n", len(tasks), query)
		for _, task := range tasks {
			printTask(out, task)
		}
		return nil
	},
}
