package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xvierd/flowboard/internal/domain"
)

var (
	addFocus  int
	addEnergy string
	addType   string
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task to the To Do column.

Focus time must be one of 15, 30, 45, 60, 90 or 120 minutes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		ctx := cmd.Context()

		// Combine all arguments as the title
		title := strings.Join(args, " ")

		energy, err := domain.ParseEnergyLevel(addEnergy)
		if err != nil {
			return err
		}
		taskType, err := domain.ParseTaskType(addType)
		if err != nil {
			return err
		}

		task, err := app.board.CreateTask(ctx, title, addFocus, energy, taskType)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, task)
		}

		fmt.Fprintf(out, "✅ Task added: %s (ID: %s)\n", task.Title, task.ID)
		fmt.Fprintf(out, "   %dm · %s energy · %s\n", task.FocusTime, task.EnergyLevel, task.Type)
		return nil
	},
}

func init() {
	addCmd.Flags().IntVarP(&addFocus, "focus", "f", 30, "Focus time in minutes")
	addCmd.Flags().StringVarP(&addEnergy, "energy", "e", string(domain.EnergyMedium), "Energy level: High, Medium or Low")
	addCmd.Flags().StringVarP(&addType, "type", "t", string(domain.TypeProject), "Task type: project or daily")
}
