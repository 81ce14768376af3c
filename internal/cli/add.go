package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/api"
	"github.com/existflow/taskdeck/internal/model"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Create a task on the server. Tags, priority and subtasks are set
afterwards with 'taskdeck edit' and 'taskdeck subtask'.

Examples:
  taskdeck add "Buy groceries"
  taskdeck add "Quarterly report" -d "figures for Q3" --due 15/10/2026`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDescription string
	addDue         string
)

func init() {
	addCmd.Flags().StringVarP(&addDescription, "desc", "d", "", "Task description")
	addCmd.Flags().StringVar(&addDue, "due", "", "Deadline (dd/mm/yyyy)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	title := strings.Join(args, " ")
	if addDue != "" && !model.ValidDeadline(addDue) {
		return fmt.Errorf("invalid deadline %q, expected dd/mm/yyyy", addDue)
	}

	if err := a.engine.LoadAll(context.Background()); err != nil {
		return err
	}
	if err := a.engine.Create(context.Background(), api.TaskDraft{
		Title:       title,
		Description: addDescription,
		Deadline:    addDue,
	}); err != nil {
		return err
	}

	fmt.Printf("✓ Added: \"%s\"\n", title)
	return nil
}
