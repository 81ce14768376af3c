package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Toggle a task's completion",
	Long: `Flip a task between done and pending. The change is applied locally
first and rolled back if the server rejects it.

Examples:
  taskdeck done abc123
  taskdeck done abc1`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := a.engine.LoadAll(ctx); err != nil {
		return err
	}

	t, err := a.resolveTask(args[0])
	if err != nil {
		return err
	}

	if err := a.engine.ToggleCompletion(ctx, t.ID); err != nil {
		return fmt.Errorf("failed to sync change: %w", err)
	}

	if !t.IsCompleted {
		fmt.Printf("✓ Completed: \"%s\"\n", t.Title)
	} else {
		fmt.Printf("○ Reopened: \"%s\"\n", t.Title)
	}
	return nil
}
