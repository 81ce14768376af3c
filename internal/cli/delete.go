package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its id or a unique prefix. The task only disappears
locally once the server confirms the deletion.

Examples:
  taskdeck delete abc123
  taskdeck rm abc1`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteForce bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	if a.cfg.ConfirmDelete && !deleteForce {
		fmt.Printf("About to delete: \"%s\" (ID: %s)\n", t.Title, t.ID)
		fmt.Print("Are you sure? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := a.engine.Remove(ctx, t.ID); err != nil {
		return err
	}

	fmt.Printf("🗑  Deleted: \"%s\"\n", t.Title)
	return nil
}
