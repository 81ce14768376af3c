package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/model"
)

var subtaskCmd = &cobra.Command{
	Use:     "subtask",
	Aliases: []string{"sub"},
	Short:   "Manage a task's subtasks",
	Long: `Add, toggle, edit and remove subtasks. Every subtask change is sent
as a whole-task update and rolled back if the server rejects it.`,
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add [task-id] [text]",
	Short: "Add a subtask",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSubtaskAdd,
}

var subtaskDoneCmd = &cobra.Command{
	Use:   "done [task-id] [subtask]",
	Short: "Toggle a subtask's completion",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubtaskDone,
}

var subtaskEditCmd = &cobra.Command{
	Use:   "edit [task-id] [subtask] [text]",
	Short: "Replace a subtask's text",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runSubtaskEdit,
}

var subtaskRemoveCmd = &cobra.Command{
	Use:     "remove [task-id] [subtask]",
	Aliases: []string{"rm"},
	Short:   "Remove a subtask",
	Args:    cobra.ExactArgs(2),
	RunE:    runSubtaskRemove,
}

func init() {
	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskDoneCmd)
	subtaskCmd.AddCommand(subtaskEditCmd)
	subtaskCmd.AddCommand(subtaskRemoveCmd)
}

// resolveSubtask matches a subtask by id, id prefix, or exact text
func resolveSubtask(t model.Task, ref string) (model.Subtask, error) {
	var matches []model.Subtask
	for _, s := range t.Subtasks {
		if s.ID == ref || s.Text == ref {
			return s, nil
		}
		if strings.HasPrefix(s.ID, ref) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Subtask{}, fmt.Errorf("subtask not found: %s", ref)
	default:
		return model.Subtask{}, fmt.Errorf("ambiguous subtask %q", ref)
	}
}

func subtaskApp(taskRef string) (*app, model.Task, error) {
	a, err := newApp()
	if err != nil {
		return nil, model.Task{}, err
	}
	if err := a.requireLogin(); err != nil {
		return nil, model.Task{}, err
	}
	if err := a.engine.LoadAll(context.Background()); err != nil {
		return nil, model.Task{}, err
	}
	t, err := a.resolveTask(taskRef)
	if err != nil {
		return nil, model.Task{}, err
	}
	return a, t, nil
}

func runSubtaskAdd(cmd *cobra.Command, args []string) error {
	a, t, err := subtaskApp(args[0])
	if err != nil {
		return err
	}

	text := strings.Join(args[1:], " ")
	if err := a.engine.AddSubtask(context.Background(), t.ID, text); err != nil {
		return fmt.Errorf("failed to sync change: %w", err)
	}

	fmt.Printf("✓ Added subtask to \"%s\": %s\n", t.Title, text)
	return nil
}

func runSubtaskDone(cmd *cobra.Command, args []string) error {
	a, t, err := subtaskApp(args[0])
	if err != nil {
		return err
	}

	s, err := resolveSubtask(t, args[1])
	if err != nil {
		return err
	}
	if err := a.engine.ToggleSubtask(context.Background(), t.ID, s.ID); err != nil {
		return fmt.Errorf("failed to sync change: %w", err)
	}

	if !s.IsCompleted {
		fmt.Printf("✓ Completed subtask: %s\n", s.Text)
	} else {
		fmt.Printf("○ Reopened subtask: %s\n", s.Text)
	}
	return nil
}

func runSubtaskEdit(cmd *cobra.Command, args []string) error {
	a, t, err := subtaskApp(args[0])
	if err != nil {
		return err
	}

	s, err := resolveSubtask(t, args[1])
	if err != nil {
		return err
	}
	text := strings.Join(args[2:], " ")
	if err := a.engine.EditSubtask(context.Background(), t.ID, s.ID, text); err != nil {
		return fmt.Errorf("failed to sync change: %w", err)
	}

	fmt.Printf("✓ Updated subtask: %s\n", text)
	return nil
}

func runSubtaskRemove(cmd *cobra.Command, args []string) error {
	a, t, err := subtaskApp(args[0])
	if err != nil {
		return err
	}

	s, err := resolveSubtask(t, args[1])
	if err != nil {
		return err
	}
	if err := a.engine.RemoveSubtask(context.Background(), t.ID, s.ID); err != nil {
		return fmt.Errorf("failed to sync change: %w", err)
	}

	fmt.Printf("🗑  Removed subtask: %s\n", s.Text)
	return nil
}
