package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/model"
)

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task's fields",
	Long: `Update title, description, deadline, priority or tags. Only the
flags you pass change; edits are optimistic with rollback on failure.

Examples:
  taskdeck edit abc123 --title "New title"
  taskdeck edit abc123 --priority high --tag work --tag urgent
  taskdeck edit abc123 --clear-deadline`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle         string
	editDescription   string
	editDue           string
	editPriority      string
	editTags          []string
	editClearDue      bool
	editClearPriority bool
)

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editDescription, "desc", "d", "", "New description")
	editCmd.Flags().StringVar(&editDue, "due", "", "New deadline (dd/mm/yyyy)")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "Priority: low, medium or high")
	editCmd.Flags().StringArrayVarP(&editTags, "tag", "t", nil, "Replace the tag list (repeatable)")
	editCmd.Flags().BoolVar(&editClearDue, "clear-deadline", false, "Remove the deadline")
	editCmd.Flags().BoolVar(&editClearPriority, "clear-priority", false, "Remove the priority")
}

func parsePriority(s string) (int, error) {
	switch strings.ToLower(s) {
	case "low", "0":
		return model.PriorityLow, nil
	case "medium", "1":
		return model.PriorityMedium, nil
	case "high", "2":
		return model.PriorityHigh, nil
	default:
		return 0, fmt.Errorf("unknown priority %q, expected low, medium or high", s)
	}
}

// dedupeTags drops duplicate tags at the edit layer, keeping first-seen
// order; the server normalizes again regardless
func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	if editDue != "" && !model.ValidDeadline(editDue) {
		return fmt.Errorf("invalid deadline %q, expected dd/mm/yyyy", editDue)
	}
	var priority *int
	if editPriority != "" {
		p, err := parsePriority(editPriority)
		if err != nil {
			return err
		}
		priority = &p
	}

	ctx := context.Background()
	if err := a.engine.LoadAll(ctx); err != nil {
		return err
	}

	t, err := a.resolveTask(args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	err = a.engine.Update(ctx, t.ID, func(t *model.Task) {
		if flags.Changed("title") {
			t.Title = editTitle
		}
		if flags.Changed("desc") {
			t.Description = editDescription
		}
		if flags.Changed("due") {
			t.Deadline = editDue
		}
		if editClearDue {
			t.Deadline = ""
		}
		if priority != nil {
			t.Priority = priority
		}
		if editClearPriority {
			t.Priority = nil
		}
		if flags.Changed("tag") {
			t.Categories = dedupeTags(editTags)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to sync change: %w", err)
	}

	fmt.Printf("✓ Updated: \"%s\"\n", t.Title)
	return nil
}
