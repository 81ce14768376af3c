package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks, optionally filtered by tag and deadline and sorted by
priority. Multiple --tag flags must all match (AND).

Examples:
  taskdeck list
  taskdeck list --tag work --tag urgent
  taskdeck list --date 15/10/2026 --sort high-to-low`,
	RunE: runList,
}

var (
	listTags     []string
	listDate     string
	listSort     string
	listTagsOnly bool
)

func init() {
	listCmd.Flags().StringArrayVarP(&listTags, "tag", "t", nil, "Filter by tag (repeatable, all must match)")
	listCmd.Flags().StringVar(&listDate, "date", "", "Filter by exact deadline (dd/mm/yyyy)")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Priority sort: low-to-high or high-to-low")
	listCmd.Flags().BoolVar(&listTagsOnly, "tags", false, "Print the distinct tags instead of tasks")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	filter := task.Filter{Tags: listTags, Date: listDate}
	switch listSort {
	case "":
	case "low-to-high":
		filter.Sort = task.SortLowToHigh
	case "high-to-low":
		filter.Sort = task.SortHighToLow
	default:
		return fmt.Errorf("unknown sort %q, expected low-to-high or high-to-low", listSort)
	}
	if listDate != "" && !model.ValidDeadline(listDate) {
		return fmt.Errorf("invalid date %q, expected dd/mm/yyyy", listDate)
	}

	if err := a.engine.LoadAll(context.Background()); err != nil {
		return err
	}

	if listTagsOnly {
		for _, tag := range a.engine.Tags() {
			fmt.Println(tag)
		}
		return nil
	}

	view := task.DeriveView(a.engine.Tasks(), filter)
	if len(view) == 0 {
		fmt.Println("No tasks found. Add one with: taskdeck add \"Your task\"")
		return nil
	}

	printTasks(view)
	return nil
}

func printTasks(tasks []model.Task) {
	pending := 0
	for _, t := range tasks {
		if !t.IsCompleted {
			pending++
		}
	}

	fmt.Printf("\n📋 Tasks (%d pending)\n", pending)
	fmt.Println(strings.Repeat("─", 60))

	for _, t := range tasks {
		printTask(t)
	}
	fmt.Println()
}

func printTask(t model.Task) {
	check := "○"
	if t.IsCompleted {
		check = "✓"
	}

	line := fmt.Sprintf("%s %-8s %s", check, shortID(t.ID), t.Title)
	if t.Priority != nil {
		line += fmt.Sprintf("  [%s]", model.PriorityLabel(*t.Priority))
	}
	if t.Deadline != "" {
		line += fmt.Sprintf("  due %s", t.Deadline)
	}
	if len(t.Categories) > 0 {
		line += "  #" + strings.Join(t.Categories, " #")
	}
	fmt.Println(line)

	for _, s := range t.Subtasks {
		subCheck := "○"
		if s.IsCompleted {
			subCheck = "✓"
		}
		fmt.Printf("    %s %s\n", subCheck, s.Text)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
