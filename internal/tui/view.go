package tui

import (
	"fmt"
	"strings"

	"github.com/existflow/taskdeck/internal/task"
)

// View renders the UI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Header.Render("TaskDeck"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.theme.Help.Render("Loading tasks..."))
		b.WriteString("\n")

	case m.loadErr != "":
		b.WriteString(m.theme.Error.Render(m.loadErr))
		b.WriteString("\n")
		b.WriteString(m.theme.Help.Render("Press enter to retry, q to quit."))
		b.WriteString("\n")

	default:
		m.renderList(&b)
	}

	switch m.mode {
	case ModeAddTask, ModeFilterTags, ModeFilterDate:
		b.WriteString("\n")
		b.WriteString(m.theme.Modal.Render(m.inputTitle() + "\n" + m.input.View()))
		b.WriteString("\n")
	case ModeHelp:
		b.WriteString("\n")
		b.WriteString(m.renderHelp())
	}

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Message.Render(m.message))
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render("a add · x done · d delete · f/D filter · p sort · c clear · r reload · ? help · q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderList(b *strings.Builder) {
	if len(m.view) == 0 {
		if m.filter.IsZero() {
			b.WriteString(m.theme.Help.Render("No tasks yet. Press a to add one."))
		} else {
			b.WriteString(m.theme.Help.Render("No tasks match the active filters."))
		}
		b.WriteString("\n")
		return
	}

	if !m.filter.IsZero() {
		b.WriteString(m.theme.Help.Render(m.filterSummary()))
		b.WriteString("\n\n")
	}

	for i, t := range m.view {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		check := "[ ]"
		if t.IsCompleted {
			check = "[x]"
		}

		line := fmt.Sprintf("%s%s %s", cursor, check, t.Title)
		switch {
		case i == m.cursor:
			line = m.theme.Selected.Render(line)
		case t.IsCompleted:
			line = m.theme.Completed.Render(line)
		default:
			line = m.theme.Item.Render(line)
		}
		b.WriteString(line)

		if t.Priority != nil {
			b.WriteString(" ")
			b.WriteString(m.theme.Priority(*t.Priority).Render("!" + priorityGlyph(*t.Priority)))
		}
		if t.Deadline != "" {
			b.WriteString(" ")
			b.WriteString(m.theme.Deadline.Render(t.Deadline))
		}
		if len(t.Categories) > 0 {
			b.WriteString(" ")
			b.WriteString(m.theme.Tag.Render("#" + strings.Join(t.Categories, " #")))
		}
		if n := len(t.Subtasks); n > 0 {
			done := 0
			for _, s := range t.Subtasks {
				if s.IsCompleted {
					done++
				}
			}
			b.WriteString(" ")
			b.WriteString(m.theme.Help.Render(fmt.Sprintf("(%d/%d)", done, n)))
		}
		b.WriteString("\n")
	}
}

func (m Model) filterSummary() string {
	var parts []string
	if len(m.filter.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(m.filter.Tags, ", "))
	}
	if m.filter.Date != "" {
		parts = append(parts, "due: "+m.filter.Date)
	}
	switch m.filter.Sort {
	case task.SortHighToLow:
		parts = append(parts, "sort: high to low")
	case task.SortLowToHigh:
		parts = append(parts, "sort: low to high")
	}
	return "Filters · " + strings.Join(parts, " · ")
}

func (m Model) inputTitle() string {
	switch m.mode {
	case ModeAddTask:
		return "New task"
	case ModeFilterTags:
		return "Filter by tags"
	case ModeFilterDate:
		return "Filter by deadline"
	}
	return ""
}

func (m Model) renderHelp() string {
	lines := []string{
		"↑/k, ↓/j   move",
		"x, space   toggle completion",
		"a          add a task",
		"d          delete the selected task",
		"f          filter by tags (all must match)",
		"D          filter by deadline (dd/mm/yyyy)",
		"p          cycle priority sort",
		"c          clear filters",
		"r          reload from the server",
		"q          quit",
	}
	return m.theme.Modal.Render(strings.Join(lines, "\n"))
}

func priorityGlyph(p int) string {
	switch p {
	case 2:
		return "high"
	case 1:
		return "med"
	}
	return "low"
}
