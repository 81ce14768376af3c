package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/taskdeck/internal/api"
	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/task"
)

// loadedMsg reports a collection reload
type loadedMsg struct {
	err error
}

// syncedMsg reports a mutation that already went through the engine's
// optimistic path
type syncedMsg struct {
	err  error
	info string
}

// Init kicks off the initial load
func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) loadCmd() tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		return loadedMsg{err: engine.LoadAll(context.Background())}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = "Could not load your tasks."
			return m, nil
		}
		m.loadErr = ""
		m.refreshView()
		return m, nil

	case syncedMsg:
		if msg.err != nil {
			m.message = "Could not sync the change."
		} else {
			m.message = msg.info
		}
		m.refreshView()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddTask, ModeFilterTags, ModeFilterDate:
			return m.updateInput(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.view)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Toggle):
		if t := m.currentTask(); t != nil {
			id := t.ID
			engine := m.engine
			// The engine flips the flag before persisting, so the very
			// next view derivation already shows the change
			return m, func() tea.Msg {
				return syncedMsg{err: engine.ToggleCompletion(context.Background(), id)}
			}
		}

	case key.Matches(msg, keys.Delete):
		if t := m.currentTask(); t != nil {
			id := t.ID
			title := t.Title
			engine := m.engine
			return m, func() tea.Msg {
				if err := engine.Remove(context.Background(), id); err != nil {
					return syncedMsg{err: err}
				}
				return syncedMsg{info: "Deleted: " + title}
			}
		}

	case key.Matches(msg, keys.Add):
		m.mode = ModeAddTask
		m.input.Placeholder = "Task title..."
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.FilterTags):
		m.mode = ModeFilterTags
		m.input.Placeholder = "Tags (space separated)..."
		m.input.SetValue(strings.Join(m.filter.Tags, " "))
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.FilterDate):
		m.mode = ModeFilterDate
		m.input.Placeholder = "Deadline (dd/mm/yyyy)..."
		m.input.SetValue(m.filter.Date)
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Sort):
		switch m.filter.Sort {
		case task.SortNone:
			m.filter.Sort = task.SortHighToLow
		case task.SortHighToLow:
			m.filter.Sort = task.SortLowToHigh
		default:
			m.filter.Sort = task.SortNone
		}
		m.refreshView()

	case key.Matches(msg, keys.Clear):
		m.filter = task.Filter{}
		m.refreshView()

	case key.Matches(msg, keys.Reload):
		m.loading = true
		return m, m.loadCmd()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Enter):
		// Retry affordance after a failed load
		if m.loadErr != "" {
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = ModeNormal
		m.input.Blur()

		switch mode {
		case ModeAddTask:
			if value == "" {
				return m, nil
			}
			engine := m.engine
			return m, func() tea.Msg {
				if err := engine.Create(context.Background(), api.TaskDraft{Title: value}); err != nil {
					return syncedMsg{err: err}
				}
				return syncedMsg{info: "Added: " + value}
			}

		case ModeFilterTags:
			m.filter.Tags = nil
			if value != "" {
				m.filter.Tags = strings.Fields(value)
			}
			m.refreshView()

		case ModeFilterDate:
			if value == "" {
				m.filter.Date = ""
				m.refreshView()
			} else if when, err := model.ParseDeadline(value); err == nil {
				// SetDate normalizes loosely typed input (5/9/2026) to
				// the stored dd/mm/yyyy form so the exact match works
				m.filter.SetDate(when)
				m.refreshView()
			} else {
				m.message = "Invalid date, expected dd/mm/yyyy"
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
