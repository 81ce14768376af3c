package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/taskdeck/internal/config"
	"github.com/existflow/taskdeck/internal/model"
)

// Theme is a resolved set of styles for either the light or dark palette
type Theme struct {
	Header    lipgloss.Style
	List      lipgloss.Style
	Item      lipgloss.Style
	Selected  lipgloss.Style
	Completed lipgloss.Style
	Tag       lipgloss.Style
	Deadline  lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
	Message   lipgloss.Style
	Modal     lipgloss.Style

	priorityColors map[int]lipgloss.Color
}

// NewTheme builds the style set for the configured theme name
func NewTheme(name string) Theme {
	var (
		primary  = lipgloss.Color("#4ECDC4")
		text     = lipgloss.Color("#FFFFFF")
		muted    = lipgloss.Color("#888888")
		errColor = lipgloss.Color("#FF6B6B")
		okColor  = lipgloss.Color("#95E1A3")
		border   = lipgloss.Color("#333333")
	)
	if name == config.ThemeLight {
		primary = lipgloss.Color("#0B7285")
		text = lipgloss.Color("#1A1A2E")
		muted = lipgloss.Color("#6C757D")
		errColor = lipgloss.Color("#C92A2A")
		okColor = lipgloss.Color("#2B8A3E")
		border = lipgloss.Color("#CCCCCC")
	}

	return Theme{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(primary).Padding(0, 1),
		List:      lipgloss.NewStyle().Padding(1, 2),
		Item:      lipgloss.NewStyle().Foreground(text),
		Selected:  lipgloss.NewStyle().Foreground(primary).Bold(true),
		Completed: lipgloss.NewStyle().Foreground(muted).Strikethrough(true),
		Tag:       lipgloss.NewStyle().Foreground(primary),
		Deadline:  lipgloss.NewStyle().Foreground(muted),
		Help:      lipgloss.NewStyle().Foreground(muted),
		Error:     lipgloss.NewStyle().Foreground(errColor).Bold(true),
		Message:   lipgloss.NewStyle().Foreground(okColor),
		Modal: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2),

		priorityColors: map[int]lipgloss.Color{
			model.PriorityLow:    lipgloss.Color("#4ECDC4"),
			model.PriorityMedium: lipgloss.Color("#FFE66D"),
			model.PriorityHigh:   lipgloss.Color("#FF6B6B"),
		},
	}
}

// Priority returns a style for a priority marker
func (t Theme) Priority(p int) lipgloss.Style {
	if c, ok := t.priorityColors[p]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return t.Help
}
