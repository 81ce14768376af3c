package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Add        key.Binding
	Delete     key.Binding
	FilterTags key.Binding
	FilterDate key.Binding
	Sort       key.Binding
	Clear      key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
	Escape     key.Binding
	Enter      key.Binding
}

var keys = keyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:     key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "toggle done")),
	Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	FilterTags: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter tags")),
	FilterDate: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "filter date")),
	Sort:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle priority sort")),
	Clear:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
	Reload:     key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "reload")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
}
