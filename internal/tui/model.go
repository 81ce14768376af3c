package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/taskdeck/internal/config"
	"github.com/existflow/taskdeck/internal/kv"
	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/session"
	"github.com/existflow/taskdeck/internal/task"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeFilterTags
	ModeFilterDate
	ModeHelp
)

// Model is the main TUI model. It reads the engine's canonical
// collection and derives the displayed view from it plus the active
// filter; it never keeps task state of its own.
type Model struct {
	cfg     *config.Config
	engine  *task.Engine
	session *session.Manager
	state   *kv.Store
	theme   Theme

	width  int
	height int
	mode   Mode
	cursor int

	filter task.Filter
	view   []model.Task

	input textinput.Model

	loading bool
	loadErr string // non-empty renders the inline retry affordance
	message string
}

// NewModel creates the TUI model
func NewModel(cfg *config.Config, engine *task.Engine, sess *session.Manager, state *kv.Store) Model {
	logger.Info("Initializing TUI model")

	// A theme stored in the state store wins over config; the theme
	// command writes both
	themeName := cfg.Theme
	if saved, ok := state.Get(kv.KeyThemePreference); ok {
		themeName = saved
	}

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	return Model{
		cfg:     cfg,
		engine:  engine,
		session: sess,
		state:   state,
		theme:   NewTheme(themeName),
		mode:    ModeNormal,
		input:   ti,
		loading: true,
	}
}

// refreshView re-derives the displayed view from the canonical
// collection and the filter criteria
func (m *Model) refreshView() {
	m.view = task.DeriveView(m.engine.Tasks(), m.filter)
	if m.cursor >= len(m.view) {
		m.cursor = len(m.view) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) currentTask() *model.Task {
	if m.cursor < len(m.view) {
		return &m.view[m.cursor]
	}
	return nil
}
