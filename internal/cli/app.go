package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/taskdeck/internal/api"
	"github.com/existflow/taskdeck/internal/config"
	"github.com/existflow/taskdeck/internal/kv"
	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/profile"
	"github.com/existflow/taskdeck/internal/session"
	"github.com/existflow/taskdeck/internal/task"
)

// app wires the client stack together for a command invocation. Each
// component is owned here and injected into its consumers; nothing
// reaches for a global.
type app struct {
	cfg     *config.Config
	api     *api.Client
	session *session.Manager
	engine  *task.Engine
	state   *kv.Store
	profile *profile.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	store, err := session.DefaultFileStore()
	if err != nil {
		return nil, err
	}

	state, err := kv.OpenDefault()
	if err != nil {
		return nil, err
	}

	apiClient := api.New(cfg.ServerURL)
	sess := session.NewManager(store, apiClient)
	apiClient.SetTokenSource(sess)

	return &app{
		cfg:     cfg,
		api:     apiClient,
		session: sess,
		engine:  task.NewEngine(apiClient),
		state:   state,
		profile: profile.NewService(apiClient, sess, state),
	}, nil
}

// requireLogin fails fast with a friendly message when no session exists
func (a *app) requireLogin() error {
	if !a.session.LoggedIn() {
		return fmt.Errorf("not logged in, run: taskdeck auth login")
	}
	return nil
}

// resolveTask finds a task by full id or unique prefix
func (a *app) resolveTask(ref string) (model.Task, error) {
	if t, ok := a.engine.Task(ref); ok {
		return t, nil
	}

	var matches []model.Task
	for _, t := range a.engine.Tasks() {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Task{}, fmt.Errorf("task not found: %s", ref)
	default:
		return model.Task{}, fmt.Errorf("ambiguous task id %q matches %d tasks", ref, len(matches))
	}
}
