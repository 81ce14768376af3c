// Package task maintains the canonical task collection in sync with the
// backend, applies optimistic local mutations with snapshot rollback, and
// derives the filtered/sorted view the UI presents.
package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/existflow/taskdeck/internal/api"
	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
)

// Backend is the slice of the API the engine needs. Implemented by
// api.Client.
type Backend interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, draft api.TaskDraft) (model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, id string) error
}

// Engine owns the canonical in-memory task collection. It is the only
// writer; readers get deep copies. Mutations replace the whole slice,
// never edit it in place, so a concurrent reader never sees a torn
// update.
type Engine struct {
	backend Backend

	mu    sync.RWMutex
	tasks []model.Task
}

// NewEngine creates an engine over the given backend
func NewEngine(backend Backend) *Engine {
	return &Engine{backend: backend}
}

// Tasks returns a snapshot of the canonical collection
func (e *Engine) Tasks() []model.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return model.CloneTasks(e.tasks)
}

// Task returns a copy of one task by id
func (e *Engine) Task(id string) (model.Task, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, t := range e.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Task{}, false
}

// LoadAll fetches the full collection and replaces the canonical one
// wholesale. On failure the previous collection is left untouched so the
// UI can show known-good data next to a retry affordance.
func (e *Engine) LoadAll(ctx context.Context) error {
	tasks, err := e.backend.ListTasks(ctx)
	if err != nil {
		logger.Error("task fetch failed", logger.F("error", err))
		return &OpError{Op: OpFetch, Err: err}
	}

	e.mu.Lock()
	e.tasks = tasks
	e.mu.Unlock()

	logger.Debug("task collection replaced", logger.F("count", len(tasks)))
	return nil
}

// Create sends the draft to the backend and then reloads the whole
// collection. No local insertion: the canonical collection must only
// ever hold server-assigned ids and normalized fields.
func (e *Engine) Create(ctx context.Context, draft api.TaskDraft) error {
	if _, err := e.backend.CreateTask(ctx, draft); err != nil {
		return &OpError{Op: OpCreate, Err: err}
	}
	if err := e.LoadAll(ctx); err != nil {
		return &OpError{Op: OpCreate, Err: err}
	}
	return nil
}

// Remove deletes a task on the backend and only then drops it from the
// canonical collection. Deletion is not optimistic: a task must not
// vanish locally while it still exists on the server.
func (e *Engine) Remove(ctx context.Context, id string) error {
	if err := e.backend.DeleteTask(ctx, id); err != nil {
		return &OpError{Op: OpDelete, Err: err}
	}

	e.mu.Lock()
	next := make([]model.Task, 0, len(e.tasks))
	for _, t := range e.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	e.tasks = next
	e.mu.Unlock()
	return nil
}

// Update applies mutate to the identified task optimistically, then
// persists the whole task. If persistence fails the entire pre-mutation
// collection snapshot is restored verbatim; coarse rollback buys
// consistency without per-field conflict resolution.
func (e *Engine) Update(ctx context.Context, id string, mutate func(*model.Task)) error {
	e.mu.Lock()
	snapshot := e.tasks

	var updated model.Task
	found := false
	next := make([]model.Task, len(e.tasks))
	for i, t := range e.tasks {
		if t.ID == id {
			c := t.Clone()
			mutate(&c)
			c.ID = id // the mutation must not reassign identity
			next[i] = c
			updated = c
			found = true
		} else {
			next[i] = t
		}
	}
	if !found {
		e.mu.Unlock()
		return &OpError{Op: OpSync, Err: fmt.Errorf("task %s not found", id)}
	}
	e.tasks = next
	e.mu.Unlock()

	if err := e.backend.UpdateTask(ctx, updated); err != nil {
		logger.Warn("task update failed, rolling back", logger.F("task", id), logger.F("error", err))
		e.mu.Lock()
		e.tasks = snapshot
		e.mu.Unlock()
		return &OpError{Op: OpSync, Err: err}
	}
	return nil
}

// ToggleCompletion flips a task's completion flag with optimistic
// update semantics
func (e *Engine) ToggleCompletion(ctx context.Context, id string) error {
	return e.Update(ctx, id, func(t *model.Task) {
		t.IsCompleted = !t.IsCompleted
	})
}

// AddSubtask appends a client-generated subtask. Subtask mutations are
// whole-task updates and inherit the optimistic rollback behavior.
func (e *Engine) AddSubtask(ctx context.Context, id, text string) error {
	return e.Update(ctx, id, func(t *model.Task) {
		t.Subtasks = append(t.Subtasks, model.NewSubtask(text))
	})
}

// ToggleSubtask flips one subtask's completion flag
func (e *Engine) ToggleSubtask(ctx context.Context, id, subtaskID string) error {
	return e.Update(ctx, id, func(t *model.Task) {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks[i].IsCompleted = !t.Subtasks[i].IsCompleted
			}
		}
	})
}

// EditSubtask replaces one subtask's text
func (e *Engine) EditSubtask(ctx context.Context, id, subtaskID, text string) error {
	return e.Update(ctx, id, func(t *model.Task) {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks[i].Text = text
			}
		}
	})
}

// RemoveSubtask drops one subtask
func (e *Engine) RemoveSubtask(ctx context.Context, id, subtaskID string) error {
	return e.Update(ctx, id, func(t *model.Task) {
		next := t.Subtasks[:0]
		for _, s := range t.Subtasks {
			if s.ID != subtaskID {
				next = append(next, s)
			}
		}
		t.Subtasks = next
	})
}

// Tags returns the distinct tags across the canonical collection, in
// first-seen order. Derived read-model for filter pickers, never
// persisted.
func (e *Engine) Tags() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return CollectTags(e.tasks)
}
