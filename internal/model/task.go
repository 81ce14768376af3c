package model

import (
	"strconv"
	"time"
)

// Priority levels for tasks. The backend stores these as plain integers;
// a task with no priority set is "unprioritized" and ranks below low.
const (
	PriorityLow    = 0
	PriorityMedium = 1
	PriorityHigh   = 2
)

// PriorityLabel returns a human-readable name for a priority level
func PriorityLabel(p int) string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "none"
	}
}

// Task represents a single todo item in the client's canonical shape.
// Wire-format field names differ (done, tags, subtask title); the api
// package owns that mapping.
type Task struct {
	ID          string
	Title       string
	Description string
	Categories  []string
	Priority    *int
	Deadline    string // dd/mm/yyyy, empty when unset
	IsCompleted bool
	Subtasks    []Subtask
}

// Subtask belongs to exactly one task and has no identity outside it
type Subtask struct {
	ID          string
	Text        string
	IsCompleted bool
}

// NewSubtask creates a subtask with a locally generated timestamp id,
// matching what the backend expects for client-created subtasks
func NewSubtask(text string) Subtask {
	return Subtask{
		ID:   strconv.FormatInt(time.Now().UnixMilli(), 10),
		Text: text,
	}
}

// PriorityRank returns the sortable rank of the task's priority.
// Unprioritized tasks rank as -1 so they sort below low in either direction.
func (t *Task) PriorityRank() int {
	if t.Priority == nil {
		return -1
	}
	return *t.Priority
}

// HasCategory reports whether the task carries the given tag
func (t *Task) HasCategory(tag string) bool {
	for _, c := range t.Categories {
		if c == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the task. Snapshot rollback and view
// derivation rely on copies never aliasing the canonical slices.
func (t Task) Clone() Task {
	c := t
	if t.Categories != nil {
		c.Categories = append([]string(nil), t.Categories...)
	}
	if t.Subtasks != nil {
		c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	if t.Priority != nil {
		p := *t.Priority
		c.Priority = &p
	}
	return c
}

// CloneTasks deep-copies a whole collection
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
