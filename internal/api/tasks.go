package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/existflow/taskdeck/internal/model"
)

// taskRecord is the server's task shape. The server says done and tags
// where the client says isCompleted and categories; subtask text travels
// as title.
type taskRecord struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Priority    *int            `json:"priority,omitempty"`
	Deadline    string          `json:"deadline,omitempty"`
	Done        bool            `json:"done"`
	Subtasks    []subtaskRecord `json:"subtasks,omitempty"`
}

type subtaskRecord struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

func toRecord(t model.Task) taskRecord {
	rec := taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Tags:        t.Categories,
		Priority:    t.Priority,
		Deadline:    t.Deadline,
		Done:        t.IsCompleted,
	}
	for _, s := range t.Subtasks {
		rec.Subtasks = append(rec.Subtasks, subtaskRecord{ID: s.ID, Title: s.Text, Done: s.IsCompleted})
	}
	return rec
}

func fromRecord(rec taskRecord) model.Task {
	t := model.Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Categories:  rec.Tags,
		Priority:    rec.Priority,
		Deadline:    rec.Deadline,
		IsCompleted: rec.Done,
	}
	for i, s := range rec.Subtasks {
		id := s.ID
		if id == "" {
			// Old records predate subtask ids; synthesize a stable-enough one
			id = strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + strconv.Itoa(i)
		}
		t.Subtasks = append(t.Subtasks, model.Subtask{ID: id, Text: s.Title, IsCompleted: s.Done})
	}
	return t
}

// TaskDraft is the minimal payload for creating a task
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
}

// ListTasks fetches the full task collection
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var recs []taskRecord
	if err := c.do(ctx, "GET", "/tasks", nil, &recs, true); err != nil {
		return nil, err
	}
	tasks := make([]model.Task, len(recs))
	for i, rec := range recs {
		tasks[i] = fromRecord(rec)
	}
	return tasks, nil
}

// CreateTask creates a task from a draft and returns the server's record
func (c *Client) CreateTask(ctx context.Context, draft TaskDraft) (model.Task, error) {
	var rec taskRecord
	if err := c.do(ctx, "POST", "/tasks", draft, &rec, true); err != nil {
		return model.Task{}, err
	}
	return fromRecord(rec), nil
}

// UpdateTask replaces a task's mutable fields on the server
func (c *Client) UpdateTask(ctx context.Context, t model.Task) error {
	if t.ID == "" {
		return fmt.Errorf("task has no id")
	}
	return c.do(ctx, "PUT", "/tasks/"+t.ID, toRecord(t), nil, true)
}

// DeleteTask deletes a task on the server
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/tasks/"+id, nil, nil, true)
}
