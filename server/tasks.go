package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// taskDoc is the server-side task document. Field names are the wire
// contract: done, tags, subtask title.
type taskDoc struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Priority    *int         `json:"priority,omitempty"`
	Deadline    string       `json:"deadline,omitempty"`
	Done        bool         `json:"done"`
	Subtasks    []subtaskDoc `json:"subtasks,omitempty"`
}

type subtaskDoc struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// normalizeTags trims whitespace and drops duplicates and empties,
// keeping first-seen order
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func (s *Server) handleListTasks(c echo.Context) error {
	userID := c.Get("user_id").(string)

	docs, err := s.store.TaskDocs(userID)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	tasks := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, json.RawMessage(doc))
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var doc taskDoc
	if err := c.Bind(&doc); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(doc.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title required"})
	}

	// Server-assigned fields: a client-sent id is discarded
	doc.ID = uuid.New().String()
	doc.Tags = normalizeTags(doc.Tags)

	if !s.validPriority(doc.Priority) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "priority must be 0, 1 or 2"})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if err := s.store.InsertTask(userID, doc.ID, string(data)); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	userID := c.Get("user_id").(string)
	taskID := c.Param("id")

	if _, err := s.store.TaskDoc(userID, taskID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}

	var doc taskDoc
	if err := c.Bind(&doc); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	// The path parameter owns identity
	doc.ID = taskID
	doc.Tags = normalizeTags(doc.Tags)

	if !s.validPriority(doc.Priority) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "priority must be 0, 1 or 2"})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	ok, err := s.store.UpdateTaskDoc(userID, taskID, string(data))
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}

	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	userID := c.Get("user_id").(string)
	taskID := c.Param("id")

	ok, err := s.store.DeleteTask(userID, taskID)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) validPriority(p *int) bool {
	return p == nil || (*p >= 0 && *p <= 2)
}
