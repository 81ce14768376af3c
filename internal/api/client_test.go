package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/existflow/taskdeck/internal/model"
)

func testTask() model.Task {
	return model.Task{
		ID:          "t1",
		Title:       "Report",
		Categories:  []string{"work"},
		IsCompleted: true,
		Subtasks:    []model.Subtask{{ID: "s1", Text: "outline"}},
	}
}

type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

type failingTokens struct{ err error }

func (f failingTokens) Token(ctx context.Context) (string, error) {
	return "", f.err
}

// refreshingTokens hands out a stale token until Refresh is called
type refreshingTokens struct {
	current    string
	next       string
	refreshErr error
	refreshes  int
}

func (r *refreshingTokens) Token(ctx context.Context) (string, error) {
	return r.current, nil
}

func (r *refreshingTokens) Refresh(ctx context.Context) (string, error) {
	r.refreshes++
	if r.refreshErr != nil {
		return "", r.refreshErr
	}
	r.current = r.next
	return r.next, nil
}

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(srv.URL)
	c.SetTokenSource(staticTokens("tok-123"))
	return c, srv
}

func TestListTasksWireMapping(t *testing.T) {
	var gotAuth string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.Method != "GET" || r.URL.Path != "/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"id":"t1","title":"Report","tags":["work"],"priority":2,"deadline":"05/09/2026","done":true,
			 "subtasks":[{"id":"s1","title":"outline","done":false}]},
			{"id":"t2","title":"Milk","done":false}
		]`))
	}))
	defer srv.Close()

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(tasks))
	}

	first := tasks[0]
	if !first.IsCompleted {
		t.Errorf("done not mapped to IsCompleted")
	}
	if len(first.Categories) != 1 || first.Categories[0] != "work" {
		t.Errorf("tags not mapped to Categories: %v", first.Categories)
	}
	if first.Priority == nil || *first.Priority != 2 {
		t.Errorf("priority = %v", first.Priority)
	}
	if len(first.Subtasks) != 1 || first.Subtasks[0].Text != "outline" {
		t.Errorf("subtask title not mapped to Text: %+v", first.Subtasks)
	}
	if tasks[1].Priority != nil {
		t.Errorf("absent priority decoded as %v, want nil", *tasks[1].Priority)
	}
}

func TestListTasksBackfillsSubtaskIDs(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"t1","title":"Old","done":false,
			"subtasks":[{"title":"no id","done":false},{"title":"also none","done":true}]}]`))
	}))
	defer srv.Close()

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	subs := tasks[0].Subtasks
	if subs[0].ID == "" || subs[1].ID == "" {
		t.Errorf("subtask ids not backfilled: %+v", subs)
	}
	if subs[0].ID == subs[1].ID {
		t.Errorf("backfilled ids collide")
	}
}

func TestUpdateTaskSendsWireFormat(t *testing.T) {
	var body map[string]interface{}
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" || r.URL.Path != "/tasks/t1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := 1
	task := testTask()
	task.Priority = &p
	if err := c.UpdateTask(context.Background(), task); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	if _, ok := body["done"]; !ok {
		t.Errorf("payload missing done: %v", body)
	}
	if _, ok := body["isCompleted"]; ok {
		t.Errorf("client field name leaked onto the wire")
	}
	if _, ok := body["tags"]; !ok {
		t.Errorf("payload missing tags: %v", body)
	}
	subs, ok := body["subtasks"].([]interface{})
	if !ok || len(subs) != 1 {
		t.Fatalf("subtasks payload = %v", body["subtasks"])
	}
	sub := subs[0].(map[string]interface{})
	if sub["title"] != "outline" {
		t.Errorf("subtask text not sent as title: %v", sub)
	}
}

func TestLoginParsesSnakeCase(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("login sent Authorization %q", auth)
		}
		_, _ = w.Write([]byte(`{"id_token":"id-1","refresh_token":"rt-1"}`))
	}))
	defer srv.Close()

	pair, err := c.Login(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.IDToken != "id-1" || pair.RefreshToken != "rt-1" {
		t.Errorf("pair = %+v", pair)
	}
}

func TestRegisterParsesCamelCase(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"idToken":"id-1","refreshToken":"rt-1","uid":"u-1"}`))
	}))
	defer srv.Close()

	pair, err := c.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if pair.IDToken != "id-1" || pair.RefreshToken != "rt-1" || pair.UID != "u-1" {
		t.Errorf("pair = %+v", pair)
	}
}

func TestRefreshTokenIsUnauthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("refresh sent Authorization %q", auth)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refreshToken"] != "rt-old" {
			t.Errorf("body = %v", body)
		}
		_, _ = w.Write([]byte(`{"idToken":"id-new","refreshToken":"rt-new"}`))
	}))
	defer srv.Close()

	// No token source at all: refresh must still work
	c := New(srv.URL)
	id, rt, err := c.RefreshToken(context.Background(), "rt-old")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if id != "id-new" || rt != "rt-new" {
		t.Errorf("got %q %q", id, rt)
	}
}

func TestServerErrorParsing(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"email already registered"}`))
	}))
	defer srv.Close()

	_, err := c.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "secret1"})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "email already registered" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestRejectedTokenRefreshedAndRetried(t *testing.T) {
	// A token the server rejects while locally unexpired (secret
	// rotation, revocation) must trigger one refresh and a retry
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		seen = append(seen, auth)
		if auth != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid or expired token"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tokens := &refreshingTokens{current: "tok-stale", next: "tok-new"}
	c := New(srv.URL)
	c.SetTokenSource(tokens)

	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if tokens.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", tokens.refreshes)
	}
	want := []string{"Bearer tok-stale", "Bearer tok-new"}
	if len(seen) != 2 || seen[0] != want[0] || seen[1] != want[1] {
		t.Errorf("requests = %v, want %v", seen, want)
	}
}

func TestRejectedTokenRetriedOnce(t *testing.T) {
	// The refreshed token is sent exactly once; a second 401 propagates
	// instead of looping
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid or expired token"}`))
	}))
	defer srv.Close()

	tokens := &refreshingTokens{current: "tok-stale", next: "tok-also-bad"}
	c := New(srv.URL)
	c.SetTokenSource(tokens)

	_, err := c.ListTasks(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 *Error", err)
	}
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}
	if tokens.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", tokens.refreshes)
	}
}

func TestRejectedTokenRefreshFailurePropagates(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	wantErr := errors.New("token refresh failed")
	tokens := &refreshingTokens{current: "tok-stale", refreshErr: wantErr}
	c := New(srv.URL)
	c.SetTokenSource(tokens)

	_, err := c.ListTasks(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want the refresh error", err)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (no retry without a fresh token)", requests)
	}
}

func TestRejectedTokenNoRefresherIsTerminal(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokenSource(staticTokens("tok-stale"))

	_, err := c.ListTasks(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 *Error", err)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}
}

func TestRetryResendsBody(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(data))
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"t1","title":"Report","done":false}`))
	}))
	defer srv.Close()

	tokens := &refreshingTokens{current: "tok-stale", next: "tok-new"}
	c := New(srv.URL)
	c.SetTokenSource(tokens)

	if _, err := c.CreateTask(context.Background(), TaskDraft{Title: "Report"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if len(bodies) != 2 || bodies[0] != bodies[1] || bodies[0] == "" {
		t.Errorf("retry body differs: %q", bodies)
	}
}

func TestTokenSourceErrorShortCircuits(t *testing.T) {
	called := false
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	wantErr := errors.New("no active session")
	c.SetTokenSource(failingTokens{err: wantErr})

	_, err := c.ListTasks(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v", err)
	}
	if called {
		t.Errorf("request sent despite missing token")
	}
}
