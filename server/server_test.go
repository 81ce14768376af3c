package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	s, err := New("sqlite", dsn, []byte("test-secret"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	out := map[string]json.RawMessage{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func jsonStr(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("not a JSON string: %s", raw)
	}
	return s
}

func register(t *testing.T, s *Server, email string) (idToken, refreshToken string) {
	t.Helper()
	rec, out := doJSON(t, s, "POST", "/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret1",
		"name":     "Test User",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register: %d %s", rec.Code, rec.Body)
	}
	return jsonStr(t, out["idToken"]), jsonStr(t, out["refreshToken"])
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	register(t, s, "a@b.c")

	// Duplicate email is a conflict
	rec, _ := doJSON(t, s, "POST", "/auth/register", "", map[string]string{
		"email": "a@b.c", "password": "secret1",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", rec.Code)
	}

	// Login answers in snake_case
	rec, out := doJSON(t, s, "POST", "/auth/login", "", map[string]string{
		"email": "a@b.c", "password": "secret1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body)
	}
	if _, ok := out["id_token"]; !ok {
		t.Errorf("login response missing id_token: %s", rec.Body)
	}
	if _, ok := out["idToken"]; ok {
		t.Errorf("login response must not use camelCase")
	}

	rec, _ = doJSON(t, s, "POST", "/auth/login", "", map[string]string{
		"email": "a@b.c", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password = %d, want 401", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	rec, _ := doJSON(t, s, "POST", "/auth/register", "", map[string]string{
		"email": "a@b.c", "password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short password = %d, want 400", rec.Code)
	}

	rec, _ = doJSON(t, s, "POST", "/auth/register", "", map[string]string{"email": "a@b.c"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing password = %d, want 400", rec.Code)
	}
}

func TestRefreshRotation(t *testing.T) {
	s := newTestServer(t)
	_, rt := register(t, s, "a@b.c")

	rec, out := doJSON(t, s, "POST", "/auth/refresh", "", map[string]string{"refreshToken": rt})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", rec.Code, rec.Body)
	}
	newRT := jsonStr(t, out["refreshToken"])
	if newRT == rt {
		t.Errorf("refresh token was not rotated")
	}

	// The consumed token is dead
	rec, _ = doJSON(t, s, "POST", "/auth/refresh", "", map[string]string{"refreshToken": rt})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("reused refresh token = %d, want 401", rec.Code)
	}

	// The rotated one works
	rec, _ = doJSON(t, s, "POST", "/auth/refresh", "", map[string]string{"refreshToken": newRT})
	if rec.Code != http.StatusOK {
		t.Errorf("rotated refresh token = %d, want 200", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec, _ := doJSON(t, s, "GET", "/tasks", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", rec.Code)
	}

	rec, _ = doJSON(t, s, "GET", "/tasks", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token = %d, want 401", rec.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	token, _ := register(t, s, "a@b.c")

	// Create discards a client-sent id
	rec, out := doJSON(t, s, "POST", "/tasks", token, map[string]interface{}{
		"id":    "client-chosen",
		"title": "Report",
		"tags":  []string{"work", " work ", "", "urgent"},
		"done":  false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	taskID := jsonStr(t, out["id"])
	if taskID == "client-chosen" || taskID == "" {
		t.Errorf("id = %q, want server-assigned", taskID)
	}
	var tags []string
	_ = json.Unmarshal(out["tags"], &tags)
	if len(tags) != 2 || tags[0] != "work" || tags[1] != "urgent" {
		t.Errorf("tags not normalized: %v", tags)
	}

	// List returns the document as stored
	rec, _ = doJSON(t, s, "GET", "/tasks", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var docs []taskDoc
	if err := json.Unmarshal(rec.Body.Bytes(), &docs); err != nil {
		t.Fatalf("list body: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != taskID || docs[0].Title != "Report" {
		t.Errorf("docs = %+v", docs)
	}

	// Update: the path parameter owns identity
	rec, out = doJSON(t, s, "PUT", "/tasks/"+taskID, token, map[string]interface{}{
		"id":    "hijack",
		"title": "Report v2",
		"done":  true,
		"subtasks": []map[string]interface{}{
			{"id": "s1", "title": "outline", "done": true},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body)
	}
	if got := jsonStr(t, out["id"]); got != taskID {
		t.Errorf("update reassigned id to %q", got)
	}

	rec, _ = doJSON(t, s, "GET", "/tasks", token, nil)
	docs = nil
	_ = json.Unmarshal(rec.Body.Bytes(), &docs)
	if !docs[0].Done || docs[0].Title != "Report v2" || len(docs[0].Subtasks) != 1 {
		t.Errorf("updated doc = %+v", docs[0])
	}

	// Delete
	rec, _ = doJSON(t, s, "DELETE", "/tasks/"+taskID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec, _ = doJSON(t, s, "DELETE", "/tasks/"+taskID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

func TestTaskValidation(t *testing.T) {
	s := newTestServer(t)
	token, _ := register(t, s, "a@b.c")

	rec, _ := doJSON(t, s, "POST", "/tasks", token, map[string]interface{}{"title": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank title = %d, want 400", rec.Code)
	}

	rec, _ = doJSON(t, s, "POST", "/tasks", token, map[string]interface{}{
		"title": "x", "priority": 3,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("priority 3 = %d, want 400", rec.Code)
	}
}

func TestTaskOwnership(t *testing.T) {
	s := newTestServer(t)
	alice, _ := register(t, s, "alice@b.c")
	bob, _ := register(t, s, "bob@b.c")

	_, out := doJSON(t, s, "POST", "/tasks", alice, map[string]interface{}{"title": "Private"})
	taskID := jsonStr(t, out["id"])

	rec, _ := doJSON(t, s, "GET", "/tasks", bob, nil)
	var docs []taskDoc
	_ = json.Unmarshal(rec.Body.Bytes(), &docs)
	if len(docs) != 0 {
		t.Errorf("bob sees alice's tasks")
	}

	rec, _ = doJSON(t, s, "PUT", "/tasks/"+taskID, bob, map[string]interface{}{"title": "hacked"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user update = %d, want 404", rec.Code)
	}
	rec, _ = doJSON(t, s, "DELETE", "/tasks/"+taskID, bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user delete = %d, want 404", rec.Code)
	}
}

func TestProfileLifecycle(t *testing.T) {
	s := newTestServer(t)
	token, _ := register(t, s, "a@b.c")

	rec, out := doJSON(t, s, "GET", "/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile: %d", rec.Code)
	}
	if got := jsonStr(t, out["email"]); got != "a@b.c" {
		t.Errorf("email = %q", got)
	}
	if got := jsonStr(t, out["name"]); got != "Test User" {
		t.Errorf("name = %q", got)
	}

	// Partial update: empty fields keep current values
	rec, out = doJSON(t, s, "PUT", "/profile", token, map[string]string{
		"picture": "avatar_3",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: %d %s", rec.Code, rec.Body)
	}
	if got := jsonStr(t, out["picture"]); got != "avatar_3" {
		t.Errorf("picture = %q", got)
	}
	if got := jsonStr(t, out["name"]); got != "Test User" {
		t.Errorf("partial update clobbered name: %q", got)
	}
}

func TestDeleteAccount(t *testing.T) {
	s := newTestServer(t)
	token, rt := register(t, s, "a@b.c")

	doJSON(t, s, "POST", "/tasks", token, map[string]interface{}{"title": "doomed"})

	rec, _ := doJSON(t, s, "DELETE", "/profile/delete-account", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete account: %d %s", rec.Code, rec.Body)
	}

	rec, _ = doJSON(t, s, "GET", "/profile", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("profile after delete = %d, want 404", rec.Code)
	}
	rec, _ = doJSON(t, s, "POST", "/auth/refresh", "", map[string]string{"refreshToken": rt})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh after delete = %d, want 401", rec.Code)
	}
	rec, _ = doJSON(t, s, "POST", "/auth/login", "", map[string]string{
		"email": "a@b.c", "password": "secret1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login after delete = %d, want 401", rec.Code)
	}
}

func TestListIsolatesManyTasks(t *testing.T) {
	s := newTestServer(t)
	token, _ := register(t, s, "a@b.c")

	for i := 0; i < 5; i++ {
		rec, _ := doJSON(t, s, "POST", "/tasks", token, map[string]interface{}{
			"title": fmt.Sprintf("task %d", i),
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("create %d: %d", i, rec.Code)
		}
	}

	rec, _ := doJSON(t, s, "GET", "/tasks", token, nil)
	var docs []taskDoc
	if err := json.Unmarshal(rec.Body.Bytes(), &docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 5 {
		t.Fatalf("docs = %d, want 5", len(docs))
	}
	// Creation order is preserved
	for i, d := range docs {
		if want := fmt.Sprintf("task %d", i); d.Title != want {
			t.Errorf("docs[%d].Title = %q, want %q", i, d.Title, want)
		}
	}
}
