// Package api is the HTTP client for the taskdeck backend. It owns the
// wire format, including the field-name mapping between the client's
// task shape and the server's (done, tags, subtask title).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/taskdeck/internal/logger"
)

// TokenSource supplies a bearer token for authenticated requests.
// Implemented by session.Manager.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenRefresher is an optional TokenSource extension for sources that
// can force a refresh when the server rejects a token the local expiry
// check still considers valid (secret rotation, clock skew, revocation).
// Implemented by session.Manager.
type TokenRefresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Client talks to the taskdeck REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// New creates a client for the given base URL. The timeout is explicit
// so a hung request cannot hang a UI flow indefinitely.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTokenSource wires the session manager in after construction.
// Register, login and refresh work without one.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// Error is a non-2xx response from the server
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error (%d)", e.Status)
}

// do sends one JSON request. Register and login are the only public
// routes; everything else carries the Authorization header. A 401 on an
// authed request gets one refresh-and-retry: the local expiry check
// cannot see server-side invalidation.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	if !authed {
		return c.send(ctx, method, path, data, out, "")
	}

	if c.tokens == nil {
		return fmt.Errorf("no token source configured")
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	err = c.send(ctx, method, path, data, out, token)

	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}
	refresher, ok := c.tokens.(TokenRefresher)
	if !ok {
		return err
	}

	logger.Info("server rejected token, refreshing", logger.F("path", path))
	fresh, refreshErr := refresher.Refresh(ctx)
	if refreshErr != nil {
		return refreshErr
	}
	return c.send(ctx, method, path, data, out, fresh)
}

func (c *Client) send(ctx context.Context, method, path string, data []byte, out interface{}, token string) error {
	var reqBody io.Reader
	if data != nil {
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger.Debug("HTTP request", logger.F("method", method), logger.F("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("HTTP request failed", logger.F("method", method), logger.F("path", path), logger.F("error", err))
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	logger.Debug("HTTP response", logger.F("path", path), logger.F("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		respBody, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(respBody, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("malformed response: %w", err)
		}
	}
	return nil
}
