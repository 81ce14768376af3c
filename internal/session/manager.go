// Package session owns the credential record and the token lifecycle:
// it answers whether a usable bearer token exists right now, refreshes
// an expired one, and terminates sessions that cannot prove validity.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/existflow/taskdeck/internal/logger"
)

var (
	// ErrNoSession means no credential record exists or it holds no id token
	ErrNoSession = errors.New("no active session")
	// ErrNoRefreshToken means the record exists but cannot be refreshed
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrRefreshFailed is session-fatal: the credential record has been
	// cleared and the user must log in again
	ErrRefreshFailed = errors.New("token refresh failed")
)

// Refresher exchanges a refresh token for a new token pair.
// Implemented by api.Client.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (idToken string, newRefreshToken string, err error)
}

// Manager is the single writer of the credential record. Valid/expired
// are never stored states; they are computed from the token's exp claim
// on every read.
type Manager struct {
	store     CredentialStore
	refresher Refresher

	// Refresh is serialized behind a single-flight gate: concurrent
	// expired-token detections collapse onto one in-flight request.
	mu       sync.Mutex
	inflight *refreshCall

	now func() time.Time // test hook
}

type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

// NewManager creates a session manager over the given store and refresher
func NewManager(store CredentialStore, refresher Refresher) *Manager {
	return &Manager{store: store, refresher: refresher, now: time.Now}
}

// Token implements api.TokenSource
func (m *Manager) Token(ctx context.Context) (string, error) {
	return m.ValidToken(ctx)
}

// ValidToken returns a bearer token that is not known to be expired,
// refreshing first when it is. A token that cannot be decoded counts as
// expired, never as valid.
func (m *Manager) ValidToken(ctx context.Context) (string, error) {
	creds, err := m.load()
	if err != nil {
		return "", err
	}
	if creds.IDToken == "" {
		return "", ErrNoSession
	}

	if m.tokenExpired(creds.IDToken) {
		logger.Debug("id token expired, refreshing")
		return m.Refresh(ctx)
	}
	return creds.IDToken, nil
}

// Refresh mints a new id token from the stored refresh token. A single
// attempt is made; on any failure the credential record is deleted and
// ErrRefreshFailed propagates. A session that cannot prove validity is
// terminated rather than left ambiguous.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if call := m.inflight; call != nil {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.token, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	m.inflight = call
	m.mu.Unlock()

	call.token, call.err = m.doRefresh(ctx)
	close(call.done)

	m.mu.Lock()
	m.inflight = nil
	m.mu.Unlock()

	return call.token, call.err
}

func (m *Manager) doRefresh(ctx context.Context) (string, error) {
	sc, err := m.store.Load()
	if err != nil || sc == nil {
		return "", ErrNoSession
	}
	creds, legacy := decodeCredentials(sc)
	if legacy {
		logger.Warn("legacy credential format detected during refresh")
	}
	if creds.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	idToken, newRefresh, err := m.refresher.RefreshToken(ctx, creds.RefreshToken)
	if err != nil {
		logger.Error("refresh failed, clearing session", logger.F("error", err))
		_ = m.store.Clear()
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	// Overwrite the tokens but keep co-located fields such as the avatar
	creds.IDToken = idToken
	creds.RefreshToken = newRefresh
	if err := m.save(creds); err != nil {
		_ = m.store.Clear()
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	logger.Info("session refreshed")
	return idToken, nil
}

// StoreSession writes a fresh credential record, replacing any prior
// content
func (m *Manager) StoreSession(idToken, refreshToken string) error {
	if idToken == "" {
		return fmt.Errorf("id token is required")
	}
	return m.save(Credentials{IDToken: idToken, RefreshToken: refreshToken})
}

// ClearSession deletes the credential record; idempotent
func (m *Manager) ClearSession() error {
	return m.store.Clear()
}

// LoggedIn reports whether a credential record with an id token exists.
// It says nothing about expiry.
func (m *Manager) LoggedIn() bool {
	creds, err := m.load()
	return err == nil && creds.IDToken != ""
}

// Avatar returns the avatar cached in the credential record, if any
func (m *Manager) Avatar() string {
	creds, err := m.load()
	if err != nil {
		return ""
	}
	return creds.Avatar
}

// SetAvatar caches the avatar in the credential record, preserving the
// tokens
func (m *Manager) SetAvatar(avatar string) error {
	creds, err := m.load()
	if err != nil {
		return err
	}
	creds.Avatar = avatar
	return m.save(creds)
}

// load reads and decodes the credential record. A legacy bare-string
// record is migrated by treating the whole stored value as the token.
func (m *Manager) load() (Credentials, error) {
	sc, err := m.store.Load()
	if err != nil {
		return Credentials{}, fmt.Errorf("credential store: %w", err)
	}
	if sc == nil || sc.Blob == "" {
		return Credentials{}, ErrNoSession
	}
	creds, _ := decodeCredentials(sc)
	return creds, nil
}

func (m *Manager) save(creds Credentials) error {
	sc, err := encodeCredentials(creds)
	if err != nil {
		return err
	}
	return m.store.Save(sc)
}

// tokenExpired checks the token's exp claim without verifying the
// signature; validity is the server's concern, staleness is ours.
// Malformed tokens and missing claims both count as expired so a broken
// token forces a refresh instead of crashing the caller.
func (m *Manager) tokenExpired(token string) bool {
	if strings.Count(token, ".") != 2 {
		return true
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Before(m.now())
}
