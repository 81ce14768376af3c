// Package kv is a small file-backed key-value store for bits of client
// state that are not secrets and not worth a database: the remembered
// login email, the theme preference, the biometric opt-in flag and a
// pending profile update staged for the next login.
package kv

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Well-known keys
const (
	KeyRememberedEmail      = "remembered_email"
	KeyThemePreference      = "theme_preference"
	KeyBiometryEnabled      = "biometry_enabled"
	KeyPendingProfileUpdate = "pending_profile_update"
)

// Store is a JSON-file backed string map
type Store struct {
	path   string
	values map[string]string
}

// Open loads the store at path, starting empty if the file is missing
// or unreadable
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, nil
	}
	// A corrupt state file is discarded rather than propagated; every
	// value in here can be recreated by the user.
	_ = json.Unmarshal(data, &s.values)
	return s, nil
}

// OpenDefault opens the store at ~/.taskdeck/state.json
func OpenDefault() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(home, ".taskdeck", "state.json"))
}

// Get returns the value for key and whether it was present
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value and persists the store
func (s *Store) Set(key, value string) error {
	s.values[key] = value
	return s.save()
}

// Remove deletes a key and persists the store. Removing an absent key
// is a no-op.
func (s *Store) Remove(key string) error {
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.save()
}

func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0600)
}
