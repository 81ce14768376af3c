package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Credentials is the structured credential record. The avatar rides
// along in the same record for historical reasons; refresh must not
// drop it.
type Credentials struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
}

// StoredCredential is what a credential store holds: an opaque blob plus
// the service label it was filed under. User is a legacy field that very
// old clients abused to hold the refresh token next to a bare-string blob.
type StoredCredential struct {
	Service string `json:"service"`
	User    string `json:"user,omitempty"`
	Blob    string `json:"blob"`
}

// CredentialStore is the narrow secure-storage contract. Load returns
// (nil, nil) when nothing is stored; Clear of an empty store is a no-op.
type CredentialStore interface {
	Load() (*StoredCredential, error)
	Save(cred StoredCredential) error
	Clear() error
}

// decodeCredentials resolves the stored blob into the structured record.
// Two formats exist in the wild: JSON with idToken/id_token fields, and a
// legacy bare string that is the id token itself (with the refresh token,
// if any, in the User field). The branch happens exactly once, here.
func decodeCredentials(sc *StoredCredential) (Credentials, bool) {
	var creds Credentials
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(sc.Blob), &raw); err == nil {
		if err := json.Unmarshal([]byte(sc.Blob), &creds); err == nil {
			if creds.IDToken == "" {
				// Some records were written with snake_case keys
				var alt struct {
					IDToken string `json:"id_token"`
				}
				_ = json.Unmarshal([]byte(sc.Blob), &alt)
				creds.IDToken = alt.IDToken
			}
			return creds, false
		}
	}

	// Legacy format: the whole blob is the token
	return Credentials{
		IDToken:      sc.Blob,
		RefreshToken: sc.User,
	}, true
}

func encodeCredentials(creds Credentials) (StoredCredential, error) {
	blob, err := json.Marshal(creds)
	if err != nil {
		return StoredCredential{}, err
	}
	return StoredCredential{Service: "auth", Blob: string(blob)}, nil
}

// FileStore keeps the credential record in a mode-0600 JSON file. It is
// the desktop stand-in for a platform keychain.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFileStore stores credentials at ~/.taskdeck/credentials.json
func DefaultFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewFileStore(filepath.Join(home, ".taskdeck", "credentials.json")), nil
}

// Load reads the stored credential, returning (nil, nil) when absent
func (f *FileStore) Load() (*StoredCredential, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	// Files that predate the envelope hold the blob directly: either a
	// bare token string or the structured credential JSON itself. Both
	// fail to produce a blob field, so treat the whole content as the
	// blob and let decoding sort out the format.
	var sc StoredCredential
	if err := json.Unmarshal(data, &sc); err != nil || sc.Blob == "" {
		return &StoredCredential{Service: "auth", Blob: string(data)}, nil
	}
	return &sc, nil
}

// Save writes the credential record, replacing any prior content
func (f *FileStore) Save(cred StoredCredential) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0600)
}

// Clear removes the credential record; clearing nothing is not an error
func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
