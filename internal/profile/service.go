// Package profile handles the account profile: fetch and update, avatar
// selection, staged updates that wait for the next login, and account
// deletion.
package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/existflow/taskdeck/internal/api"
	"github.com/existflow/taskdeck/internal/kv"
	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/session"
)

// Avatars is the fixed catalog users pick from. The picture field stores
// the bare catalog name; clients resolve it against their own asset base.
var Avatars = []string{
	"avatar_1",
	"avatar_2",
	"avatar_3",
	"avatar_4",
	"avatar_5",
	"avatar_6",
}

// ValidAvatar reports whether name is in the catalog
func ValidAvatar(name string) bool {
	for _, a := range Avatars {
		if a == name {
			return true
		}
	}
	return false
}

// Service coordinates profile reads and writes
type Service struct {
	api     *api.Client
	session *session.Manager
	state   *kv.Store
}

// NewService creates a profile service
func NewService(apiClient *api.Client, sess *session.Manager, state *kv.Store) *Service {
	return &Service{api: apiClient, session: sess, state: state}
}

// Get fetches the profile from the backend
func (s *Service) Get(ctx context.Context) (model.Profile, error) {
	return s.api.GetProfile(ctx)
}

// Update applies a profile update immediately
func (s *Service) Update(ctx context.Context, update model.ProfileUpdate) error {
	if update.IsZero() {
		return nil
	}
	return s.api.UpdateProfile(ctx, update)
}

// SetAvatar pushes the chosen avatar to the backend and caches it in the
// credential record so the picker can show it without a round trip
func (s *Service) SetAvatar(ctx context.Context, name string) error {
	if !ValidAvatar(name) {
		return fmt.Errorf("unknown avatar %q", name)
	}
	if err := s.api.UpdateProfile(ctx, model.ProfileUpdate{Picture: name}); err != nil {
		return err
	}
	if err := s.session.SetAvatar(name); err != nil {
		logger.Warn("failed to cache avatar locally", logger.F("error", err))
	}
	return nil
}

// Stage records a profile update to be applied after the next successful
// login, for changes composed while no valid session exists
func (s *Service) Stage(update model.ProfileUpdate) error {
	if update.IsZero() {
		return nil
	}
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return s.state.Set(kv.KeyPendingProfileUpdate, string(data))
}

// Pending returns the staged update, if any
func (s *Service) Pending() (model.ProfileUpdate, bool) {
	raw, ok := s.state.Get(kv.KeyPendingProfileUpdate)
	if !ok {
		return model.ProfileUpdate{}, false
	}
	var update model.ProfileUpdate
	if err := json.Unmarshal([]byte(raw), &update); err != nil {
		return model.ProfileUpdate{}, false
	}
	return update, true
}

// FlushPending applies the staged update after a login. The staging
// record is removed whether or not the apply succeeds; a stale staged
// update must not ambush some future session.
func (s *Service) FlushPending(ctx context.Context) error {
	update, ok := s.Pending()
	defer func() {
		_ = s.state.Remove(kv.KeyPendingProfileUpdate)
	}()
	if !ok {
		return nil
	}

	if err := s.api.UpdateProfile(ctx, update); err != nil {
		logger.Warn("staged profile update failed", logger.F("error", err))
		return err
	}
	logger.Info("staged profile update applied")
	return nil
}

// DeleteAccount irreversibly deletes the account, then clears the local
// session
func (s *Service) DeleteAccount(ctx context.Context) error {
	if err := s.api.DeleteAccount(ctx); err != nil {
		return err
	}
	return s.session.ClearSession()
}
