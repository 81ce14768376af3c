package api

import (
	"context"

	"github.com/existflow/taskdeck/internal/model"
)

// GetProfile fetches the account profile
func (c *Client) GetProfile(ctx context.Context) (model.Profile, error) {
	var p model.Profile
	if err := c.do(ctx, "GET", "/profile", nil, &p, true); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// UpdateProfile applies a partial profile update
func (c *Client) UpdateProfile(ctx context.Context, update model.ProfileUpdate) error {
	return c.do(ctx, "PUT", "/profile", update, nil, true)
}

// DeleteAccount irreversibly deletes the account and all its tasks
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, "DELETE", "/profile/delete-account", nil, nil, true)
}
