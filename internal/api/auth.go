package api

import "context"

// RegisterRequest is the body for POST /auth/register
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// TokenPair is an id token plus the refresh token that can mint its
// successor
type TokenPair struct {
	IDToken      string
	RefreshToken string
	UID          string
}

// Register creates an account and returns its first token pair
func (c *Client) Register(ctx context.Context, req RegisterRequest) (TokenPair, error) {
	var out struct {
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
		UID          string `json:"uid"`
	}
	if err := c.do(ctx, "POST", "/auth/register", req, &out, false); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{IDToken: out.IDToken, RefreshToken: out.RefreshToken, UID: out.UID}, nil
}

// Login exchanges credentials for a token pair. The login endpoint
// answers in snake_case, unlike register and refresh.
func (c *Client) Login(ctx context.Context, email, password string) (TokenPair, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.do(ctx, "POST", "/auth/login", body, &out, false); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{IDToken: out.IDToken, RefreshToken: out.RefreshToken}, nil
}

// RefreshToken exchanges a refresh token for a new token pair.
// Satisfies session.Refresher. The request is deliberately unauthenticated:
// the refresh token itself is the credential, and demanding a valid bearer
// token here would recurse into the very refresh being attempted.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var out struct {
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.do(ctx, "POST", "/auth/refresh", body, &out, false); err != nil {
		return "", "", err
	}
	return out.IDToken, out.RefreshToken, nil
}
