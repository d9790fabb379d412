package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/taskboard/internal/model"
)

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries an access token issued by the backend. The refresh
// token travels separately as the refresh_token cookie.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// ErrEmptyToken is returned when the backend reports success without a token.
var ErrEmptyToken = errors.New("backend returned an empty access token")

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var resp TokenResponse
	if err := c.Post(ctx, "/auth/login", creds, &resp); err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}
	if resp.AccessToken == "" {
		return "", ErrEmptyToken
	}
	return resp.AccessToken, nil
}

// Refresh obtains a new access token using the refresh_token cookie.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var resp TokenResponse
	if err := c.Post(ctx, "/auth/refresh", nil, &resp); err != nil {
		return "", fmt.Errorf("refreshing token: %w", err)
	}
	if resp.AccessToken == "" {
		return "", ErrEmptyToken
	}
	return resp.AccessToken, nil
}

// Logout invalidates the refresh token on the backend.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Post(ctx, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}

// CreateUser registers a new account.
func (c *Client) CreateUser(ctx context.Context, u model.NewUser) (*model.User, error) {
	var user model.User
	if err := c.Post(ctx, "/user/create", u, &user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return &user, nil
}

// GetUser fetches a single user.
func (c *Client) GetUser(ctx context.Context, id model.ID) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, "/user/"+escape(id), &user); err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return &user, nil
}
