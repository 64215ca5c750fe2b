package apiclient

import (
	"context"
	"net/http"
)

func (c *Client) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	var result LoginResult
	err := c.Do(ctx, http.MethodPost, "/auth/login", in, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*User, error) {
	var user User
	err := c.Do(ctx, http.MethodPost, "/auth/register", in, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the user owning the session attached to ctx.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
