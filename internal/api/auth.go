package api

import (
	"context"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

// TokenPair is the credential pair issued by POST auth/token/.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterRequest creates a new marketplace account.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ProfileUpdate carries the PATCHable profile fields.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// ObtainToken exchanges credentials for a token pair.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (*TokenPair, error) {
	var out TokenPair
	body := map[string]string{"username": username, "password": password}
	if err := c.post(ctx, "auth/token/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	var out domain.User
	if err := c.post(ctx, "auth/register/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.get(ctx, "auth/profile/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile patches the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*domain.User, error) {
	var out domain.User
	if err := c.patch(ctx, "auth/profile/", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
