package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// User is the authenticated account as returned by the backend.
type User struct {
	ID                 string `json:"id"`
	Username           string `json:"username,omitempty"`
	Name               string `json:"name,omitempty"`
	Email              string `json:"email"`
	Role               string `json:"role,omitempty"`
	SubscriptionTier   string `json:"subscription_tier,omitempty"`
	SubscriptionStatus string `json:"subscription_status,omitempty"`
	DogsCount          int    `json:"dogs_count,omitempty"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return strings.EqualFold(u.Role, "admin")
}

// Token is a bearer token issued by the backend.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Token{}, errors.New("client: email and password are required")
	}
	var tok Token
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": strings.TrimSpace(email), "password": password},
		Public: true,
	}, &tok)
	if err != nil {
		return Token{}, err
	}
	if tok.AccessToken == "" {
		return Token{}, errors.New("client: login response carried no token")
	}
	return tok, nil
}

// Me returns the account for the current token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/account/me"}, &user); err != nil {
		return User{}, err
	}
	return user, nil
}
