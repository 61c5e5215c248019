package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// LoginInput is the username/password pair accepted by the login endpoint.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is a successful login: the bearer token and the user it belongs to.
type LoginResult struct {
	AccessToken string
	User        Identity
}

// Login exchanges credentials for a bearer token. It does not attach any
// existing token to the request.
func (c *Client) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Username == "" || input.Password == "" {
		return nil, errors.New("username and password are required")
	}

	body, err := c.do(ctx, c.plain, http.MethodPost, loginPath, nil, input)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		AccessToken string          `json:"access_token"`
		User        json.RawMessage `json:"user"`
		Data        *struct {
			AccessToken string          `json:"access_token"`
			User        json.RawMessage `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	token, rawUser := envelope.AccessToken, envelope.User
	if token == "" && envelope.Data != nil {
		token, rawUser = envelope.Data.AccessToken, envelope.Data.User
	}
	if token == "" {
		return nil, errors.New("login response has no access_token")
	}
	if len(rawUser) == 0 || string(rawUser) == "null" {
		return nil, ErrNoUser
	}

	wrapped, err := json.Marshal(map[string]json.RawMessage{"user": rawUser})
	if err != nil {
		return nil, fmt.Errorf("encode login user: %w", err)
	}
	ident, err := DecodeAccount(wrapped)
	if err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: token, User: *ident}, nil
}
