package credstore

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned by TokenSource when no access token is stored.
var ErrNoToken = errors.New("no access token stored")

type storeTokenSource struct {
	ctx   context.Context
	store Store
}

// TokenSource reads the access token from store on every call, so a token
// written or deleted after the client was built is picked up immediately.
// Do not wrap it in oauth2.ReuseTokenSource.
func TokenSource(ctx context.Context, store Store) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: store}
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	token, ok, err := s.store.Get(s.ctx, KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("read access token: %w", err)
	}
	if !ok || token == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
