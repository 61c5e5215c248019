package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/terraconstructs/shopadmin/pkg/sdk"
)

// Cached is what the store holds for a session, read back without the server.
type Cached struct {
	Token         string
	Authenticated bool
	User          *sdk.Identity
}

// HasToken reports whether an access token is stored.
func (c Cached) HasToken() bool {
	return c.Token != ""
}

// SaveLogin writes the token, the authenticated flag and the user snapshot.
func SaveLogin(ctx context.Context, store Store, token string, user sdk.Identity) error {
	if err := store.Set(ctx, KeyAccessToken, token); err != nil {
		return err
	}
	return SaveIdentity(ctx, store, user)
}

// SaveIdentity writes the authenticated flag and user snapshot next to an
// already stored token.
func SaveIdentity(ctx context.Context, store Store, user sdk.Identity) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user snapshot: %w", err)
	}
	if err := store.Set(ctx, KeyAuthenticated, strconv.FormatBool(true)); err != nil {
		return err
	}
	return store.Set(ctx, KeyUser, string(data))
}

// Clear deletes every session key.
func Clear(ctx context.Context, store Store) error {
	return store.Delete(ctx, SessionKeys...)
}

// Load reads every session key. A corrupt user snapshot is reported along
// with whatever else could be read.
func Load(ctx context.Context, store Store) (Cached, error) {
	var cached Cached
	var errs []error

	token, _, err := store.Get(ctx, KeyAccessToken)
	if err != nil {
		return cached, err
	}
	cached.Token = token

	flag, ok, err := store.Get(ctx, KeyAuthenticated)
	if err != nil {
		return cached, err
	}
	if ok {
		cached.Authenticated, _ = strconv.ParseBool(flag)
	}

	raw, ok, err := store.Get(ctx, KeyUser)
	if err != nil {
		return cached, err
	}
	if ok && raw != "" {
		var user sdk.Identity
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			errs = append(errs, fmt.Errorf("decode user snapshot: %w", err))
		} else {
			cached.User = &user
		}
	}

	return cached, errors.Join(errs...)
}
