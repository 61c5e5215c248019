package credstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
)

func TestSaveLoginAndLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ann := sdk.Identity{ID: "1", FullName: "Ann", Role: sdk.RoleAdmin}

	require.NoError(t, SaveLogin(ctx, store, "abc", ann))
	assert.Equal(t, 3, store.Len())

	cached, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "abc", cached.Token)
	assert.True(t, cached.Authenticated)
	require.NotNil(t, cached.User)
	assert.Equal(t, ann, *cached.User)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, SaveLogin(ctx, store, "abc", sdk.Identity{ID: "1", Role: sdk.RoleUser}))

	require.NoError(t, Clear(ctx, store))
	assert.Equal(t, 0, store.Len())

	cached, err := Load(ctx, store)
	require.NoError(t, err)
	assert.False(t, cached.HasToken())
	assert.False(t, cached.Authenticated)
	assert.Nil(t, cached.User)
}

func TestLoad_CorruptUserSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyAccessToken, "abc"))
	require.NoError(t, store.Set(ctx, KeyUser, "{broken"))

	cached, err := Load(ctx, store)
	require.Error(t, err)
	assert.Equal(t, "abc", cached.Token)
	assert.Nil(t, cached.User)
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ts := TokenSource(ctx, store)

	_, err := ts.Token()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.Set(ctx, KeyAccessToken, "abc"))
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)

	// reads through on every call
	require.NoError(t, store.Set(ctx, KeyAccessToken, "def"))
	tok, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "def", tok.AccessToken)

	require.NoError(t, Clear(ctx, store))
	_, err = ts.Token()
	assert.ErrorIs(t, err, ErrNoToken)
}
