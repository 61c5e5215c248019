package gate

import (
	"bytes"
	"context"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/shopadmin/pkg/credstore"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

type stubAPI struct {
	ident *sdk.Identity
}

func (s stubAPI) FetchAccount(context.Context) (*sdk.Identity, error) { return s.ident, nil }
func (s stubAPI) Logout(context.Context) error                       { return nil }

func sequencer(t *testing.T, token string, ident *sdk.Identity) *session.Sequencer {
	t.Helper()
	store := credstore.NewMemoryStore()
	if token != "" {
		require.NoError(t, store.Set(context.Background(), credstore.KeyAccessToken, token))
	}
	return session.NewSequencer(session.NewManager(store, stubAPI{ident: ident}))
}

func TestRequire(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		var out bytes.Buffer
		g := New(&out, false)

		_, err := g.Require(ctx, sequencer(t, "", nil), "", "shopctl admin books")
		assert.ErrorIs(t, err, ErrLoginRequired)
		assert.ErrorIs(t, err, ErrDenied)
		assert.Contains(t, out.String(), "You must be logged in")
		assert.Contains(t, out.String(), `--return-to "shopctl admin books"`)
	})

	t.Run("wrong role", func(t *testing.T) {
		var out bytes.Buffer
		g := New(&out, false)

		_, err := g.Require(ctx, sequencer(t, "abc", &sdk.Identity{ID: "2", Role: "user"}), sdk.RoleAdmin, "shopctl admin users")
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Contains(t, out.String(), "not authorized")
		assert.Contains(t, out.String(), "shopctl home")
		assert.NotContains(t, out.String(), "auth login")
	})

	t.Run("allowed", func(t *testing.T) {
		var out bytes.Buffer
		g := New(&out, false)

		snap, err := g.Require(ctx, sequencer(t, "abc", &sdk.Identity{ID: "1", FullName: "Ann", Role: "Admin"}), sdk.RoleAdmin, "")
		require.NoError(t, err)
		assert.Equal(t, "Ann", snap.Identity.FullName)
		assert.Empty(t, out.String())
	})

	t.Run("interrupted", func(t *testing.T) {
		var out bytes.Buffer
		g := New(&out, false)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := g.Require(cancelled, sequencer(t, "abc", &sdk.Identity{ID: "1", Role: "admin"}), "", "")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDenied)
	})
}
