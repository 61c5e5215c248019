package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/shopadmin/pkg/credstore"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

type fakeAPI struct {
	ident *sdk.Identity
	err   error
}

func (f *fakeAPI) FetchAccount(context.Context) (*sdk.Identity, error) { return f.ident, f.err }
func (f *fakeAPI) Logout(context.Context) error                       { return errors.New("offline") }

func authenticated(role sdk.Role) session.Snapshot {
	return session.Snapshot{
		Status:   session.StatusAuthenticated,
		Identity: &sdk.Identity{ID: "1", FullName: "Ann", Role: role},
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		snap     session.Snapshot
		required sdk.Role
		want     Outcome
	}{
		{name: "uninitialized", snap: session.Snapshot{Status: session.StatusUninitialized}, want: OutcomeLoading},
		{name: "loading with role", snap: session.Snapshot{Status: session.StatusLoading}, required: sdk.RoleAdmin, want: OutcomeLoading},
		{name: "anonymous no role", snap: session.Snapshot{Status: session.StatusAnonymous}, want: OutcomeLoginRequired},
		{name: "anonymous with role", snap: session.Snapshot{Status: session.StatusAnonymous}, required: sdk.RoleAdmin, want: OutcomeLoginRequired},
		{name: "any authenticated", snap: authenticated(sdk.RoleUser), want: OutcomeAllow},
		{name: "user needs admin", snap: authenticated("user"), required: "admin", want: OutcomeForbidden},
		{name: "case-insensitive match", snap: authenticated("admin"), required: "Admin", want: OutcomeAllow},
		{name: "upper-case identity role", snap: authenticated("ADMIN"), required: "admin", want: OutcomeAllow},
		{name: "admin on user route", snap: authenticated("admin"), required: "user", want: OutcomeForbidden},
		{name: "unknown role mixed case", snap: authenticated("Editor"), required: "EDITOR", want: OutcomeAllow},
		{name: "unknown role mismatch", snap: authenticated("editor"), required: sdk.RoleAdmin, want: OutcomeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.snap, tt.required, "/admin/book")
			assert.Equal(t, tt.want, d.Outcome, "got %s", d.Outcome)
			assert.Equal(t, "/admin/book", d.From)
		})
	}
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/login?from=%2Fadmin%2Fbook%3Fpage%3D2", LoginURL("/login", "/admin/book?page=2"))
	assert.Equal(t, "/login", LoginURL("/login", "/"))
	assert.Equal(t, "/login", LoginURL("/login", "https://evil.example/x"))
	assert.Equal(t, "/login", LoginURL("/login", "//evil.example/x"))
}

func TestSafeReturnPath(t *testing.T) {
	assert.Equal(t, "/checkout", SafeReturnPath("/checkout"))
	assert.Empty(t, SafeReturnPath("checkout"))
	assert.Empty(t, SafeReturnPath("/\\evil.example"))
	assert.Empty(t, SafeReturnPath(""))
}

func newRouter(t *testing.T, m *session.Manager) http.Handler {
	t.Helper()
	g := New(nil)
	r := chi.NewRouter()
	r.Use(session.Provide(func() *session.Manager { return m }))
	r.With(g.Require(sdk.RoleAdmin)).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("admin dashboard"))
	})
	r.With(g.Require("")).Get("/account", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("account"))
	})
	return r
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRequire_Views(t *testing.T) {
	ctx := context.Background()

	t.Run("loading", func(t *testing.T) {
		m := session.NewManager(credstore.NewMemoryStore(), &fakeAPI{})
		rec := get(newRouter(t, m), "/admin")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Loading")
		assert.NotContains(t, rec.Body.String(), "admin dashboard")
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	})

	t.Run("anonymous", func(t *testing.T) {
		m := session.NewManager(credstore.NewMemoryStore(), &fakeAPI{})
		m.Initialize(ctx)
		rec := get(newRouter(t, m), "/account")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "You must be logged in")
		assert.Contains(t, rec.Body.String(), `href="/login?from=%2Faccount"`)
	})

	t.Run("wrong role", func(t *testing.T) {
		store := credstore.NewMemoryStore()
		require.NoError(t, store.Set(ctx, credstore.KeyAccessToken, "xyz"))
		m := session.NewManager(store, &fakeAPI{ident: &sdk.Identity{ID: "2", Role: "user"}})
		m.Initialize(ctx)

		rec := get(newRouter(t, m), "/admin")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "not authorized")
		assert.Contains(t, rec.Body.String(), `href="/"`)
		assert.NotContains(t, rec.Body.String(), "/login")
	})
}

func TestRequireReady(t *testing.T) {
	m := session.NewManager(credstore.NewMemoryStore(), &fakeAPI{})
	g := New(nil)
	h := session.Provide(func() *session.Manager { return m })(
		g.RequireReady(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("public home"))
		})),
	)

	rec := get(h, "/")
	assert.Contains(t, rec.Body.String(), "Loading")
	assert.NotContains(t, rec.Body.String(), "public home")

	m.Initialize(context.Background())
	rec = get(h, "/")
	assert.Equal(t, "public home", rec.Body.String())
}

// Token "abc" resolves to Ann (admin); the admin route renders. After logout
// the same route asks for login and the token is gone from storage.
func TestScenario_LoginThenLogout(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, credstore.KeyAccessToken, "abc"))

	m := session.NewManager(store, &fakeAPI{ident: &sdk.Identity{ID: "1", FullName: "Ann", Role: "admin"}})
	m.Initialize(ctx)

	snap := m.Snapshot()
	require.Equal(t, session.StatusAuthenticated, snap.Status)
	assert.Equal(t, "Ann", snap.Identity.FullName)
	assert.Equal(t, sdk.Role("admin"), snap.Identity.Role)
	assert.Equal(t, OutcomeAllow, Evaluate(snap, sdk.RoleAdmin, "/admin").Outcome)

	h := newRouter(t, m)
	assert.Equal(t, "admin dashboard", get(h, "/admin").Body.String())

	m.Logout(ctx)

	snap = m.Snapshot()
	assert.Equal(t, session.StatusAnonymous, snap.Status)
	assert.Equal(t, OutcomeLoginRequired, Evaluate(snap, sdk.RoleAdmin, "/admin").Outcome)
	assert.Contains(t, get(h, "/admin").Body.String(), "You must be logged in")

	v, ok, err := store.Get(ctx, credstore.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEqual(t, "abc", v)
}

func TestRequire_PanicsOutsideSessionScope(t *testing.T) {
	h := New(nil).Require("")(http.NotFoundHandler())
	assert.Panics(t, func() { get(h, "/account") })
}
