package session

import (
	"context"
	"net/http"
)

type managerKey struct{}

// WithManager scopes m to ctx.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext returns the Manager scoped to ctx.
// Returns (nil, false) if none is present.
func FromContext(ctx context.Context) (*Manager, bool) {
	m, ok := ctx.Value(managerKey{}).(*Manager)
	return m, ok && m != nil
}

// MustFromContext returns the Manager scoped to ctx or panics.
// Reading the session outside its scope is a wiring bug, not a runtime condition.
func MustFromContext(ctx context.Context) *Manager {
	m, ok := FromContext(ctx)
	if !ok {
		panic("session: manager not found in context - the caller is outside the session scope (missing session.Provide or session.WithManager)")
	}
	return m
}

// Provide scopes the current Manager to every request. current is consulted
// per request so the owner can remount.
func Provide(current func() *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := current()
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithManager(r.Context(), m)))
		})
	}
}
