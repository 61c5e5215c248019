package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/terraconstructs/shopadmin/pkg/credstore"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
)

// ErrClosed is returned by waits on a Manager whose owning scope has gone
// away before bootstrap settled.
var ErrClosed = errors.New("session: closed before bootstrap settled")

// API is the server side of the session: who-am-i and logout.
// *sdk.Client satisfies it.
type API interface {
	FetchAccount(ctx context.Context) (*sdk.Identity, error)
	Logout(ctx context.Context) error
}

// Manager is the single writer of session state for one mount.
//
// Readers never block on I/O. Writers (bootstrap settle, SetIdentity, Logout)
// are serialized, and each finishes its storage writes before publishing the
// new state.
type Manager struct {
	store   credstore.Store
	api     API
	logger  *slog.Logger
	metrics *Metrics

	started   atomic.Bool
	closed    atomic.Bool
	done      chan struct{}
	closeDone sync.Once

	writeMu sync.Mutex

	mu       sync.RWMutex
	status   Status
	identity *sdk.Identity
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics records bootstrap and logout metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager returns a Manager in StatusUninitialized.
func NewManager(store credstore.Store, api API, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		api:    api,
		logger: slog.New(slog.DiscardHandler),
		done:   make(chan struct{}),
		status: StatusUninitialized,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize resolves the session from the stored token. Only the first call
// does anything; later and concurrent calls return immediately.
//
// With no stored token the session becomes Anonymous without calling the
// server. When the server rejects the token, or the call fails for any
// reason, every session key is deleted and the session becomes Anonymous.
// There is no retry.
//
// If the Manager is closed, or ctx is cancelled, while the call is in flight
// the result is discarded: neither state nor storage is touched.
func (m *Manager) Initialize(ctx context.Context) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	if m.closed.Load() {
		m.finish()
		return
	}
	m.publishIf(StatusUninitialized, StatusLoading, nil)

	token, ok, err := m.store.Get(ctx, credstore.KeyAccessToken)
	if err != nil {
		if m.unmounted(ctx) {
			m.discard(ctx)
			return
		}
		m.logger.Warn("read stored access token", "error", err)
		m.reject(ctx, OutcomeRejected)
		return
	}
	if !ok || token == "" {
		m.logger.Debug("no stored access token")
		m.reject(ctx, OutcomeNoToken)
		return
	}

	started := time.Now()
	ident, err := m.api.FetchAccount(ctx)
	if err == nil && ident == nil {
		err = sdk.ErrNoUser
	}
	m.metrics.recordResolve(ctx, started, err == nil)

	if m.unmounted(ctx) {
		m.discard(ctx)
		return
	}

	if err != nil {
		m.logger.Warn("account resolution failed; clearing stored credentials", "error", err)
		m.reject(ctx, OutcomeRejected)
		return
	}

	m.accept(ctx, *ident)
}

func (m *Manager) accept(ctx context.Context, ident sdk.Identity) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	defer m.finish()

	if m.unmounted(ctx) {
		m.discard(ctx)
		return
	}
	// logout won the race
	if m.Status() != StatusLoading {
		m.metrics.recordBootstrap(ctx, OutcomeDiscarded)
		return
	}
	if err := credstore.SaveIdentity(ctx, m.store, ident); err != nil {
		m.logger.Warn("persist user snapshot", "error", err)
	}
	m.publish(StatusAuthenticated, &ident)
	m.logger.Info("session authenticated", "user_id", ident.ID, "role", ident.Role.String())
	m.metrics.recordBootstrap(ctx, OutcomeAuthenticated)
}

func (m *Manager) reject(ctx context.Context, outcome string) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	defer m.finish()

	if m.unmounted(ctx) {
		m.discard(ctx)
		return
	}
	if m.Status() != StatusLoading {
		m.metrics.recordBootstrap(ctx, OutcomeDiscarded)
		return
	}
	// stale snapshot keys may outlive a missing token
	if err := credstore.Clear(ctx, m.store); err != nil {
		m.logger.Warn("clear stored credentials", "error", err)
	}
	m.publish(StatusAnonymous, nil)
	m.metrics.recordBootstrap(ctx, outcome)
}

// unmounted reports whether the owning scope is gone. Settling checks it
// under writeMu so a close racing the result cannot touch storage.
func (m *Manager) unmounted(ctx context.Context) bool {
	return m.closed.Load() || ctx.Err() != nil
}

// discard drops a bootstrap result without touching state or storage.
func (m *Manager) discard(ctx context.Context) {
	m.logger.Debug("discarding bootstrap result", "reason", "closed")
	m.metrics.recordBootstrap(context.WithoutCancel(ctx), OutcomeDiscarded)
	m.Close()
}

// SetIdentity replaces the identity wholesale. It does nothing unless the
// session is Authenticated, and reports whether it applied.
func (m *Manager) SetIdentity(ctx context.Context, ident sdk.Identity) bool {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if m.Status() != StatusAuthenticated {
		return false
	}
	if err := credstore.SaveIdentity(ctx, m.store, ident); err != nil {
		m.logger.Warn("persist user snapshot", "error", err)
	}
	m.publish(StatusAuthenticated, &ident)
	return true
}

// Logout ends the session. The server call is best effort; its failure is
// logged. Every session key is then deleted and the session becomes
// Anonymous. Logout never fails and may be called any number of times.
func (m *Manager) Logout(ctx context.Context) {
	acknowledged := m.callLogout(ctx)

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := credstore.Clear(ctx, m.store); err != nil {
		m.logger.Error("clear stored credentials", "error", err)
	}
	m.publish(StatusAnonymous, nil)
	m.metrics.recordLogout(ctx, acknowledged)
	m.logger.Info("session logged out", "acknowledged", acknowledged)
}

func (m *Manager) callLogout(ctx context.Context) (acknowledged bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("logout request panicked", "panic", fmt.Sprint(r))
			acknowledged = false
		}
	}()

	_, ok, err := m.store.Get(ctx, credstore.KeyAccessToken)
	if err == nil && !ok {
		m.logger.Debug("no stored access token; skipping logout request")
		return false
	}
	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("logout request failed", "error", err)
		return false
	}
	return true
}

// Close marks the owning scope as gone. An in-flight Initialize result is
// discarded and waiters are released.
func (m *Manager) Close() {
	m.closed.Store(true)
	m.finish()
}

// Closed reports whether Close was called.
func (m *Manager) Closed() bool {
	return m.closed.Load()
}

// Done is closed once bootstrap settles or is discarded.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until bootstrap settles or ctx is done.
func (m *Manager) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-m.done:
	case <-ctx.Done():
		return m.Snapshot(), ctx.Err()
	}
	snap := m.Snapshot()
	if !snap.Ready() {
		return snap, ErrClosed
	}
	return snap, nil
}

// Snapshot returns a consistent copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{Status: m.status}
	if m.identity != nil {
		ident := *m.identity
		snap.Identity = &ident
	}
	return snap
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Identity returns a copy of the current identity, or nil.
func (m *Manager) Identity() *sdk.Identity {
	return m.Snapshot().Identity
}

// Ready reports whether bootstrap has settled.
func (m *Manager) Ready() bool {
	return m.Status().Settled()
}

func (m *Manager) publish(status Status, ident *sdk.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.identity = ident
}

func (m *Manager) publishIf(from, to Status, ident *sdk.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == from {
		m.status = to
		m.identity = ident
	}
}

func (m *Manager) finish() {
	m.closeDone.Do(func() { close(m.done) })
}
