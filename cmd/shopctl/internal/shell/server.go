// Package shell serves the admin shell in the browser. It owns one session
// mount at a time and replaces it after login.
package shell

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-chi/cors"

	"github.com/terraconstructs/shopadmin/pkg/credstore"
	"github.com/terraconstructs/shopadmin/pkg/guard"
	"github.com/terraconstructs/shopadmin/pkg/nav"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

// Options configures a Server. Store, Client and Nav are required.
type Options struct {
	Store credstore.Store
	// Client talks to the bookstore API; its authenticated calls must read
	// the token from Store.
	Client  *sdk.Client
	Nav     *nav.Shell
	Logger  *slog.Logger
	Metrics *session.Metrics
	// CORSOrigins are allowed to call /api/session with credentials.
	CORSOrigins []string
}

type mount struct {
	seq    *session.Sequencer
	cancel context.CancelFunc
}

// Server is the web shell.
type Server struct {
	opts  Options
	guard *guard.Guard
	base  context.Context

	remountMu sync.Mutex
	current   atomic.Pointer[mount]
}

// New mounts the first session and starts its bootstrap. ctx bounds every
// mount; cancelling it discards unsettled results.
func New(ctx context.Context, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		opts:  opts,
		guard: guard.New(opts.Logger),
		base:  ctx,
	}
	s.Remount()
	return s
}

// Remount replaces the session with a fresh one bootstrapped from storage.
// The previous mount is closed, so its in-flight result is discarded.
func (s *Server) Remount() *session.Sequencer {
	s.remountMu.Lock()
	defer s.remountMu.Unlock()

	ctx, cancel := context.WithCancel(s.base)
	m := session.NewManager(s.opts.Store, s.opts.Client,
		session.WithLogger(s.opts.Logger),
		session.WithMetrics(s.opts.Metrics),
	)
	next := &mount{seq: session.NewSequencer(m), cancel: cancel}
	next.seq.Start(ctx)

	if prev := s.current.Swap(next); prev != nil {
		prev.seq.Stop()
		prev.cancel()
	}
	s.opts.Logger.Debug("session mounted")
	return next.seq
}

// Manager returns the current mount's manager.
func (s *Server) Manager() *session.Manager {
	if cur := s.current.Load(); cur != nil {
		return cur.seq.Manager()
	}
	return nil
}

// Sequencer returns the current mount's sequencer.
func (s *Server) Sequencer() *session.Sequencer {
	if cur := s.current.Load(); cur != nil {
		return cur.seq
	}
	return nil
}

// Close unmounts the current session.
func (s *Server) Close() {
	s.remountMu.Lock()
	defer s.remountMu.Unlock()
	if cur := s.current.Swap(nil); cur != nil {
		cur.seq.Stop()
		cur.cancel()
	}
}

func (s *Server) corsOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}
