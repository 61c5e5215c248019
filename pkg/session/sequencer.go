package session

import (
	"context"
	"sync"
)

// Sequencer runs a Manager's bootstrap exactly once per mount and exposes
// the "session ready" flag everything else waits on. It has no timeout or
// retry: a resolver call that never returns leaves the mount loading.
type Sequencer struct {
	manager *Manager
	once    sync.Once
}

func NewSequencer(m *Manager) *Sequencer {
	return &Sequencer{manager: m}
}

// Manager returns the sequenced Manager.
func (s *Sequencer) Manager() *Manager {
	return s.manager
}

// Start launches bootstrap in the background. Calls after the first are no-ops.
// ctx bounds the mount: cancelling it discards an unsettled result.
func (s *Sequencer) Start(ctx context.Context) {
	s.once.Do(func() {
		go s.manager.Initialize(ctx)
	})
}

// Run starts bootstrap if needed and waits for it to settle.
func (s *Sequencer) Run(ctx context.Context) (Snapshot, error) {
	s.Start(ctx)
	return s.manager.Wait(ctx)
}

// Ready reports whether bootstrap has settled.
func (s *Sequencer) Ready() bool {
	return s.manager.Ready()
}

// Wait blocks until bootstrap settles or ctx is done.
func (s *Sequencer) Wait(ctx context.Context) (Snapshot, error) {
	return s.manager.Wait(ctx)
}

// Stop unmounts: an unsettled bootstrap result is discarded.
func (s *Sequencer) Stop() {
	s.manager.Close()
}
