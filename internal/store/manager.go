package store

import (
	"context"
	"sync"
)

// Manager is the single process-wide access point for the Store. Concurrent
// callers awaiting initialization share one in-flight attempt and all receive
// its result; a failed attempt resets the manager so the next call retries.
type Manager struct {
	open func(ctx context.Context) (*Store, error)

	mu       sync.Mutex
	store    *Store
	inflight *initCall
}

type initCall struct {
	done  chan struct{}
	store *Store
	err   error
}

// NewManager creates a Manager that opens the store with the given function
// on first use.
func NewManager(open func(ctx context.Context) (*Store, error)) *Manager {
	return &Manager{open: open}
}

// Get returns the shared store, initializing it on first call. Callers
// arriving while initialization is in flight block on the same attempt
// rather than racing separate connections.
func (m *Manager) Get(ctx context.Context) (*Store, error) {
	m.mu.Lock()
	if m.store != nil {
		s := m.store
		m.mu.Unlock()
		return s, nil
	}
	if m.inflight != nil {
		call := m.inflight
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.store, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &initCall{done: make(chan struct{})}
	m.inflight = call
	m.mu.Unlock()

	call.store, call.err = m.open(ctx)

	m.mu.Lock()
	if call.err == nil {
		m.store = call.store
	}
	m.inflight = nil
	m.mu.Unlock()

	close(call.done)
	return call.store, call.err
}

// Close closes the store if it was opened and resets the manager.
func (m *Manager) Close() error {
	m.mu.Lock()
	s := m.store
	m.store = nil
	m.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.DB.Close()
}
