package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a session has no stored cart. Callers treat
// it as an empty cart.
var ErrNotFound = errors.New("cart not found")

// Store holds one cart per session. Only the owning session mutates its
// cart, so operations need no cross-session coordination.
type Store interface {
	Get(ctx context.Context, sessionID string) (State, error)
	Put(ctx context.Context, sessionID string, state State) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps carts in process memory. Suitable for a single
// instance; carts do not survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]State)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.carts[sessionID]
	if !ok {
		return State{}, ErrNotFound
	}
	return state, nil
}

func (m *MemoryStore) Put(_ context.Context, sessionID string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.carts[sessionID] = state
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, sessionID)
	return nil
}
