package cart

import (
	"context"
	"sync"

	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
)

// ErrStateNotFound signals that no cart has been persisted for the owner yet.
// The service treats it as a cue to seed a fresh state, not a failure.
var ErrStateNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "cart state not found")

// Store persists per-owner cart state. Implementations must return a copy
// the caller can mutate without affecting stored data.
type Store interface {
	Load(ctx context.Context, ownerID string) (*State, error)
	Save(ctx context.Context, ownerID string, state *State) error
	Clear(ctx context.Context, ownerID string) error
}

// MemoryStore is a map-backed Store for tests and single-node development.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[string]State{}}
}

func (m *MemoryStore) Load(_ context.Context, ownerID string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[ownerID]
	if !ok {
		return nil, ErrStateNotFound
	}
	copied := cloneState(state)
	return &copied, nil
}

func (m *MemoryStore) Save(_ context.Context, ownerID string, state *State) error {
	if state == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart state is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[ownerID] = cloneState(*state)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, ownerID)
	return nil
}

func cloneState(state State) State {
	copied := State{DeliveryFee: state.DeliveryFee, Packs: make([]Pack, len(state.Packs))}
	for i, pack := range state.Packs {
		items := make([]Item, len(pack.Items))
		copy(items, pack.Items)
		pack.Items = items
		copied.Packs[i] = pack
	}
	return copied
}
