package cart

import (
	"context"
	"errors"
	"sync"

	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/logger"
)

// Service owns per-user cart state: every mutation loads the aggregate,
// applies the change, and persists the result. Callers never hold State
// across requests.
//
// Mutations that reference an unknown pack or item ID are deliberate no-ops:
// the state stays unchanged, the miss is logged, and no error is returned.
// Deleting an already-deleted pack is therefore idempotent.
type Service interface {
	State(ctx context.Context, ownerID string) (*State, error)
	AddPack(ctx context.Context, ownerID string) (Pack, error)
	UpdatePackType(ctx context.Context, ownerID, packID string, packType PackType, price int) error
	DeletePack(ctx context.Context, ownerID, packID string) error
	AddItem(ctx context.Context, ownerID, packID string, item Item) (AddResult, error)
	RemoveItem(ctx context.Context, ownerID, packID, itemID string) error
	UpdateQuantity(ctx context.Context, ownerID, packID, itemID string, delta int) error
	SetDeliveryFee(ctx context.Context, ownerID string, amount int) error
	Clear(ctx context.Context, ownerID string) error
}

type service struct {
	store Store
	logg  *logger.Logger

	// Serializes load-mutate-save cycles per owner.
	mu     sync.Mutex
	owners map[string]*sync.Mutex
}

func NewService(store Store, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{
		store:  store,
		logg:   logg,
		owners: map[string]*sync.Mutex{},
	}, nil
}

func (s *service) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.owners[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.owners[ownerID] = lock
	}
	return lock
}

// loadOrSeed returns the stored state, seeding a fresh one-pack cart when the
// owner has none yet.
func (s *service) loadOrSeed(ctx context.Context, ownerID string) (*State, error) {
	state, err := s.store.Load(ctx, ownerID)
	if err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return NewState(), nil
		}
		return nil, err
	}
	if len(state.Packs) == 0 {
		state.Packs = []Pack{newPack(1)}
	}
	return state, nil
}

func (s *service) mutate(ctx context.Context, ownerID string, fn func(*State) error) error {
	if ownerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadOrSeed(ctx, ownerID)
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return s.store.Save(ctx, ownerID, state)
}

// logMiss records a mutation that referenced an unknown ID. The state is left
// as it was and the caller sees success.
func (s *service) logMiss(ctx context.Context, kind, id string) {
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{kind + "_id": id}),
		"cart mutation referenced unknown "+kind+", skipped")
}

func (s *service) State(ctx context.Context, ownerID string) (*State, error) {
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.store.Load(ctx, ownerID)
	if err == nil {
		if len(state.Packs) == 0 {
			state.Packs = []Pack{newPack(1)}
		}
		return state, nil
	}
	if !errors.Is(err, ErrStateNotFound) {
		return nil, err
	}
	// Persist the seed so pack IDs stay stable across requests.
	state = NewState()
	if err := s.store.Save(ctx, ownerID, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *service) AddPack(ctx context.Context, ownerID string) (Pack, error) {
	var created Pack
	err := s.mutate(ctx, ownerID, func(state *State) error {
		created = state.AddPack()
		return nil
	})
	if err != nil {
		return Pack{}, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"pack_id": created.ID}), "pack added")
	return created, nil
}

func (s *service) UpdatePackType(ctx context.Context, ownerID, packID string, packType PackType, price int) error {
	if !packType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "pack type must be small or big")
	}
	if price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "pack price cannot be negative")
	}
	return s.mutate(ctx, ownerID, func(state *State) error {
		if !state.UpdatePackType(packID, packType, price) {
			s.logMiss(ctx, "pack", packID)
		}
		return nil
	})
}

func (s *service) DeletePack(ctx context.Context, ownerID, packID string) error {
	return s.mutate(ctx, ownerID, func(state *State) error {
		if !state.DeletePack(packID) {
			s.logMiss(ctx, "pack", packID)
		}
		return nil
	})
}

func (s *service) AddItem(ctx context.Context, ownerID, packID string, item Item) (AddResult, error) {
	if item.ID == "" {
		return AddPackNotFound, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	result := AddPackNotFound
	err := s.mutate(ctx, ownerID, func(state *State) error {
		result = state.AddItem(item, packID)
		return nil
	})
	if err != nil {
		return result, err
	}
	if result != AddOK {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"pack_id": packID,
			"item_id": item.ID,
			"result":  result.String(),
		}), "item add rejected")
	}
	return result, nil
}

func (s *service) RemoveItem(ctx context.Context, ownerID, packID, itemID string) error {
	return s.mutate(ctx, ownerID, func(state *State) error {
		if !state.RemoveItem(itemID, packID) {
			s.logMiss(ctx, "item", itemID)
		}
		return nil
	})
}

func (s *service) UpdateQuantity(ctx context.Context, ownerID, packID, itemID string, delta int) error {
	if delta == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity delta cannot be zero")
	}
	return s.mutate(ctx, ownerID, func(state *State) error {
		if !state.UpdateQuantity(itemID, packID, delta) {
			s.logMiss(ctx, "item", itemID)
		}
		return nil
	})
}

func (s *service) SetDeliveryFee(ctx context.Context, ownerID string, amount int) error {
	if amount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery fee cannot be negative")
	}
	return s.mutate(ctx, ownerID, func(state *State) error {
		state.DeliveryFee = amount
		return nil
	})
}

func (s *service) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()
	if err := s.store.Clear(ctx, ownerID); err != nil {
		return err
	}
	s.logg.Info(ctx, "cart cleared")
	return nil
}
