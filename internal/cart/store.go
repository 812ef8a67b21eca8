package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"shopfront/internal/domain"
	"shopfront/internal/storage"

	"go.uber.org/zap"
)

// Store is the single source of truth for one shopper's cart. All
// mutations go through its transition methods; each transition recomputes
// the derived totals, persists a full snapshot and notifies subscribers.
// The in-memory state stays authoritative even when persistence fails.
type Store struct {
	mu     sync.Mutex
	state  domain.CartState
	kv     storage.KV
	key    string
	logger *zap.Logger
	subs   []func(domain.CartState)
}

// NewStore creates a cart store persisting under the given storage key and
// restores any previously saved snapshot. A malformed or absent snapshot
// yields an empty cart, never an error.
func NewStore(ctx context.Context, kv storage.KV, key string, logger *zap.Logger) *Store {
	s := &Store{
		kv:     kv,
		key:    key,
		logger: logger,
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	data, err := s.kv.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to load cart snapshot, starting empty",
				zap.String("key", s.key), zap.Error(err))
		}
		return
	}

	var state domain.CartState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("Malformed cart snapshot, starting empty",
			zap.String("key", s.key), zap.Error(err))
		return
	}

	// Totals are derived; recompute rather than trusting the snapshot.
	recompute(&state)
	s.state = state
}

// State returns a deep copy of the current cart state.
func (s *Store) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers a callback invoked with a copy of the new state
// after every transition. Callbacks run outside the store lock.
func (s *Store) Subscribe(fn func(domain.CartState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// AddItem increments the quantity of an existing line with the same
// product ID, or appends a new line with quantity 1. Stock checks are the
// caller's responsibility; AddItem always succeeds.
func (s *Store) AddItem(ctx context.Context, item domain.CartItem) {
	s.transition(ctx, func(state *domain.CartState) {
		for i := range state.Items {
			if state.Items[i].ProductID == item.ProductID {
				state.Items[i].Quantity++
				return
			}
		}
		item.Quantity = 1
		state.Items = append(state.Items, item)
	})
}

// RemoveItem deletes the line with the given product ID. Absent IDs are a
// no-op.
func (s *Store) RemoveItem(ctx context.Context, productID int64) {
	s.transition(ctx, func(state *domain.CartState) {
		for i := range state.Items {
			if state.Items[i].ProductID == productID {
				state.Items = append(state.Items[:i], state.Items[i+1:]...)
				return
			}
		}
	})
}

// UpdateQuantity sets (not increments) the quantity of the line with the
// given product ID. A quantity <= 0 removes the line; absent IDs are a
// no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID)
		return
	}
	s.transition(ctx, func(state *domain.CartState) {
		for i := range state.Items {
			if state.Items[i].ProductID == productID {
				state.Items[i].Quantity = quantity
				return
			}
		}
	})
}

// Clear resets the cart to the empty state.
func (s *Store) Clear(ctx context.Context) {
	s.transition(ctx, func(state *domain.CartState) {
		state.Items = nil
	})
}

// transition applies one atomic mutation: recompute derived fields and
// persist while holding the lock, then notify with a detached copy.
// Persisting under the lock keeps snapshot writes in transition order, so
// the durable state never lags behind an older write that lost a race.
func (s *Store) transition(ctx context.Context, mutate func(*domain.CartState)) {
	s.mu.Lock()
	mutate(&s.state)
	recompute(&s.state)
	snapshot := s.state.Clone()
	subs := s.subs
	s.persist(ctx, snapshot)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *Store) persist(ctx context.Context, state domain.CartState) {
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Error("Failed to encode cart snapshot", zap.String("key", s.key), zap.Error(err))
		return
	}
	if err := s.kv.Save(ctx, s.key, data); err != nil {
		// In-memory state remains authoritative for the session.
		s.logger.Error("Failed to persist cart snapshot", zap.String("key", s.key), zap.Error(err))
	}
}

func recompute(state *domain.CartState) {
	var total int64
	count := 0
	for _, it := range state.Items {
		total += it.UnitPrice * int64(it.Quantity)
		count += it.Quantity
	}
	state.Total = total
	state.ItemCount = count
}
