package cart

import (
	"context"
	"sync"

	"shopfront/internal/storage"

	"go.uber.org/zap"
)

const storageKeyPrefix = "cart:"

// Manager hands out one Store per shopper session, restoring each from
// durable storage on first use. Stores are kept for the process lifetime
// so every surface of a session observes the same authoritative state.
type Manager struct {
	mu     sync.Mutex
	kv     storage.KV
	logger *zap.Logger
	stores map[string]*Store
}

// NewManager creates a session cart manager backed by the given KV store
func NewManager(kv storage.KV, logger *zap.Logger) *Manager {
	return &Manager{
		kv:     kv,
		logger: logger,
		stores: make(map[string]*Store),
	}
}

// Store returns the cart store for a session, creating and restoring it
// on first use.
func (m *Manager) Store(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[sessionID]; ok {
		return s
	}
	s := NewStore(ctx, m.kv, storageKeyPrefix+sessionID, m.logger)
	m.stores[sessionID] = s
	return s
}
