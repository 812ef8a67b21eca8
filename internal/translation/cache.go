package translation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"shopfront/internal/storage"

	"go.uber.org/zap"
)

const cacheStorageKey = "translations"

type cacheKey struct {
	Text       string
	SourceLang string
	TargetLang string
}

// snapshotEntry is the durable form of one memoized translation.
type snapshotEntry struct {
	Text       string `json:"text"`
	SourceLang string `json:"source"`
	TargetLang string `json:"target"`
	Translated string `json:"translated"`
}

// Cache memoizes translated strings by the exact (text, source, target)
// triple. No normalization is applied: this is a pure memoization layer,
// not a semantic cache. Every write is mirrored to durable storage so a
// crash loses at most the most recent entry. A written key is never
// overwritten with a different value.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string
	kv      storage.KV
	logger  *zap.Logger
}

// NewCache creates an empty translation cache mirrored into the given KV
// store. Call Load once at startup to restore the durable snapshot.
func NewCache(kv storage.KV, logger *zap.Logger) *Cache {
	return &Cache{
		entries: make(map[cacheKey]string),
		kv:      kv,
		logger:  logger,
	}
}

// Load populates the in-memory map from the durable snapshot. Absent or
// malformed snapshots yield an empty cache, never an error.
func (c *Cache) Load(ctx context.Context) {
	data, err := c.kv.Load(ctx, cacheStorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("Failed to load translation cache, starting empty", zap.Error(err))
		}
		return
	}

	var snapshot []snapshotEntry
	if err := json.Unmarshal(data, &snapshot); err != nil {
		c.logger.Warn("Malformed translation cache snapshot, starting empty", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range snapshot {
		c.entries[cacheKey{e.Text, e.SourceLang, e.TargetLang}] = e.Translated
	}
}

// Get looks up a memoized translation.
func (c *Cache) Get(text, sourceLang, targetLang string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[cacheKey{text, sourceLang, targetLang}]
	return v, ok
}

// Put memoizes one translation and mirrors the full snapshot to durable
// storage. The first write for a key wins; later writes with a different
// value are ignored.
func (c *Cache) Put(ctx context.Context, text, sourceLang, targetLang, translated string) {
	key := cacheKey{text, sourceLang, targetLang}

	c.mu.Lock()
	if _, exists := c.entries[key]; exists {
		c.mu.Unlock()
		return
	}
	c.entries[key] = translated
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.mirror(ctx, snapshot)
}

// Clear empties both the in-memory map and the durable snapshot. This is
// the only way entries are ever removed.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.entries = make(map[cacheKey]string)
	c.mu.Unlock()

	if err := c.kv.Delete(ctx, cacheStorageKey); err != nil {
		c.logger.Error("Failed to clear durable translation cache", zap.Error(err))
	}
}

// Size returns the number of memoized entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) snapshotLocked() []snapshotEntry {
	snapshot := make([]snapshotEntry, 0, len(c.entries))
	for k, v := range c.entries {
		snapshot = append(snapshot, snapshotEntry{
			Text:       k.Text,
			SourceLang: k.SourceLang,
			TargetLang: k.TargetLang,
			Translated: v,
		})
	}
	return snapshot
}

func (c *Cache) mirror(ctx context.Context, snapshot []snapshotEntry) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Error("Failed to encode translation cache snapshot", zap.Error(err))
		return
	}
	if err := c.kv.Save(ctx, cacheStorageKey, data); err != nil {
		// The in-memory entry stays valid for the session.
		c.logger.Error("Failed to persist translation cache snapshot", zap.Error(err))
	}
}
