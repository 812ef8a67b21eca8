package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// KV is the durable key-value persistence used by the cart store and the
// translation cache: string keys, JSON payloads, full rewrite per save.
// Implementations must treat an absent key as ErrNotFound, never as a
// fatal condition.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
