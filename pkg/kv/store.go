// Package kv holds the durable key-value layer every local store persists
// through, plus the coalescing Writer used for fire-and-forget saves.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written or was removed.
var ErrNotFound = errors.New("kv: key not found")

// Store is the device-local key-value contract. Values are serialized JSON
// documents owned by the caller. Every operation may fail.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Clear wipes every key written under the store's namespace.
	Clear(ctx context.Context) error
}
