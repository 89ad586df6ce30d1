package core

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by KVStore.Get when the key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// KVStore defines the capability the select result cache needs from a
// key-value backend. Implementations wrap Redis, DynamoDB or an in-process
// cache and are owned by the caller, never by a query executor.
type KVStore interface {
	// Get retrieves a value by key from the store.
	// Returns an error wrapping ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a key-value pair with an optional TTL.
	// If ttl is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the store.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in the store.
	Exists(ctx context.Context, key string) (bool, error)

	// Close closes the connection to the KV store and releases resources.
	Close() error
}
