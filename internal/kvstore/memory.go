package kvstore

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

// memoryEntry carries a per-key deadline; sturdyc's own TTL is global to the
// client and acts as an upper bound.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryKVStore implements core.KVStore in-process on top of a sturdyc
// client. It is meant for single-process deployments, local runs and tests.
type MemoryKVStore struct {
	mu     sync.RWMutex
	client *sturdyc.Client[memoryEntry]
	closed bool
	now    func() time.Time
}

// MemoryOptions configures the sturdyc client behind a MemoryKVStore.
type MemoryOptions struct {
	Capacity           int
	NumShards          int
	MaxTTL             time.Duration
	EvictionPercentage int
}

// DefaultMemoryOptions returns options suitable for tests and small caches.
func DefaultMemoryOptions() MemoryOptions {
	return MemoryOptions{
		Capacity:           10000,
		NumShards:          10,
		MaxTTL:             24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// NewMemoryKVStore creates an in-process KV store.
func NewMemoryKVStore(opts MemoryOptions) (*MemoryKVStore, error) {
	if err := validateMemoryOptions(opts); err != nil {
		return nil, err
	}
	return &MemoryKVStore{
		client: sturdyc.New[memoryEntry](opts.Capacity, opts.NumShards, opts.MaxTTL, opts.EvictionPercentage),
		now:    time.Now,
	}, nil
}

func validateMemoryOptions(opts MemoryOptions) error {
	if opts.Capacity <= 0 {
		return fmt.Errorf("capacity must be greater than 0, got: %d", opts.Capacity)
	}
	if opts.NumShards <= 0 || opts.NumShards > opts.Capacity {
		return fmt.Errorf("num_shards must be between 1 and capacity, got: %d", opts.NumShards)
	}
	if opts.MaxTTL <= 0 {
		return fmt.Errorf("max_ttl must be greater than 0, got: %v", opts.MaxTTL)
	}
	if opts.EvictionPercentage < 0 || opts.EvictionPercentage > 100 {
		return fmt.Errorf("eviction_percentage must be between 0 and 100, got: %d", opts.EvictionPercentage)
	}
	return nil
}

func (m *MemoryKVStore) lookup(key string) (memoryEntry, bool) {
	entry, ok := m.client.Get(key)
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.client.Delete(key)
		return memoryEntry{}, false
	}
	return entry, true
}

// Get retrieves a value by key from the store.
func (m *MemoryKVStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("KV store is closed")
	}

	entry, ok := m.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrKeyNotFound, key)
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a copy of value. A ttl of 0 keeps the entry until the client's
// MaxTTL or eviction removes it.
func (m *MemoryKVStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("KV store is closed")
	}

	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.client.Set(key, entry)
	return nil
}

// Delete removes a key from the store.
func (m *MemoryKVStore) Delete(_ context.Context, key string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("KV store is closed")
	}
	m.client.Delete(key)
	return nil
}

// Exists checks if a live key exists in the store.
func (m *MemoryKVStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, fmt.Errorf("KV store is closed")
	}
	_, ok := m.lookup(key)
	return ok, nil
}

// Close marks the store closed and drops its contents.
func (m *MemoryKVStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	log.Printf("[MEMORY] Closing store, dropping %d entries", m.Size())
	for _, key := range m.client.ScanKeys() {
		m.client.Delete(key)
	}
	return nil
}

// Size returns the number of entries held, including expired ones not yet
// swept.
func (m *MemoryKVStore) Size() int {
	return m.client.Size()
}

// MemoryKVStoreFactory implements the KVStoreFactory interface for the
// in-process store.
type MemoryKVStoreFactory struct{}

// Type returns the type identifier for this factory.
func (f *MemoryKVStoreFactory) Type() string {
	return "memory"
}

// Validate validates the memory-specific configuration.
func (f *MemoryKVStoreFactory) Validate(config KVStoreConfig) error {
	if config.Type != "memory" {
		return fmt.Errorf("invalid type for memory factory: %s", config.Type)
	}
	return validateMemoryOptions(memoryOptionsFrom(config))
}

// Create creates a new in-process KV store.
func (f *MemoryKVStoreFactory) Create(config KVStoreConfig) (core.KVStore, error) {
	return NewMemoryKVStore(memoryOptionsFrom(config))
}

func memoryOptionsFrom(config KVStoreConfig) MemoryOptions {
	return MemoryOptions{
		Capacity:           config.Capacity,
		NumShards:          config.NumShards,
		MaxTTL:             config.MaxTTL,
		EvictionPercentage: config.EvictionPercentage,
	}
}

func init() {
	RegisterFactory(&MemoryKVStoreFactory{})
}
