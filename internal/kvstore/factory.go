package kvstore

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

// KVStoreFactory is the Strategy interface for creating KV store implementations.
// Each backend (Redis, DynamoDB, memory) implements this interface to provide
// its own factory method.
type KVStoreFactory interface {
	// Create creates a new KV store instance based on the provided configuration.
	Create(config KVStoreConfig) (core.KVStore, error)

	// Type returns the type identifier for this factory (e.g., "redis", "dynamodb").
	Type() string

	// Validate validates the configuration specific to this KV store type.
	Validate(config KVStoreConfig) error
}

// KVStoreConfig represents the configuration needed to create a KV store.
type KVStoreConfig struct {
	Type string

	// Redis
	Endpoints    []string
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// DynamoDB
	Region          string
	TableName       string
	Endpoint        string // Optional, for LocalStack
	AccessKeyID     string // Optional, can use IAM role instead
	SecretAccessKey string // Optional, can use IAM role instead

	// Memory
	Capacity           int
	NumShards          int
	MaxTTL             time.Duration
	EvictionPercentage int
}

var (
	// factoryRegistry stores all registered KV store factories.
	factoryRegistry = make(map[string]KVStoreFactory)

	// registryMutex protects the registry from concurrent access.
	registryMutex sync.RWMutex
)

// RegisterFactory registers a KV store factory.
// This is called automatically by each implementation's init() function.
func RegisterFactory(factory KVStoreFactory) {
	if factory == nil {
		panic("factory cannot be nil")
	}
	if factory.Type() == "" {
		panic("factory type cannot be empty")
	}

	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := factoryRegistry[factory.Type()]; exists {
		panic(fmt.Sprintf("factory for type %q is already registered", factory.Type()))
	}

	factoryRegistry[factory.Type()] = factory
}

func lookup(storeType string) (KVStoreFactory, error) {
	if storeType == "" {
		return nil, fmt.Errorf("kvstore type is required")
	}
	if !IsTypeRegistered(storeType) {
		return nil, fmt.Errorf("unsupported KV store type: %s (registered: %s)",
			storeType, strings.Join(GetRegisteredTypes(), ", "))
	}

	registryMutex.RLock()
	defer registryMutex.RUnlock()
	return factoryRegistry[storeType], nil
}

// Validate checks config with the factory registered for config.Type.
func Validate(config KVStoreConfig) error {
	factory, err := lookup(config.Type)
	if err != nil {
		return err
	}
	if err := factory.Validate(config); err != nil {
		return fmt.Errorf("invalid configuration for %s: %w", config.Type, err)
	}
	return nil
}

// Create creates a KV store instance using the appropriate factory based on config.Type.
func Create(config KVStoreConfig) (core.KVStore, error) {
	factory, err := lookup(config.Type)
	if err != nil {
		return nil, err
	}

	if err := factory.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", config.Type, err)
	}

	return factory.Create(config)
}

// GetRegisteredTypes returns the sorted list of registered KV store types.
func GetRegisteredTypes() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	types := make([]string, 0, len(factoryRegistry))
	for t := range factoryRegistry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IsTypeRegistered checks if a KV store type is registered.
func IsTypeRegistered(storeType string) bool {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	_, exists := factoryRegistry[storeType]
	return exists
}
