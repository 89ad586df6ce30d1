package kvstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

func TestRegisteredTypes(t *testing.T) {
	assert.Equal(t, []string{"dynamodb", "memory", "redis"}, GetRegisteredTypes())
	assert.True(t, IsTypeRegistered("redis"))
	assert.False(t, IsTypeRegistered("cassandra"))

	_, err := Create(KVStoreConfig{Type: "cassandra"})
	assert.EqualError(t, err, "unsupported KV store type: cassandra (registered: dynamodb, memory, redis)")
	_, err = Create(KVStoreConfig{})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	redisCfg := KVStoreConfig{
		Type:         "redis",
		Endpoints:    []string{"localhost:6379"},
		PoolSize:     10,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
	assert.NoError(t, Validate(redisCfg))

	bad := redisCfg
	bad.DB = 16
	assert.Error(t, Validate(bad))

	bad = redisCfg
	bad.Endpoints = nil
	assert.Error(t, Validate(bad))

	assert.NoError(t, Validate(KVStoreConfig{Type: "dynamodb", Region: "us-east-1", TableName: "cache"}))
	assert.Error(t, Validate(KVStoreConfig{Type: "dynamodb", Region: "us-east-1"}))
	assert.Error(t, Validate(KVStoreConfig{Type: "dynamodb", Region: "us-east-1", TableName: "cache", AccessKeyID: "only-half"}))

	assert.NoError(t, Validate(KVStoreConfig{Type: "memory", Capacity: 100, NumShards: 4, MaxTTL: time.Minute, EvictionPercentage: 10}))
	assert.Error(t, Validate(KVStoreConfig{Type: "memory", Capacity: 100, NumShards: 0, MaxTTL: time.Minute}))
}

func TestMemoryKVStore(t *testing.T) {
	ctx := context.Background()
	store, err := Create(KVStoreConfig{Type: "memory", Capacity: 100, NumShards: 4, MaxTTL: time.Hour, EvictionPercentage: 10})
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "k", []byte("v1"), 0))
	ok, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	got[0] = 'X'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), again)

	require.NoError(t, store.Delete(ctx, "k"))
	ok, err = store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryKVStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryKVStore(DefaultMemoryOptions())
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	ok, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrKeyNotFound)
}

func TestMemoryKVStore_Closed(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryKVStore(DefaultMemoryOptions())
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	assert.Equal(t, 0, store.Size())
	_, err = store.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, store.Set(ctx, "k", nil, 0))
}

type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func keyOf(key map[string]types.AttributeValue) string {
	return key["key"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoDBKVStore(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	store := NewDynamoDBKVStoreFromClient(fake, "cache")

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "k", []byte("payload"), 10*time.Minute))
	ttl := fake.items["k"]["ttl"].(*types.AttributeValueMemberN).Value
	assert.Equal(t, "1767269400", ttl)

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	now = now.Add(11 * time.Minute)
	ok, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("payload"), 0))
	ok, err = store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrKeyNotFound)
}

func TestRedisKVStore_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	store := NewRedisKVStoreFromClient(client)
	defer store.Close()

	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrKeyNotFound)

	_, err = store.Exists(context.Background(), "k")
	assert.Error(t, err)

	_, err = NewRedisKVStore(RedisOptions{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	assert.Error(t, err)
}
