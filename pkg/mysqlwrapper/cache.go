package mysqlwrapper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
	"github.com/Patrick-Hull/MySQLWrapper/internal/database"
)

// DefaultCacheDuration is used when SelectQuery.CacheDuration is zero.
const DefaultCacheDuration = 600 * time.Second

// cachedResult is the stored form of a SelectResult. Cache flags are not
// stored; they describe how one call was served.
type cachedResult struct {
	Message   string `msgpack:"message"`
	Rows      []Row  `msgpack:"rows"`
	Count     int    `msgpack:"count"`
	Statement string `msgpack:"statement"`
}

func encodeResult(r *SelectResult) ([]byte, error) {
	data, err := msgpack.Marshal(&cachedResult{
		Message:   r.Message,
		Rows:      r.Rows,
		Count:     r.Count,
		Statement: r.Statement,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return data, nil
}

func decodeResult(data []byte) (*SelectResult, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)

	var c cachedResult
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	// msgpack restores times in the local zone
	for i := range c.Rows {
		c.Rows[i].Key = database.NormalizeValue(c.Rows[i].Key)
		for col, v := range c.Rows[i].Values {
			c.Rows[i].Values[col] = database.NormalizeValue(v)
		}
	}
	return &SelectResult{
		Message:   c.Message,
		Rows:      c.Rows,
		Count:     c.Count,
		Statement: c.Statement,
	}, nil
}

// lookupCache returns the stored result for key, or nil on a miss. The
// returned error is a cache failure the caller degrades on.
func lookupCache(ctx context.Context, store CacheStore, key string, clear bool) (*SelectResult, error) {
	if clear {
		if err := store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("unable to delete key: %w", err)
		}
		log.Printf("[SELECT] Cleared cache key %s", key)
	}

	exists, err := store.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("unable to search for key: %w", err)
	}
	if !exists {
		return nil, nil
	}

	data, err := store.Get(ctx, key)
	if errors.Is(err, core.ErrKeyNotFound) {
		// expired between Exists and Get
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read key: %w", err)
	}

	result, err := decodeResult(data)
	if err != nil {
		return nil, err
	}
	result.Cached = true
	return result, nil
}

func storeCache(ctx context.Context, store CacheStore, key string, result *SelectResult, ttl time.Duration) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("error setting cached data: %w", err)
	}
	return nil
}
