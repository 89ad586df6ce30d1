package mysqlwrapper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Patrick-Hull/MySQLWrapper/internal/database"
	"github.com/Patrick-Hull/MySQLWrapper/internal/events"
	"github.com/Patrick-Hull/MySQLWrapper/internal/kvstore"
)

// Client holds a connection handle, an optional cache store and an
// optional publisher, and hands out executors wired to them.
//
// Typical usage:
//
//	client, _ := mysqlwrapper.NewClient(ctx, config)
//	defer client.Close()
//
//	sel := client.Select()
//	sel.Table = "users"
//	sel.Cache = true
//	res, err := sel.Execute(ctx)
type Client struct {
	db        Database
	store     CacheStore
	publisher Publisher

	namespace       string
	cacheTTL        time.Duration
	defaultDatabase string

	// owned resources are closed by Close
	ownsDB, ownsStore, ownsPublisher bool
}

// Option configures a Client.
type Option func(*Client)

// WithCacheStore sets the store used by selects with Cache set.
func WithCacheStore(store CacheStore) Option {
	return func(c *Client) {
		c.store = store
		c.ownsStore = false
	}
}

// WithPublisher sets the publisher used by writes.
func WithPublisher(p Publisher) Option {
	return func(c *Client) {
		c.publisher = p
		c.ownsPublisher = false
	}
}

// WithNamespace sets the cache key prefix.
func WithNamespace(namespace string) Option {
	return func(c *Client) {
		c.namespace = namespace
	}
}

// WithCacheTTL sets the CacheDuration of new selects.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithDefaultDatabase sets the Database field of new executors.
func WithDefaultDatabase(name string) Option {
	return func(c *Client) {
		c.defaultDatabase = name
	}
}

// NewClient connects the database and builds the cache store and the
// publisher named by config. Options override what config built.
func NewClient(ctx context.Context, config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, validationError("Invalid configuration", err)
	}

	db, err := Connect(ctx, config.Database)
	if err != nil {
		return nil, err
	}

	c := &Client{
		db:              db,
		namespace:       config.Cache.Namespace,
		cacheTTL:        config.Cache.DefaultTTL,
		defaultDatabase: config.Database.Database,
		ownsDB:          true,
	}
	if c.defaultDatabase == "" && db.Driver() == "sqlite3" {
		c.defaultDatabase = database.SQLiteMainDatabase
	}

	if config.Cache.Enabled {
		store, err := kvstore.Create(config.kvStoreConfig())
		if err != nil {
			_ = db.Close()
			return nil, &Error{Kind: KindCache, Message: "Unable to connect to cache store", Err: err}
		}
		log.Printf("[CLIENT] Cache store %q enabled (namespace: %s, ttl: %v)",
			config.Cache.Type, c.namespace, c.cacheTTL)
		c.store, c.ownsStore = store, true
	}

	publisher, err := events.New(config.eventsConfig())
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}
	if publisher != nil {
		log.Printf("[CLIENT] Publishing mutation events via %s", config.Events.Type)
		c.publisher, c.ownsPublisher = publisher, true
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Wrap builds a Client around an existing handle. Close does not close db.
func Wrap(db Database, opts ...Option) *Client {
	c := &Client{db: db, cacheTTL: DefaultCacheDuration}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DB returns the connection handle.
func (c *Client) DB() Database {
	return c.db
}

// Store returns the cache store, nil when caching is not configured.
func (c *Client) Store() CacheStore {
	return c.store
}

// Publisher returns the publisher, nil when events are not configured.
func (c *Client) Publisher() Publisher {
	return c.publisher
}

// DefaultDatabase returns the schema new executors start with.
func (c *Client) DefaultDatabase() string {
	return c.defaultDatabase
}

// Select returns a SelectQuery wired to the client.
func (c *Client) Select() *SelectQuery {
	return &SelectQuery{
		Conn:          c.db,
		Store:         c.store,
		Namespace:     c.namespace,
		Database:      c.defaultDatabase,
		CacheDuration: c.cacheTTL,
	}
}

// Insert returns an InsertQuery wired to the client.
func (c *Client) Insert() *InsertQuery {
	return &InsertQuery{Conn: c.db, Publisher: c.publisher, Database: c.defaultDatabase}
}

// Update returns an UpdateQuery wired to the client.
func (c *Client) Update() *UpdateQuery {
	return &UpdateQuery{Conn: c.db, Publisher: c.publisher, Database: c.defaultDatabase}
}

// Delete returns a DeleteQuery wired to the client.
func (c *Client) Delete() *DeleteQuery {
	return &DeleteQuery{Conn: c.db, Publisher: c.publisher, Database: c.defaultDatabase}
}

// Close releases what the client created. Handles passed in through Wrap
// or options stay open.
func (c *Client) Close() error {
	var errs []error
	if c.ownsPublisher && c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
		}
	}
	if c.ownsStore && c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache store: %w", err))
		}
	}
	if c.ownsDB && c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
