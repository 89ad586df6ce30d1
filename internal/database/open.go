package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

// Options describes how to open a database session.
type Options struct {
	// Driver is "mysql" or "sqlite3".
	Driver string

	Host     string
	Port     int
	Username string
	Password string
	Database string

	// Path is the SQLite file, ":memory:" for an in-memory database.
	Path string

	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetime   time.Duration
	ConnMaxIdleTime   time.Duration
	ConnectionTimeout time.Duration

	// MaxStatementsPerSecond throttles statements when > 0.
	MaxStatementsPerSecond int
}

const defaultConnectionTimeout = 10 * time.Second

// Open opens a session for opts.Driver, wrapping it in a throttle when a
// statement rate is configured.
func Open(ctx context.Context, opts Options) (core.Database, error) {
	if opts.ConnectionTimeout <= 0 {
		opts.ConnectionTimeout = defaultConnectionTimeout
	}

	var (
		db  core.Database
		err error
	)
	switch opts.Driver {
	case "", "mysql":
		db, err = NewMySQLDatabase(ctx, opts)
	case "sqlite3", "sqlite":
		db, err = NewSQLiteDatabase(ctx, opts.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.MaxStatementsPerSecond > 0 {
		log.Printf("[DATABASE] Throttling statements to %d per second", opts.MaxStatementsPerSecond)
		db = NewThrottledDatabase(db, opts.MaxStatementsPerSecond)
	}
	return db, nil
}
