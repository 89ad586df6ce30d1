package core

import (
	"context"
	"errors"
)

var (
	// ErrTableNotFound is returned by Database.PrimaryKey when the table is missing.
	ErrTableNotFound = errors.New("table does not exist")

	// ErrNoPrimaryKey is returned by Database.PrimaryKey when the table exists
	// but declares no primary key.
	ErrNoPrimaryKey = errors.New("table has no primary key")
)

// Database is a single borrowed session against a relational backend.
// It is not safe for concurrent use unless the implementation says otherwise.
type Database interface {
	// Query executes a statement that returns rows.
	Query(ctx context.Context, query string, args ...any) (Rows, error)

	// Exec executes a statement that returns no rows.
	Exec(ctx context.Context, query string, args ...any) (Result, error)

	// PrimaryKey returns the first column of the table's primary key.
	PrimaryKey(ctx context.Context, database, table string) (string, error)

	// Driver returns the name of the underlying driver ("mysql", "sqlite3").
	Driver() string

	// Close releases the session.
	Close() error
}

// AutoIncrementReporter is implemented by backends whose LastInsertId is
// set for every insert, whether or not the table has an autoincrement key.
type AutoIncrementReporter interface {
	// HasAutoIncrement reports whether inserts into the table are assigned
	// an autoincrement id.
	HasAutoIncrement(ctx context.Context, database, table string) (bool, error)
}

// Rows is the cursor returned by Database.Query.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Close() error
	Err() error
}

// Result is the outcome of Database.Exec.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}
