package mysqlwrapper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

type spyStatement struct {
	SQL  string
	Args []any
}

// spyDB records every statement and answers with canned values.
type spyDB struct {
	mu         sync.Mutex
	statements []spyStatement
	pk         string
	pkErr      error
	execErr    error
	affected   int64
	insertID   int64
}

func (s *spyDB) record(q string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements = append(s.statements, spyStatement{SQL: q, Args: args})
}

func (s *spyDB) Query(_ context.Context, q string, args ...any) (core.Rows, error) {
	s.record(q, args)
	return emptyRows{}, nil
}

func (s *spyDB) Exec(_ context.Context, q string, args ...any) (core.Result, error) {
	s.record(q, args)
	if s.execErr != nil {
		return nil, s.execErr
	}
	return spyResult{affected: s.affected, insertID: s.insertID}, nil
}

func (s *spyDB) PrimaryKey(context.Context, string, string) (string, error) {
	if s.pkErr != nil {
		return "", s.pkErr
	}
	if s.pk == "" {
		return "id", nil
	}
	return s.pk, nil
}

func (s *spyDB) Driver() string { return "spy" }
func (s *spyDB) Close() error   { return nil }

type spyResult struct {
	affected int64
	insertID int64
}

func (r spyResult) LastInsertId() (int64, error) { return r.insertID, nil }
func (r spyResult) RowsAffected() (int64, error) { return r.affected, nil }

type emptyRows struct{}

func (emptyRows) Next() bool                 { return false }
func (emptyRows) Scan(...any) error          { return errors.New("no rows") }
func (emptyRows) Columns() ([]string, error) { return []string{"id"}, nil }
func (emptyRows) Close() error               { return nil }
func (emptyRows) Err() error                 { return nil }

// countingDB counts Query calls made through a real handle.
type countingDB struct {
	core.Database
	queries int
}

func (c *countingDB) Query(ctx context.Context, q string, args ...any) (core.Rows, error) {
	c.queries++
	return c.Database.Query(ctx, q, args...)
}

// brokenStore fails every call it is configured to fail.
type brokenStore struct {
	failRead bool
	failSet  bool
	sets     int
}

var errStoreDown = errors.New("store down")

func (b *brokenStore) Get(context.Context, string) ([]byte, error) {
	if b.failRead {
		return nil, errStoreDown
	}
	return nil, core.ErrKeyNotFound
}

func (b *brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	b.sets++
	if b.failSet {
		return errStoreDown
	}
	return nil
}

func (b *brokenStore) Delete(context.Context, string) error {
	if b.failRead {
		return errStoreDown
	}
	return nil
}

func (b *brokenStore) Exists(context.Context, string) (bool, error) {
	if b.failRead {
		return false, errStoreDown
	}
	return false, nil
}

func (b *brokenStore) Close() error { return nil }

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, *core.MutationEvent) error {
	f.calls++
	return errors.New("broker down")
}

func (f *failingPublisher) Close() error { return nil }

// openUsers returns an in-memory SQLite handle with a users table.
func openUsers(t *testing.T) Database {
	t.Helper()
	ctx := context.Background()

	db, err := Connect(ctx, DatabaseConfig{Driver: "sqlite3", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(ctx, `CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		age TEXT
	)`)
	require.NoError(t, err)
	return db
}

func insertUser(t *testing.T, db Database, data Fields) *InsertResult {
	t.Helper()
	ins := NewInsertQuery(db)
	ins.Database = "main"
	ins.Table = "users"
	ins.Data = data
	res, err := ins.Execute(context.Background())
	require.NoError(t, err)
	return res
}
