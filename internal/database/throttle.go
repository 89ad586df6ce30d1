package database

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

// ThrottledDatabase limits how many statements per second reach the wrapped
// database. Every Query, Exec and PrimaryKey call takes one token.
type ThrottledDatabase struct {
	core.Database
	limiter *rate.Limiter
}

// NewThrottledDatabase wraps db with a limiter of perSecond tokens per second
// and a burst of one.
func NewThrottledDatabase(db core.Database, perSecond int) *ThrottledDatabase {
	return &ThrottledDatabase{
		Database: db,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (t *ThrottledDatabase) wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("statement throttle: %w", err)
	}
	return nil
}

// Query waits for a token and then runs the query.
func (t *ThrottledDatabase) Query(ctx context.Context, query string, args ...any) (core.Rows, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	return t.Database.Query(ctx, query, args...)
}

// Exec waits for a token and then runs the statement.
func (t *ThrottledDatabase) Exec(ctx context.Context, query string, args ...any) (core.Result, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	return t.Database.Exec(ctx, query, args...)
}

// PrimaryKey waits for a token and then runs the key probe.
func (t *ThrottledDatabase) PrimaryKey(ctx context.Context, database, table string) (string, error) {
	if err := t.wait(ctx); err != nil {
		return "", err
	}
	return t.Database.PrimaryKey(ctx, database, table)
}

// HasAutoIncrement forwards to the wrapped database when it reports
// autoincrement keys itself. Otherwise LastInsertId is trusted.
func (t *ThrottledDatabase) HasAutoIncrement(ctx context.Context, database, table string) (bool, error) {
	reporter, ok := t.Database.(core.AutoIncrementReporter)
	if !ok {
		return true, nil
	}
	if err := t.wait(ctx); err != nil {
		return false, err
	}
	return reporter.HasAutoIncrement(ctx, database, table)
}
