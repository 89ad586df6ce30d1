package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

// sqlDatabase holds what every database/sql backed implementation shares.
type sqlDatabase struct {
	db     *sql.DB
	tag    string
	closed bool
}

// Query executes a SELECT query and returns rows.
func (s *sqlDatabase) Query(ctx context.Context, query string, args ...any) (core.Rows, error) {
	if s.closed {
		return nil, fmt.Errorf("database is closed")
	}
	log.Printf("[%s] Executing query: %s with args: %v", s.tag, query, args)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("[%s] ERROR: Query failed: %v", s.tag, err)
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &sqlRows{rows: rows}, nil
}

// Exec executes a non-query statement and returns a result.
func (s *sqlDatabase) Exec(ctx context.Context, query string, args ...any) (core.Result, error) {
	if s.closed {
		return nil, fmt.Errorf("database is closed")
	}
	log.Printf("[%s] Executing statement: %s with args: %v", s.tag, query, args)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Printf("[%s] ERROR: Exec failed: %v", s.tag, err)
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	log.Printf("[%s] Statement executed successfully (rows affected: %d)", s.tag, rowsAffected)
	return result, nil
}

// Close closes the database connection.
func (s *sqlDatabase) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// sqlRows wraps sql.Rows to implement core.Rows.
type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool {
	return r.rows.Next()
}

func (r *sqlRows) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

func (r *sqlRows) Columns() ([]string, error) {
	return r.rows.Columns()
}

func (r *sqlRows) Close() error {
	return r.rows.Close()
}

func (r *sqlRows) Err() error {
	return r.rows.Err()
}

// ScanMap reads the current row into a column -> value map. Values are
// passed through NormalizeValue so results survive JSON and cache round
// trips unchanged.
func ScanMap(rows core.Rows, columns []string) (map[string]any, error) {
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	row := make(map[string]any, len(columns))
	for i, col := range columns {
		row[col] = NormalizeValue(values[i])
	}
	return row, nil
}

// NormalizeValue maps a driver value to the form it takes after a msgpack
// round trip: byte slices become strings, float32 becomes the float64 with
// the same shortest decimal text, and times are moved to UTC.
func NormalizeValue(v any) any {
	switch v := v.(type) {
	case []byte:
		return string(v)
	case float32:
		f, err := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'g', -1, 32), 64)
		if err != nil {
			return float64(v)
		}
		return f
	case time.Time:
		return v.UTC()
	}
	return v
}
