package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
	"github.com/Patrick-Hull/MySQLWrapper/internal/query"
)

// SQLiteMainDatabase is the schema name of the primary SQLite database.
const SQLiteMainDatabase = "main"

// SQLiteDatabase implements core.Database on top of a SQLite file or an
// in-memory database. Database names passed to statements are SQLite schema
// names, "main" for the opened file.
type SQLiteDatabase struct {
	*sqlDatabase
}

// NewSQLiteDatabase opens path (":memory:" for a throwaway database).
// The pool is pinned to one connection so an in-memory database keeps its
// tables for the lifetime of the handle.
func NewSQLiteDatabase(ctx context.Context, path string) (*SQLiteDatabase, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteDatabase{sqlDatabase: &sqlDatabase{db: db, tag: "SQLITE"}}, nil
}

// Driver returns "sqlite3".
func (s *SQLiteDatabase) Driver() string {
	return "sqlite3"
}

// PrimaryKey reads pragma_table_info and returns the first primary key
// column. A table that reports no columns does not exist.
func (s *SQLiteDatabase) PrimaryKey(ctx context.Context, database, table string) (string, error) {
	if _, err := query.QualifiedTable(database, table); err != nil {
		return "", err
	}

	rows, err := s.Query(ctx, "SELECT name, pk FROM pragma_table_info(?, ?) ORDER BY pk", table, database)
	if err != nil {
		return "", fmt.Errorf("failed to query primary key of %s.%s: %w", database, table, err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		found = true
		var name string
		var pk int
		if err := rows.Scan(&name, &pk); err != nil {
			return "", fmt.Errorf("failed to scan table info: %w", err)
		}
		if pk == 1 {
			return name, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating table info: %w", err)
	}

	if !found {
		return "", fmt.Errorf("%w: %s.%s", core.ErrTableNotFound, database, table)
	}
	return "", fmt.Errorf("%w: %s.%s", core.ErrNoPrimaryKey, database, table)
}

// HasAutoIncrement reports whether the table's key is a single INTEGER
// PRIMARY KEY column, the only case where SQLite's rowid is the row's id.
// Other tables still get a rowid, so LastInsertId is non-zero for them too.
func (s *SQLiteDatabase) HasAutoIncrement(ctx context.Context, database, table string) (bool, error) {
	if _, err := query.QualifiedTable(database, table); err != nil {
		return false, err
	}

	rows, err := s.Query(ctx, "SELECT type FROM pragma_table_info(?, ?) WHERE pk > 0", table, database)
	if err != nil {
		return false, fmt.Errorf("failed to query table info of %s.%s: %w", database, table, err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var typ string
		if err := rows.Scan(&typ); err != nil {
			return false, fmt.Errorf("failed to scan table info: %w", err)
		}
		types = append(types, typ)
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("error iterating table info: %w", err)
	}
	return len(types) == 1 && strings.EqualFold(types[0], "INTEGER"), nil
}
