package mysqlwrapper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
	"github.com/Patrick-Hull/MySQLWrapper/internal/database"
	"github.com/Patrick-Hull/MySQLWrapper/internal/query"
)

// Row is one selected row. Key is the primary key value, or the zero-based
// position in datatable mode.
type Row struct {
	Key    any            `msgpack:"key"`
	Values map[string]any `msgpack:"values"`
}

// SelectResult is the success variant of SelectQuery.Execute.
type SelectResult struct {
	Message string
	Rows    []Row
	Count   int

	// Cached is set when the rows were served from the cache store.
	Cached bool

	// CacheCreated is set when a fresh result was written to the cache store.
	CacheCreated bool

	// CacheWarning describes a cache failure the call degraded past. CacheErr
	// holds the same failure as an *Error of KindCache.
	CacheWarning string
	CacheErr     error

	Statement string
}

// Data returns the rows keyed by the textual form of Row.Key. A later row
// with a duplicate key replaces an earlier one.
func (r *SelectResult) Data() map[string]map[string]any {
	data := make(map[string]map[string]any, len(r.Rows))
	for _, row := range r.Rows {
		data[fmt.Sprint(row.Key)] = row.Values
	}
	return data
}

// SelectQuery reads rows from one table, optionally through a cache store.
type SelectQuery struct {
	Conn Database

	// Store is required when Cache is set.
	Store CacheStore

	// Namespace prefixes cache keys.
	Namespace string

	Database string
	Table    string

	// Columns is the projection. Empty selects "*".
	Columns  []string
	Criteria Fields

	// Match selects exact or LIKE comparison for every criteria entry.
	Match Match

	// MatchAny joins criteria with OR instead of AND.
	MatchAny bool

	OrderBy *Order

	// Limit caps the number of rows. Zero means no limit.
	Limit int

	Cache      bool
	ClearCache bool

	// CacheDuration is the TTL of a stored result. Zero means DefaultCacheDuration.
	CacheDuration time.Duration

	// Datatable keys rows by position instead of by primary key. The table
	// must still have a primary key.
	Datatable bool
}

// NewSelectQuery returns a SelectQuery borrowing conn.
func NewSelectQuery(conn Database) *SelectQuery {
	return &SelectQuery{Conn: conn}
}

// Execute builds the statement, probes the primary key, then serves the
// result from the cache or runs the statement. Cache store failures are
// reported in CacheWarning and never fail the call.
func (q *SelectQuery) Execute(ctx context.Context) (*SelectResult, error) {
	if err := checkTarget(q.Conn, q.Database, q.Table); err != nil {
		return nil, err
	}
	if q.Cache && q.Store == nil {
		return nil, validationError("Cache requested without a cache store", ErrCacheUnavailable)
	}

	join := query.JoinAnd
	if q.MatchAny {
		join = query.JoinOr
	}
	stmt, err := query.Select(query.SelectSpec{
		Database: q.Database,
		Table:    q.Table,
		Columns:  q.Columns,
		Criteria: q.Criteria,
		Join:     join,
		Match:    q.Match,
		OrderBy:  q.OrderBy,
		Limit:    q.Limit,
	})
	if err != nil {
		return nil, buildError(err)
	}

	pk, err := q.Conn.PrimaryKey(ctx, q.Database, q.Table)
	if err != nil {
		return nil, primaryKeyError(q.Database, q.Table, err)
	}
	if !q.Datatable && len(q.Columns) > 0 && !slices.ContainsFunc(q.Columns, func(c string) bool { return strings.EqualFold(c, pk) }) {
		return nil, schemaError(fmt.Sprintf("Primary key %s must be selected", pk), ErrPrimaryKeyNotSelected)
	}

	var (
		key      string
		cacheErr error
	)
	if q.Cache {
		key = q.cacheKey(stmt)
		cached, err := lookupCache(ctx, q.Store, key, q.ClearCache)
		if err != nil {
			log.Printf("[SELECT] WARNING: Cache lookup for %s failed, executing live: %v", key, err)
			cacheErr = err
		} else if cached != nil {
			log.Printf("[SELECT] Cache hit for %s.%s (key: %s)", q.Database, q.Table, key)
			return cached, nil
		}
	}

	result, serr := q.run(ctx, stmt, pk)
	if serr != nil {
		return nil, serr
	}

	// A failed lookup means the store is unhealthy, so no write is attempted.
	if q.Cache && cacheErr == nil && result.Count > 0 {
		if err := storeCache(ctx, q.Store, key, result, q.ttl()); err != nil {
			log.Printf("[SELECT] WARNING: Failed to cache result under %s: %v", key, err)
			cacheErr = err
		} else {
			result.CacheCreated = true
		}
	}
	if cacheErr != nil {
		result.CacheWarning = cacheErr.Error()
		result.CacheErr = &Error{Kind: KindCache, Message: "Cache unavailable", Statement: stmt.SQL, Err: cacheErr}
	}
	return result, nil
}

func (q *SelectQuery) run(ctx context.Context, stmt query.Statement, pk string) (*SelectResult, *Error) {
	rows, err := q.Conn.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, statementError("Error Executing Statement", stmt, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, statementError("Error Executing Statement", stmt, err)
	}

	result := &SelectResult{Statement: stmt.SQL}
	for rows.Next() {
		values, err := database.ScanMap(rows, columns)
		if err != nil {
			return nil, statementError("Error Executing Statement", stmt, err)
		}

		var key any = len(result.Rows)
		if !q.Datatable {
			v, ok := columnValue(values, pk)
			if !ok {
				return nil, schemaError(fmt.Sprintf("Primary key %s must be selected", pk), ErrPrimaryKeyNotSelected)
			}
			key = v
		}
		result.Rows = append(result.Rows, Row{Key: key, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, statementError("Error Executing Statement", stmt, err)
	}

	result.Count = len(result.Rows)
	if result.Count == 0 {
		result.Rows = []Row{}
		result.Message = "No Data Exists for Table"
	} else {
		result.Message = "Data Retrieved Successfully"
	}
	return result, nil
}

// columnValue looks column up the way the backends compare column names,
// ignoring case. The driver reports names as written in the projection.
func columnValue(values map[string]any, column string) (any, bool) {
	if v, ok := values[column]; ok {
		return v, true
	}
	for name, v := range values {
		if strings.EqualFold(name, column) {
			return v, true
		}
	}
	return nil, false
}

// cacheKey fingerprints the statement and criteria. Match mode and
// datatable mode change the result without always changing the SQL, so
// they take part as well.
func (q *SelectQuery) cacheKey(stmt query.Statement) string {
	extra := []string{"match=" + q.Match.String()}
	if q.Datatable {
		extra = append(extra, "datatable")
	}
	fp := query.Fingerprint(stmt.SQL, q.Criteria, extra...)
	return query.NewKeyBuilder(q.Namespace).BuildKey(q.Database, q.Table, fp)
}

func (q *SelectQuery) ttl() time.Duration {
	if q.CacheDuration > 0 {
		return q.CacheDuration
	}
	return DefaultCacheDuration
}

func primaryKeyError(db, table string, err error) *Error {
	switch {
	case errors.Is(err, core.ErrTableNotFound):
		return schemaError("Table does not exist", err)
	case errors.Is(err, core.ErrNoPrimaryKey):
		return schemaError(fmt.Sprintf("Table %s.%s has no primary key", db, table), err)
	default:
		return &Error{
			Kind:    KindStatement,
			Message: fmt.Sprintf("Error finding Primary Key of %s.%s", db, table),
			Code:    database.ErrorCode(err),
			Err:     err,
		}
	}
}
