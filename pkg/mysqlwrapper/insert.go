package mysqlwrapper

import (
	"context"
	"log"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
	"github.com/Patrick-Hull/MySQLWrapper/internal/query"
)

// InsertResult is the success variant of InsertQuery.Execute.
type InsertResult struct {
	Message string

	// InsertID is the autoincrement id assigned by the backend. It is only
	// meaningful when HasInsertID is true, which needs a non-zero id and, on
	// SQLite, a single INTEGER PRIMARY KEY column.
	InsertID    int64
	HasInsertID bool

	Statement string
}

// InsertQuery inserts one row built from Data. Fields may be changed
// between calls to Execute.
type InsertQuery struct {
	Conn      Database
	Publisher Publisher

	Database string
	Table    string
	Data     Fields
}

// NewInsertQuery returns an InsertQuery borrowing conn.
func NewInsertQuery(conn Database) *InsertQuery {
	return &InsertQuery{Conn: conn}
}

// Execute runs INSERT INTO db.table (cols...) VALUES (?...).
func (q *InsertQuery) Execute(ctx context.Context) (*InsertResult, error) {
	if err := checkTarget(q.Conn, q.Database, q.Table); err != nil {
		return nil, err
	}
	if len(q.Data) == 0 {
		return nil, validationError("Data must be presented for an Insert Statement", ErrDataRequired)
	}

	stmt, err := query.Insert(q.Database, q.Table, q.Data)
	if err != nil {
		return nil, buildError(err)
	}

	res, err := q.Conn.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		log.Printf("[INSERT] ERROR: Insert into %s.%s failed: %v", q.Database, q.Table, err)
		return nil, statementError("Error executing statement", stmt, err)
	}

	result := &InsertResult{Message: "Data added successfully!", Statement: stmt.SQL}
	if id, err := res.LastInsertId(); err == nil && id != 0 && q.hasAutoIncrement(ctx) {
		result.InsertID = id
		result.HasInsertID = true
	}

	publish(ctx, q.Publisher, &core.MutationEvent{
		Operation:    core.OperationInsert,
		Database:     q.Database,
		Table:        q.Table,
		Data:         cloneFields(q.Data),
		RowsAffected: rowsAffected(res),
		InsertID:     result.InsertID,
	})
	return result, nil
}

// hasAutoIncrement asks backends that report an id for every insert
// whether the table really assigns one.
func (q *InsertQuery) hasAutoIncrement(ctx context.Context) bool {
	reporter, ok := q.Conn.(core.AutoIncrementReporter)
	if !ok {
		return true
	}
	has, err := reporter.HasAutoIncrement(ctx, q.Database, q.Table)
	if err != nil {
		log.Printf("[INSERT] WARNING: Unable to check autoincrement key of %s.%s: %v", q.Database, q.Table, err)
		return false
	}
	return has
}

func rowsAffected(res core.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

// publish hands ev to p. A failed publish never fails the write.
func publish(ctx context.Context, p Publisher, ev *core.MutationEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Printf("[EVENTS] WARNING: Failed to publish %s event for %s.%s: %v",
			ev.Operation, ev.Database, ev.Table, err)
	}
}

func cloneFields(f Fields) []core.Field {
	if len(f) == 0 {
		return nil
	}
	return append([]core.Field(nil), f...)
}
