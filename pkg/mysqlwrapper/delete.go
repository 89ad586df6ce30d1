package mysqlwrapper

import (
	"context"
	"log"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
	"github.com/Patrick-Hull/MySQLWrapper/internal/query"
)

// DeleteResult is the success variant of DeleteQuery.Execute.
type DeleteResult struct {
	Message      string
	RowsAffected int64
	Statement    string
}

// DeleteQuery removes the rows matching every Criteria entry.
type DeleteQuery struct {
	Conn      Database
	Publisher Publisher

	Database string
	Table    string
	Criteria Fields
}

// NewDeleteQuery returns a DeleteQuery borrowing conn.
func NewDeleteQuery(conn Database) *DeleteQuery {
	return &DeleteQuery{Conn: conn}
}

// Execute runs DELETE FROM db.table WHERE k1 = ? AND ...
// Without criteria nothing is sent to the backend.
func (q *DeleteQuery) Execute(ctx context.Context) (*DeleteResult, error) {
	if err := checkTarget(q.Conn, q.Database, q.Table); err != nil {
		return nil, err
	}
	if len(q.Criteria) == 0 {
		return nil, validationError("Criteria must be presented for a Delete Statement", ErrCriteriaRequired)
	}

	stmt, err := query.Delete(q.Database, q.Table, q.Criteria)
	if err != nil {
		return nil, buildError(err)
	}

	res, err := q.Conn.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		log.Printf("[DELETE] ERROR: Delete from %s.%s failed: %v", q.Database, q.Table, err)
		return nil, statementError("Error Executing Statement", stmt, err)
	}

	result := &DeleteResult{
		Message:      "Data Deleted Successfully",
		RowsAffected: rowsAffected(res),
		Statement:    stmt.SQL,
	}

	publish(ctx, q.Publisher, &core.MutationEvent{
		Operation:    core.OperationDelete,
		Database:     q.Database,
		Table:        q.Table,
		Criteria:     cloneFields(q.Criteria),
		RowsAffected: result.RowsAffected,
	})
	return result, nil
}
