package mysqlwrapper

import (
	"context"
	"log"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
	"github.com/Patrick-Hull/MySQLWrapper/internal/query"
)

// UpdateResult is the success variant of UpdateQuery.Execute.
type UpdateResult struct {
	Message      string
	RowsAffected int64
	Statement    string
}

// UpdateQuery sets Data on the rows matching every Criteria entry.
type UpdateQuery struct {
	Conn      Database
	Publisher Publisher

	Database string
	Table    string
	Data     Fields
	Criteria Fields
}

// NewUpdateQuery returns an UpdateQuery borrowing conn.
func NewUpdateQuery(conn Database) *UpdateQuery {
	return &UpdateQuery{Conn: conn}
}

// Execute runs UPDATE db.table SET c1 = ?, ... WHERE k1 = ? AND ...
// Data values are bound before criteria values. Empty criteria is refused
// rather than updating the whole table.
func (q *UpdateQuery) Execute(ctx context.Context) (*UpdateResult, error) {
	if err := checkTarget(q.Conn, q.Database, q.Table); err != nil {
		return nil, err
	}
	if len(q.Data) == 0 {
		return nil, validationError("Data must be presented for an Update Statement", ErrDataRequired)
	}
	if len(q.Criteria) == 0 {
		return nil, validationError("Criteria must be presented for an Update Statement", ErrCriteriaRequired)
	}

	stmt, err := query.Update(q.Database, q.Table, q.Data, q.Criteria)
	if err != nil {
		return nil, buildError(err)
	}

	res, err := q.Conn.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		log.Printf("[UPDATE] ERROR: Update of %s.%s failed: %v", q.Database, q.Table, err)
		return nil, statementError("Error Executing Statement", stmt, err)
	}

	result := &UpdateResult{
		Message:      "Data Updated Successfully",
		RowsAffected: rowsAffected(res),
		Statement:    stmt.SQL,
	}

	publish(ctx, q.Publisher, &core.MutationEvent{
		Operation:    core.OperationUpdate,
		Database:     q.Database,
		Table:        q.Table,
		Data:         cloneFields(q.Data),
		Criteria:     cloneFields(q.Criteria),
		RowsAffected: result.RowsAffected,
	})
	return result, nil
}
