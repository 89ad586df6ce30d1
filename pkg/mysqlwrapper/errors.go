package mysqlwrapper

import (
	"errors"
	"fmt"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
	"github.com/Patrick-Hull/MySQLWrapper/internal/database"
	"github.com/Patrick-Hull/MySQLWrapper/internal/query"
)

// Kind classifies a failed operation.
type Kind string

const (
	// KindConnection means the database session could not be established.
	KindConnection Kind = "connection"
	// KindSchema means the table is missing or has no usable primary key.
	KindSchema Kind = "schema"
	// KindStatement means the backend rejected or failed the compiled SQL.
	KindStatement Kind = "statement"
	// KindValidation means required input was absent or malformed. The
	// backend was not contacted.
	KindValidation Kind = "validation"
	// KindCache means the cache path failed.
	KindCache Kind = "cache"
)

var (
	// ErrNotConnected is returned when an executor has no connection handle.
	ErrNotConnected = errors.New("no database connection")

	// ErrTargetRequired is returned when Database or Table is empty.
	ErrTargetRequired = errors.New("database and table are required")

	// ErrDataRequired is returned by Insert and Update when Data is empty.
	ErrDataRequired = errors.New("data required")

	// ErrCriteriaRequired is returned by Update and Delete when Criteria is empty.
	ErrCriteriaRequired = errors.New("criteria required")

	// ErrCacheUnavailable is returned when caching is requested without a store.
	ErrCacheUnavailable = errors.New("cache store is not configured")

	// ErrPrimaryKeyNotSelected is returned when the projection omits the
	// primary key that rows are keyed by.
	ErrPrimaryKeyNotSelected = errors.New("primary key is not in the selected columns")

	ErrTableNotFound     = core.ErrTableNotFound
	ErrNoPrimaryKey      = core.ErrNoPrimaryKey
	ErrInvalidIdentifier = query.ErrInvalidIdentifier
	ErrKeyNotFound       = core.ErrKeyNotFound
)

// Error is the failure variant of every executor result.
type Error struct {
	Kind    Kind
	Message string

	// Code is the backend error number, 0 when none applies.
	Code int

	// Statement is the SQL that failed, empty when no statement was built.
	Statement string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Kind
	}
	return ""
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func validationError(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

func schemaError(message string, err error) *Error {
	return &Error{Kind: KindSchema, Message: message, Err: err}
}

func statementError(message string, stmt query.Statement, err error) *Error {
	return &Error{
		Kind:      KindStatement,
		Message:   message,
		Code:      database.ErrorCode(err),
		Statement: stmt.SQL,
		Err:       err,
	}
}

// checkTarget validates the fields every executor shares.
func checkTarget(conn core.Database, db, table string) *Error {
	if conn == nil {
		return &Error{Kind: KindConnection, Message: "Could not connect", Err: ErrNotConnected}
	}
	if db == "" || table == "" {
		return validationError("Database and Table must be presented", ErrTargetRequired)
	}
	return nil
}

// buildError maps a statement builder failure onto a validation error.
func buildError(err error) *Error {
	return validationError("Invalid Statement Input", err)
}
