package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// ErrorCode extracts the backend error number from err, or 0 when err does
// not carry one.
func ErrorCode(err error) int {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return int(myErr.Number)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return int(liteErr.Code)
	}
	return 0
}
