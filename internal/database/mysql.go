package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
	"github.com/Patrick-Hull/MySQLWrapper/internal/query"
)

// mysqlErrNoSuchTable is ER_NO_SUCH_TABLE.
const mysqlErrNoSuchTable = 1146

// MySQLDatabase implements the core.Database interface using MySQL.
type MySQLDatabase struct {
	*sqlDatabase
}

// NewMySQLDatabase opens a MySQL session. The connection is verified with a
// single ping bounded by opts.ConnectionTimeout; there is no retry.
func NewMySQLDatabase(ctx context.Context, opts Options) (*MySQLDatabase, error) {
	cfg := mysql.NewConfig()
	cfg.User = opts.Username
	cfg.Passwd = opts.Password
	cfg.Net = "tcp"
	cfg.Addr = mysqlAddr(opts.Host, opts.Port)
	cfg.DBName = opts.Database
	cfg.ParseTime = true
	cfg.Timeout = opts.ConnectionTimeout

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	configurePool(db, opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectionTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLDatabase{sqlDatabase: &sqlDatabase{db: db, tag: "MYSQL"}}, nil
}

// mysqlAddr accepts "host", "host:port" or a host plus separate port.
func mysqlAddr(host string, port int) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	if port <= 0 {
		port = 3306
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Driver returns "mysql".
func (m *MySQLDatabase) Driver() string {
	return "mysql"
}

// PrimaryKey runs SHOW KEYS and returns the first PRIMARY column.
func (m *MySQLDatabase) PrimaryKey(ctx context.Context, database, table string) (string, error) {
	target, err := query.QualifiedTable(database, table)
	if err != nil {
		return "", err
	}

	rows, err := m.Query(ctx, "SHOW KEYS FROM "+target+" WHERE Key_name = 'PRIMARY'")
	if err != nil {
		if ErrorCode(err) == mysqlErrNoSuchTable {
			return "", fmt.Errorf("%w: %s.%s", core.ErrTableNotFound, database, table)
		}
		return "", fmt.Errorf("failed to query primary key of %s.%s: %w", database, table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("failed to read key columns: %w", err)
	}

	for rows.Next() {
		row, err := ScanMap(rows, columns)
		if err != nil {
			return "", err
		}
		if name, ok := row["Column_name"].(string); ok && name != "" {
			return name, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating keys: %w", err)
	}

	return "", fmt.Errorf("%w: %s.%s", core.ErrNoPrimaryKey, database, table)
}

func configurePool(db *sql.DB, opts Options) {
	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}
