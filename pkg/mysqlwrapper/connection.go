package mysqlwrapper

import (
	"context"
	"log"

	"github.com/Patrick-Hull/MySQLWrapper/internal/database"
)

// DBConnection describes one database session by server and credentials.
type DBConnection struct {
	// Server is a MySQL host or host:port. With the sqlite3 driver it is
	// the database file.
	Server   string
	Username string
	Password string

	// Driver defaults to "mysql".
	Driver string
}

// NewDBConnection returns a MySQL connection description.
func NewDBConnection(server, username, password string) *DBConnection {
	return &DBConnection{Server: server, Username: username, Password: password, Driver: "mysql"}
}

// Connect opens the session. A single attempt is made.
func (c *DBConnection) Connect(ctx context.Context) (Database, error) {
	cfg := DatabaseConfig{
		Driver:   c.Driver,
		Host:     c.Server,
		Username: c.Username,
		Password: c.Password,
	}
	if c.Driver == "sqlite3" || c.Driver == "sqlite" {
		cfg.Host, cfg.Path = "", c.Server
	}
	return Connect(ctx, cfg)
}

// Connect opens one database session from cfg. Failures are returned as
// an *Error of KindConnection carrying the driver's diagnostic text.
func Connect(ctx context.Context, cfg DatabaseConfig) (Database, error) {
	db, err := database.Open(ctx, cfg.options())
	if err != nil {
		log.Printf("[CONNECT] ERROR: Could not connect to %s database: %v", driverName(cfg.Driver), err)
		return nil, &Error{
			Kind:    KindConnection,
			Message: "Could not connect",
			Code:    database.ErrorCode(err),
			Err:     err,
		}
	}
	return db, nil
}

func driverName(driver string) string {
	if driver == "" {
		return "mysql"
	}
	return driver
}
