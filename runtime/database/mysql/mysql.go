// Package mysql implements the MySQL adapter on go-sql-driver/mysql.
package mysql

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/runtime/database"
)

// New creates a MySQL adapter. The DSN is validated and parseTime is
// enabled so DATETIME columns arrive as time.Time.
func New(config database.Config) (*database.SQLAdapter, error) {
	dsn, err := mysql.ParseDSN(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	dsn.ParseTime = true
	if config.ConnectTimeout > 0 && dsn.Timeout == 0 {
		dsn.Timeout = config.ConnectTimeout
	}
	config.URL = dsn.FormatDSN()

	return database.NewSQLAdapter("mysql", domain.MySQL, config,
		database.WithTransientErrors(IsTransient)), nil
}

// IsTransient reports deadlocks, lock wait timeouts and dropped connections.
func IsTransient(err error) bool {
	if errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1205, 1213: // lock wait timeout, deadlock
			return true
		}
	}
	return false
}
