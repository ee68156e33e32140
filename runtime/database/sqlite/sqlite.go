// Package sqlite implements the SQLite adapter on mattn/go-sqlite3.
package sqlite

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/runtime/database"
)

// New creates a SQLite adapter. A "file:" or "sqlite:" prefix on the URL is
// accepted. In-memory databases are limited to one connection so every
// statement sees the same database.
func New(config database.Config) *database.SQLAdapter {
	config.URL = strings.TrimPrefix(config.URL, "sqlite:")
	if strings.Contains(config.URL, ":memory:") || strings.Contains(config.URL, "mode=memory") {
		config.MaxConnections = 1
		config.MaxIdleTime = 0
	}
	return database.NewSQLAdapter("sqlite3", domain.SQLite, config,
		database.WithTransientErrors(IsTransient))
}

// IsTransient reports busy and locked database errors.
func IsTransient(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}
