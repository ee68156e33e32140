// Package postgres implements the PostgreSQL adapter on lib/pq.
package postgres

import (
	"errors"

	"github.com/lib/pq"
	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/runtime/database"
)

// New creates a PostgreSQL adapter. Bind markers are $1, $2, ...
func New(config database.Config) *database.SQLAdapter {
	return database.NewSQLAdapter("postgres", domain.PostgreSQL, config,
		database.WithTransientErrors(IsTransient))
}

// IsTransient reports connection failures, serialization failures,
// deadlocks and server shutdowns.
func IsTransient(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code.Class() {
	case "08", "57": // connection exception, operator intervention
		return true
	}
	switch pqErr.Code {
	case "40001", "40P01":
		return true
	}
	return false
}
