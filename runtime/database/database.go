// Package database defines the adapter contract between the executor and a
// concrete driver, and a database/sql implementation shared by the built-in
// drivers.
package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"time"

	"github.com/satishbabariya/r2dbc-go/query/binding"
	"github.com/satishbabariya/r2dbc-go/query/domain"
)

var (
	// ErrNotConnected is returned when an adapter is used before Connect.
	ErrNotConnected = errors.New("database not connected")
	// ErrAlreadyBound is returned when a statement parameter is bound twice.
	ErrAlreadyBound = errors.New("parameter already bound")
	// ErrUnboundParameter is returned when positional parameters have a gap.
	ErrUnboundParameter = errors.New("parameter not bound")
	// ErrMixedBinding is returned when a statement gets both positional and
	// named parameters.
	ErrMixedBinding = errors.New("statement mixes positional and named parameters")
	// ErrUnsupportedProvider is returned for an unknown provider name.
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Adapter defines the database adapter interface.
type Adapter interface {
	// Connect establishes a database connection.
	Connect(ctx context.Context) error

	// Disconnect closes the database connection.
	Disconnect(ctx context.Context) error

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// Dialect returns the SQL dialect.
	Dialect() domain.SQLDialect

	// BindMarkers returns the marker style the driver understands.
	BindMarkers() binding.BindMarkersFactory

	// NewStatement creates an unbound statement for sql. Each execution
	// attempt uses a new statement.
	NewStatement(sql string) (Statement, error)
}

// Statement is a bind target that can be executed once.
type Statement interface {
	domain.BindTarget

	// Query runs the statement and returns its rows.
	Query(ctx context.Context) (Result, error)

	// Exec runs the statement and returns the number of affected rows.
	Exec(ctx context.Context) (int64, error)
}

// Result is a forward-only cursor over query rows. The Row returned after a
// successful Next is valid until the next call to Next or Close.
type Result interface {
	Next() bool
	Row() domain.Row
	Metadata() domain.RowMetadata
	Err() error
	Close() error
}

// TransientClassifier is implemented by adapters that can tell whether an
// error is worth retrying.
type TransientClassifier interface {
	IsTransient(err error) bool
}

// IsTransient reports whether err is a transient failure for adapter. Broken
// connections are always transient; anything else is up to the adapter.
func IsTransient(adapter Adapter, err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if tc, ok := adapter.(TransientClassifier); ok {
		return tc.IsTransient(err)
	}
	return false
}

// Config holds database connection configuration.
type Config struct {
	Provider       string
	URL            string
	MaxConnections int
	MaxIdleTime    time.Duration
	ConnectTimeout time.Duration
}

// DefaultConfig returns the pool settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		MaxConnections: 10,
		MaxIdleTime:    5 * time.Minute,
		ConnectTimeout: 10 * time.Second,
	}
}
