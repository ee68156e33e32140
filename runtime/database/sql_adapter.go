package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/satishbabariya/r2dbc-go/query/binding"
	"github.com/satishbabariya/r2dbc-go/query/domain"
)

// SQLAdapter implements Adapter over database/sql.
type SQLAdapter struct {
	driverName string
	dialect    domain.SQLDialect
	markers    binding.BindMarkersFactory
	config     Config
	transient  func(error) bool
	db         *sql.DB
}

// SQLOption configures an SQLAdapter.
type SQLOption func(*SQLAdapter)

// WithBindMarkers overrides the dialect's default marker style.
func WithBindMarkers(markers binding.BindMarkersFactory) SQLOption {
	return func(a *SQLAdapter) { a.markers = markers }
}

// WithTransientErrors sets the classifier used by IsTransient.
func WithTransientErrors(fn func(error) bool) SQLOption {
	return func(a *SQLAdapter) { a.transient = fn }
}

// NewSQLAdapter creates an adapter that opens driverName on Connect.
func NewSQLAdapter(driverName string, dialect domain.SQLDialect, config Config, opts ...SQLOption) *SQLAdapter {
	a := &SQLAdapter{
		driverName: driverName,
		dialect:    dialect,
		markers:    binding.ForDialect(dialect),
		config:     config,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewSQLAdapterFromDB wraps an already opened database. Connect only pings it.
func NewSQLAdapterFromDB(db *sql.DB, dialect domain.SQLDialect, opts ...SQLOption) *SQLAdapter {
	a := NewSQLAdapter("", dialect, Config{}, opts...)
	a.db = db
	return a
}

// Connect establishes the connection pool.
func (a *SQLAdapter) Connect(ctx context.Context) error {
	if a.db == nil {
		db, err := sql.Open(a.driverName, a.config.URL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		// Set connection pool settings
		if a.config.MaxConnections > 0 {
			db.SetMaxOpenConns(a.config.MaxConnections)
			db.SetMaxIdleConns(max(a.config.MaxConnections/2, 1))
		}
		if a.config.MaxIdleTime > 0 {
			db.SetConnMaxIdleTime(a.config.MaxIdleTime)
		}
		a.db = db
	}

	if a.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.ConnectTimeout)
		defer cancel()
	}
	if err := a.db.PingContext(ctx); err != nil {
		if a.driverName != "" {
			a.db.Close()
			a.db = nil
		}
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Disconnect closes the database connection.
func (a *SQLAdapter) Disconnect(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// Ping checks if the database connection is alive.
func (a *SQLAdapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return ErrNotConnected
	}
	return a.db.PingContext(ctx)
}

// Dialect returns the SQL dialect.
func (a *SQLAdapter) Dialect() domain.SQLDialect { return a.dialect }

// BindMarkers returns the marker style for the dialect.
func (a *SQLAdapter) BindMarkers() binding.BindMarkersFactory { return a.markers }

// DB returns the underlying database connection
func (a *SQLAdapter) DB() *sql.DB { return a.db }

// IsTransient implements TransientClassifier.
func (a *SQLAdapter) IsTransient(err error) bool {
	return a.transient != nil && a.transient(err)
}

// NewStatement creates an unbound statement.
func (a *SQLAdapter) NewStatement(query string) (Statement, error) {
	if a.db == nil {
		return nil, ErrNotConnected
	}
	return &sqlStatement{Params: newParams(), db: a.db, query: query}, nil
}

var (
	_ Adapter             = (*SQLAdapter)(nil)
	_ TransientClassifier = (*SQLAdapter)(nil)
)
