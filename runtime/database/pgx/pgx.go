// Package pgx implements the PostgreSQL adapter on a jackc/pgx connection
// pool, reading rows in pgx's native representation.
package pgx

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/satishbabariya/r2dbc-go/query/binding"
	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/runtime/database"
)

// Adapter implements database.Adapter for PostgreSQL via pgxpool.
type Adapter struct {
	config  database.Config
	pool    *pgxpool.Pool
	types   *pgtype.Map
	markers binding.BindMarkersFactory
}

// New creates a pgx adapter. Bind markers are $1, $2, ...
func New(config database.Config) *Adapter {
	return &Adapter{
		config:  config,
		types:   pgtype.NewMap(),
		markers: binding.ForDialect(domain.PostgreSQL),
	}
}

// NewNamed creates a pgx adapter using pgx named arguments (@name).
func NewNamed(config database.Config) *Adapter {
	a := New(config)
	a.markers = binding.Named("@", "p")
	return a
}

// Connect establishes a connection pool to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context) error {
	cfg, err := pgxpool.ParseConfig(a.config.URL)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}
	if a.config.MaxConnections > 0 {
		cfg.MaxConns = int32(a.config.MaxConnections)
	}
	if a.config.MaxIdleTime > 0 {
		cfg.MaxConnIdleTime = a.config.MaxIdleTime
	}
	if a.config.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = a.config.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}
	a.pool = pool
	return nil
}

// Disconnect closes the connection pool.
func (a *Adapter) Disconnect(ctx context.Context) error {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return nil
}

// Ping checks if the connection is alive.
func (a *Adapter) Ping(ctx context.Context) error {
	if a.pool == nil {
		return database.ErrNotConnected
	}
	return a.pool.Ping(ctx)
}

// Dialect returns the SQL dialect.
func (a *Adapter) Dialect() domain.SQLDialect { return domain.PostgreSQL }

// BindMarkers returns the marker style.
func (a *Adapter) BindMarkers() binding.BindMarkersFactory { return a.markers }

// NewStatement creates an unbound statement.
func (a *Adapter) NewStatement(sql string) (database.Statement, error) {
	if a.pool == nil {
		return nil, database.ErrNotConnected
	}
	return &statement{Params: database.NewParams(), adapter: a, sql: sql}, nil
}

// IsTransient reports errors pgconn considers safe to retry, plus
// serialization failures and deadlocks.
func (a *Adapter) IsTransient(err error) bool {
	if pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}
	return false
}

type statement struct {
	*database.Params
	adapter *Adapter
	sql     string
}

func (s *statement) args() ([]any, error) {
	if !s.Named() {
		return s.Positional()
	}
	_, values := s.NamedValues()
	return []any{pgxv5.NamedArgs(values)}, nil
}

func (s *statement) Query(ctx context.Context) (database.Result, error) {
	args, err := s.args()
	if err != nil {
		return nil, err
	}
	rows, err := s.adapter.pool.Query(ctx, s.sql, args...)
	if err != nil {
		return nil, err
	}
	return &result{rows: rows, columns: s.adapter.columns(rows.FieldDescriptions())}, nil
}

func (s *statement) Exec(ctx context.Context) (int64, error) {
	args, err := s.args()
	if err != nil {
		return 0, err
	}
	tag, err := s.adapter.pool.Exec(ctx, s.sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (a *Adapter) columns(fields []pgconn.FieldDescription) domain.Columns {
	cols := make(domain.Columns, len(fields))
	for i, f := range fields {
		typeName := strconv.FormatUint(uint64(f.DataTypeOID), 10)
		if t, ok := a.types.TypeForOID(f.DataTypeOID); ok {
			typeName = t.Name
		}
		cols[i] = domain.Column{ColumnName: f.Name, Ordinal: i, DatabaseType: typeName}
	}
	return cols
}

type result struct {
	rows    pgxv5.Rows
	columns domain.Columns
	row     domain.Row
	err     error
}

func (r *result) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}
	values, err := r.rows.Values()
	if err != nil {
		r.err = err
		return false
	}
	r.row = database.NewValuesRow(values)
	return true
}

func (r *result) Row() domain.Row              { return r.row }
func (r *result) Metadata() domain.RowMetadata { return r.columns }

func (r *result) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *result) Close() error {
	r.rows.Close()
	return nil
}

var (
	_ database.Adapter             = (*Adapter)(nil)
	_ database.TransientClassifier = (*Adapter)(nil)
)
