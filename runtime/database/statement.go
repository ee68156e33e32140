package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/satishbabariya/r2dbc-go/query/domain"
)

type sqlStatement struct {
	*Params
	db    *sql.DB
	query string
}

func (s *sqlStatement) Query(ctx context.Context) (Result, error) {
	args, err := s.Args()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.query, args...)
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, err
	}
	return newSQLResult(rows, columnsOf(types)), nil
}

func (s *sqlStatement) Exec(ctx context.Context) (int64, error) {
	args, err := s.Args()
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, s.query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func columnsOf(types []*sql.ColumnType) domain.Columns {
	cols := make(domain.Columns, len(types))
	for i, t := range types {
		nullability := domain.NullabilityUnknown
		if nullable, ok := t.Nullable(); ok {
			nullability = domain.NullabilityNonNull
			if nullable {
				nullability = domain.NullabilityNullable
			}
		}
		cols[i] = domain.Column{
			ColumnName:   t.Name(),
			Ordinal:      i,
			DatabaseType: t.DatabaseTypeName(),
			Nullability:  nullability,
		}
	}
	return cols
}

type sqlResult struct {
	rows    *sql.Rows
	columns domain.Columns
	row     *valuesRow
	ptrs    []any
	err     error
}

func newSQLResult(rows *sql.Rows, columns domain.Columns) *sqlResult {
	r := &sqlResult{
		rows:    rows,
		columns: columns,
		row:     &valuesRow{values: make([]any, len(columns))},
		ptrs:    make([]any, len(columns)),
	}
	for i := range r.ptrs {
		r.ptrs[i] = &r.row.values[i]
	}
	return r
}

func (r *sqlResult) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}
	clear(r.row.values)
	if err := r.rows.Scan(r.ptrs...); err != nil {
		r.err = err
		return false
	}
	return true
}

func (r *sqlResult) Row() domain.Row              { return r.row }
func (r *sqlResult) Metadata() domain.RowMetadata { return r.columns }

func (r *sqlResult) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *sqlResult) Close() error { return r.rows.Close() }

// valuesRow is a domain.Row over a reused value slice.
type valuesRow struct {
	values []any
}

// NewValuesRow returns a Row over values, for adapters that read a whole
// row at once.
func NewValuesRow(values []any) domain.Row { return &valuesRow{values: values} }

func (r *valuesRow) Get(index int) (any, error) {
	if index < 0 || index >= len(r.values) {
		return nil, fmt.Errorf("column index %d out of range [0,%d)", index, len(r.values))
	}
	return r.values[index], nil
}
