// Package mapper converts result rows into ColumnMaps, structs and scalar
// values.
package mapper

import (
	"errors"

	"github.com/satishbabariya/r2dbc-go/query/domain"
)

// ErrNoMetadata is returned when a row is mapped without column metadata.
var ErrNoMetadata = errors.New("mapper: row metadata is nil")

// RowMapper maps one row into a T. Implementations must not retain row.
type RowMapper[T any] interface {
	Apply(row domain.Row, md domain.RowMetadata) (T, error)
}

// RowMapperFunc adapts a function to RowMapper.
type RowMapperFunc[T any] func(row domain.Row, md domain.RowMetadata) (T, error)

// Apply calls f.
func (f RowMapperFunc[T]) Apply(row domain.Row, md domain.RowMetadata) (T, error) {
	return f(row, md)
}

// KeyFunc derives the map key for a column name.
type KeyFunc func(columnName string) string

// ValueFunc extracts the value of the column at index.
type ValueFunc func(row domain.Row, index int) (any, error)

// ColumnKey is the default KeyFunc. It returns the name unchanged.
func ColumnKey(columnName string) string { return columnName }

// ColumnValue is the default ValueFunc. It returns the driver value as-is.
func ColumnValue(row domain.Row, index int) (any, error) { return row.Get(index) }

// ColumnMapRowMapper maps each row to a ColumnMap holding one entry per
// column, in column order. Stateless once built and safe for concurrent use.
type ColumnMapRowMapper struct {
	key    KeyFunc
	value  ValueFunc
	newMap MapFactory
}

// Option configures a ColumnMapRowMapper.
type Option func(*ColumnMapRowMapper)

// WithColumnKey replaces the key derivation.
func WithColumnKey(fn KeyFunc) Option {
	return func(m *ColumnMapRowMapper) {
		if fn != nil {
			m.key = fn
		}
	}
}

// WithColumnValue replaces the value extraction.
func WithColumnValue(fn ValueFunc) Option {
	return func(m *ColumnMapRowMapper) {
		if fn != nil {
			m.value = fn
		}
	}
}

// WithMapFactory replaces the map construction.
func WithMapFactory(fn MapFactory) Option {
	return func(m *ColumnMapRowMapper) {
		if fn != nil {
			m.newMap = fn
		}
	}
}

// WithCaseSensitiveKeys makes lookups on produced maps match keys exactly.
func WithCaseSensitiveKeys() Option {
	return WithMapFactory(func(n int) ColumnMap { return NewCaseSensitiveColumnMap(n) })
}

// NewColumnMapRowMapper builds a mapper. Without options it uses ColumnKey,
// ColumnValue and case-insensitive maps.
func NewColumnMapRowMapper(opts ...Option) *ColumnMapRowMapper {
	m := &ColumnMapRowMapper{
		key:    ColumnKey,
		value:  ColumnValue,
		newMap: func(n int) ColumnMap { return NewColumnMap(n) },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Default is the shared ColumnMapRowMapper with default strategies.
var Default = NewColumnMapRowMapper()

// Apply maps row. Errors from value extraction are returned as-is and no
// partial map is returned.
func (m *ColumnMapRowMapper) Apply(row domain.Row, md domain.RowMetadata) (ColumnMap, error) {
	if md == nil {
		return nil, ErrNoMetadata
	}
	cols := md.ColumnMetadatas()
	out := m.newMap(len(cols))
	for i, col := range cols {
		v, err := m.value(row, i)
		if err != nil {
			return nil, err
		}
		out.Put(m.key(col.Name()), v)
	}
	return out, nil
}

var _ RowMapper[ColumnMap] = (*ColumnMapRowMapper)(nil)
