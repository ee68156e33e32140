// Package domain contains the contracts shared by the mapping, binding and
// execution layers: rows and their metadata, bind targets, prepared
// operations and the query model compiled into SQL.
package domain

import "strings"

// Row is a read-only view over one result tuple. A Row is only valid during
// the iteration step that produced it and must not be retained.
type Row interface {
	// Get returns the value at the zero-based ordinal.
	Get(index int) (any, error)
}

// RowMetadata describes the columns of a result, independent of any row.
type RowMetadata interface {
	// ColumnMetadatas returns one entry per column in ordinal order.
	ColumnMetadatas() []ColumnMetadata
}

// ColumnMetadata describes one result column.
type ColumnMetadata interface {
	// Name is the driver-reported column name. Casing is driver specific.
	Name() string
}

// Nullability reports whether a column may contain NULL.
type Nullability uint8

const (
	NullabilityUnknown Nullability = iota
	NullabilityNullable
	NullabilityNonNull
)

// Column is the ColumnMetadata implementation used by the built-in adapters.
type Column struct {
	ColumnName   string
	Ordinal      int
	DatabaseType string
	Nullability  Nullability
}

// Name returns the column name.
func (c Column) Name() string { return c.ColumnName }

// Columns is a RowMetadata backed by a slice.
type Columns []Column

// ColumnMetadatas implements RowMetadata.
func (cs Columns) ColumnMetadatas() []ColumnMetadata {
	out := make([]ColumnMetadata, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

// Names returns the column names in ordinal order.
func (cs Columns) Names() []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.ColumnName
	}
	return names
}

// Column finds a column by name, ignoring case.
func (cs Columns) Column(name string) (Column, bool) {
	for _, c := range cs {
		if strings.EqualFold(c.ColumnName, name) {
			return c, true
		}
	}
	return Column{}, false
}

// MetadataOf builds Columns from names, assigning ordinals in order.
func MetadataOf(names ...string) Columns {
	cs := make(Columns, len(names))
	for i, n := range names {
		cs[i] = Column{ColumnName: n, Ordinal: i}
	}
	return cs
}

// ColumnNames extracts the names of any RowMetadata.
func ColumnNames(md RowMetadata) []string {
	cols := md.ColumnMetadatas()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
	}
	return names
}
