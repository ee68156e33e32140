package builder

import (
	"github.com/satishbabariya/r2dbc-go/query/domain"
)

// InsertBuilder builds single-row INSERT queries
type InsertBuilder struct {
	table  string
	values []domain.Assignment
}

// NewInsertBuilder creates a new insert builder
func NewInsertBuilder(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// Value sets a column value. Columns keep the order they were first set in.
func (i *InsertBuilder) Value(column string, value any) *InsertBuilder {
	i.values = setAssignment(i.values, column, value)
	return i
}

// Build returns the query.
func (i *InsertBuilder) Build() *domain.Query {
	return &domain.Query{
		Table:       i.table,
		Operation:   domain.Insert,
		Assignments: append([]domain.Assignment(nil), i.values...),
	}
}

// UpdateBuilder builds UPDATE queries
type UpdateBuilder struct {
	table string
	set   []domain.Assignment
	where *WhereBuilder
}

// NewUpdateBuilder creates a new update builder
func NewUpdateBuilder(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set sets a field value
func (u *UpdateBuilder) Set(field string, value any) *UpdateBuilder {
	u.set = setAssignment(u.set, field, value)
	return u
}

// Where adds a WHERE clause
func (u *UpdateBuilder) Where() *WhereBuilder {
	if u.where == nil {
		u.where = NewWhereBuilder()
	}
	return u.where
}

// Build returns the query.
func (u *UpdateBuilder) Build() *domain.Query {
	return &domain.Query{
		Table:       u.table,
		Operation:   domain.Update,
		Assignments: append([]domain.Assignment(nil), u.set...),
		Filter:      u.where.Build(),
	}
}

// DeleteBuilder builds DELETE queries
type DeleteBuilder struct {
	table string
	where *WhereBuilder
}

// NewDeleteBuilder creates a new delete builder
func NewDeleteBuilder(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// Where adds a WHERE clause
func (d *DeleteBuilder) Where() *WhereBuilder {
	if d.where == nil {
		d.where = NewWhereBuilder()
	}
	return d.where
}

// Build returns the query.
func (d *DeleteBuilder) Build() *domain.Query {
	return &domain.Query{
		Table:     d.table,
		Operation: domain.Delete,
		Filter:    d.where.Build(),
	}
}

func setAssignment(list []domain.Assignment, column string, value any) []domain.Assignment {
	for i := range list {
		if list[i].Column == column {
			list[i].Value = value
			return list
		}
	}
	return append(list, domain.Assignment{Column: column, Value: value})
}
