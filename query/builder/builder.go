// Package builder provides a fluent API for building domain.Query values.
package builder

import (
	"github.com/satishbabariya/r2dbc-go/query/domain"
)

// WhereBuilder builds WHERE clauses
type WhereBuilder struct {
	conditions []domain.Condition
	groups     []domain.Filter
	operator   domain.LogicalOperator
}

// NewWhereBuilder creates a new WHERE builder
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{operator: domain.AND}
}

func (w *WhereBuilder) add(field string, op domain.ComparisonOperator, value any) *WhereBuilder {
	w.conditions = append(w.conditions, domain.Condition{Field: field, Operator: op, Value: value})
	return w
}

// Equals adds an equality condition. A nil value renders IS NULL.
func (w *WhereBuilder) Equals(field string, value any) *WhereBuilder {
	return w.add(field, domain.Equals, value)
}

// NotEquals adds a not-equals condition
func (w *WhereBuilder) NotEquals(field string, value any) *WhereBuilder {
	return w.add(field, domain.NotEquals, value)
}

// GreaterThan adds a greater-than condition
func (w *WhereBuilder) GreaterThan(field string, value any) *WhereBuilder {
	return w.add(field, domain.Gt, value)
}

// LessThan adds a less-than condition
func (w *WhereBuilder) LessThan(field string, value any) *WhereBuilder {
	return w.add(field, domain.Lt, value)
}

// GreaterOrEqual adds a greater-or-equal condition
func (w *WhereBuilder) GreaterOrEqual(field string, value any) *WhereBuilder {
	return w.add(field, domain.Gte, value)
}

// LessOrEqual adds a less-or-equal condition
func (w *WhereBuilder) LessOrEqual(field string, value any) *WhereBuilder {
	return w.add(field, domain.Lte, value)
}

// In adds an IN condition. values must be a slice or array.
func (w *WhereBuilder) In(field string, values any) *WhereBuilder {
	return w.add(field, domain.In, values)
}

// NotIn adds a NOT IN condition
func (w *WhereBuilder) NotIn(field string, values any) *WhereBuilder {
	return w.add(field, domain.NotIn, values)
}

// Like adds a LIKE condition
func (w *WhereBuilder) Like(field string, pattern string) *WhereBuilder {
	return w.add(field, domain.Like, pattern)
}

// Contains matches values containing s literally.
func (w *WhereBuilder) Contains(field string, s string) *WhereBuilder {
	return w.add(field, domain.Contains, s)
}

// StartsWith matches values with the literal prefix s.
func (w *WhereBuilder) StartsWith(field string, s string) *WhereBuilder {
	return w.add(field, domain.StartsWith, s)
}

// EndsWith matches values with the literal suffix s.
func (w *WhereBuilder) EndsWith(field string, s string) *WhereBuilder {
	return w.add(field, domain.EndsWith, s)
}

// IsNull adds an IS NULL condition
func (w *WhereBuilder) IsNull(field string) *WhereBuilder {
	return w.add(field, domain.IsNull, nil)
}

// IsNotNull adds an IS NOT NULL condition
func (w *WhereBuilder) IsNotNull(field string) *WhereBuilder {
	return w.add(field, domain.IsNotNull, nil)
}

// SetOperator sets the logical operator joining direct conditions.
func (w *WhereBuilder) SetOperator(op domain.LogicalOperator) *WhereBuilder {
	w.operator = op
	return w
}

// Build builds the filter
func (w *WhereBuilder) Build() domain.Filter {
	if w == nil {
		return domain.Filter{}
	}
	f := domain.Filter{Operator: w.operator}
	f.Conditions = append(f.Conditions, w.conditions...)
	f.NestedFilters = append(f.NestedFilters, w.groups...)
	return f
}

// QueryBuilder builds SELECT queries
type QueryBuilder struct {
	table    string
	columns  []string
	distinct bool
	where    *WhereBuilder
	orderBy  []domain.OrderBy
	limit    *int
	offset   *int
}

// NewQueryBuilder creates a new query builder
func NewQueryBuilder(table string) *QueryBuilder {
	return &QueryBuilder{
		table:   table,
		columns: nil, // nil means SELECT *
	}
}

// Select sets the columns to select
func (q *QueryBuilder) Select(columns ...string) *QueryBuilder {
	q.columns = columns
	return q
}

// Distinct selects distinct rows.
func (q *QueryBuilder) Distinct() *QueryBuilder {
	q.distinct = true
	return q
}

// Where returns the WHERE builder, creating it on first use.
func (q *QueryBuilder) Where() *WhereBuilder {
	if q.where == nil {
		q.where = NewWhereBuilder()
	}
	return q.where
}

// OrderBy adds an ORDER BY clause
func (q *QueryBuilder) OrderBy(field string, direction domain.SortDirection) *QueryBuilder {
	q.orderBy = append(q.orderBy, domain.OrderBy{Field: field, Direction: direction})
	return q
}

// Limit sets the LIMIT
func (q *QueryBuilder) Limit(limit int) *QueryBuilder {
	q.limit = &limit
	return q
}

// Offset sets the OFFSET
func (q *QueryBuilder) Offset(offset int) *QueryBuilder {
	q.offset = &offset
	return q
}

// Build returns the query.
func (q *QueryBuilder) Build() *domain.Query {
	return &domain.Query{
		Table:      q.table,
		Operation:  domain.Select,
		Columns:    append([]string(nil), q.columns...),
		Filter:     q.where.Build(),
		Ordering:   append([]domain.OrderBy(nil), q.orderBy...),
		Pagination: domain.Pagination{Limit: q.limit, Offset: q.offset},
		Distinct:   q.distinct,
	}
}
