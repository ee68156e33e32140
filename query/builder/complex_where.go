package builder

import (
	"github.com/satishbabariya/r2dbc-go/query/domain"
)

// AND adds a group joining the given builders with AND
func (w *WhereBuilder) AND(builders ...*WhereBuilder) *WhereBuilder {
	return w.group(domain.AND, builders)
}

// OR adds a group joining the given builders with OR
func (w *WhereBuilder) OR(builders ...*WhereBuilder) *WhereBuilder {
	return w.group(domain.OR, builders)
}

// NOT adds the negation of builder
func (w *WhereBuilder) NOT(builder *WhereBuilder) *WhereBuilder {
	if builder == nil {
		return w
	}
	sub := builder.Build()
	if sub.IsEmpty() {
		return w
	}
	w.groups = append(w.groups, domain.Filter{Operator: domain.NOT, NestedFilters: []domain.Filter{sub}})
	return w
}

func (w *WhereBuilder) group(op domain.LogicalOperator, builders []*WhereBuilder) *WhereBuilder {
	group := domain.Filter{Operator: op}
	for _, b := range builders {
		if b == nil {
			continue
		}
		if sub := b.Build(); !sub.IsEmpty() {
			group.NestedFilters = append(group.NestedFilters, sub)
		}
	}
	if !group.IsEmpty() {
		w.groups = append(w.groups, group)
	}
	return w
}

// NewSubWhereBuilder creates a new independent WHERE builder for use in AND/OR/NOT
func NewSubWhereBuilder() *WhereBuilder {
	return NewWhereBuilder()
}
