package builder

import (
	"testing"

	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBuilder(t *testing.T) {
	qb := NewQueryBuilder("legoset").Select("id", "name").Distinct().OrderBy("id", domain.Desc).Limit(10).Offset(20)
	qb.Where().Equals("manual", 12).IsNotNull("name")

	q := qb.Build()
	assert.Equal(t, "legoset", q.Table)
	assert.Equal(t, domain.Select, q.Operation)
	assert.Equal(t, []string{"id", "name"}, q.Columns)
	assert.True(t, q.Distinct)
	assert.Equal(t, []domain.OrderBy{{Field: "id", Direction: domain.Desc}}, q.Ordering)
	require.NotNil(t, q.Pagination.Limit)
	require.NotNil(t, q.Pagination.Offset)
	assert.Equal(t, 10, *q.Pagination.Limit)
	assert.Equal(t, 20, *q.Pagination.Offset)

	assert.Equal(t, domain.AND, q.Filter.Operator)
	assert.Equal(t, []domain.Condition{
		{Field: "manual", Operator: domain.Equals, Value: 12},
		{Field: "name", Operator: domain.IsNotNull},
	}, q.Filter.Conditions)
}

func TestQueryBuilder_NoWhere(t *testing.T) {
	q := NewQueryBuilder("legoset").Build()
	assert.Empty(t, q.Columns)
	assert.True(t, q.Filter.IsEmpty())
	assert.Nil(t, q.Pagination.Limit)
}

func TestWhereBuilder_Groups(t *testing.T) {
	w := NewWhereBuilder().GreaterThan("id", 1)
	w.OR(
		NewSubWhereBuilder().Equals("name", "a"),
		NewSubWhereBuilder().LessOrEqual("manual", 3),
		NewSubWhereBuilder(),
		nil,
	)
	w.NOT(NewSubWhereBuilder().In("id", []int{4, 5}))
	w.AND()

	f := w.Build()
	require.Len(t, f.Conditions, 1)
	require.Len(t, f.NestedFilters, 2)

	or := f.NestedFilters[0]
	assert.Equal(t, domain.OR, or.Operator)
	assert.Len(t, or.NestedFilters, 2)

	not := f.NestedFilters[1]
	assert.Equal(t, domain.NOT, not.Operator)
	require.Len(t, not.NestedFilters, 1)
	assert.Equal(t, domain.In, not.NestedFilters[0].Conditions[0].Operator)
}

func TestWhereBuilder_SetOperator(t *testing.T) {
	f := NewWhereBuilder().Like("name", "S%").StartsWith("name", "X").SetOperator(domain.OR).Build()
	assert.Equal(t, domain.OR, f.Operator)
	assert.Len(t, f.Conditions, 2)
}

func TestInsertBuilder_KeepsFirstPosition(t *testing.T) {
	q := NewInsertBuilder("legoset").Value("id", 1).Value("name", "X").Value("id", 2).Build()
	assert.Equal(t, domain.Insert, q.Operation)
	assert.Equal(t, []domain.Assignment{{Column: "id", Value: 2}, {Column: "name", Value: "X"}}, q.Assignments)
}

func TestUpdateAndDeleteBuilders(t *testing.T) {
	ub := NewUpdateBuilder("legoset").Set("manual", 1).Set("manual", 2)
	ub.Where().Equals("id", 42055)
	q := ub.Build()
	assert.Equal(t, domain.Update, q.Operation)
	assert.Equal(t, []domain.Assignment{{Column: "manual", Value: 2}}, q.Assignments)
	assert.Len(t, q.Filter.Conditions, 1)

	db := NewDeleteBuilder("legoset")
	db.Where().IsNull("manual")
	q = db.Build()
	assert.Equal(t, domain.Delete, q.Operation)
	assert.Equal(t, domain.IsNull, q.Filter.Conditions[0].Operator)
}
