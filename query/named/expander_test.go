package named

import (
	"testing"

	"github.com/satishbabariya/r2dbc-go/query/binding"
	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/query/domain/domaintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SkipsOpaqueRegions(t *testing.T) {
	sql := `SELECT ':a', "col:b", ` + "`x:c`" + ` -- :d
/* :e */ $$ :f $$, id::text FROM t WHERE n = :name AND m = :other AND k = :name`

	p, err := Parse(sql)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "other"}, p.ParameterNames())
	assert.Equal(t, 0, p.PositionalCount())
	assert.Equal(t, sql, p.SQL())
}

func TestParse_TaggedDollarQuotes(t *testing.T) {
	sql := "SELECT $fn$ a :b $$ 'x $fn$, :c, $body$ :d\n:e $body$ FROM t WHERE id = :id"
	p, err := Parse(sql)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "id"}, p.ParameterNames())
	assert.Equal(t, sql, p.SQL())

	p, err = Parse("SELECT :a, $tag$ :b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, p.ParameterNames())

	op, err := NewExpander(DefaultCacheSize).Expand("SELECT $q$ :x $q$ || :y", binding.ForDialect(domain.PostgreSQL), Params{Named: map[string]any{"y": "v"}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT $q$ :x $q$ || $1", op.SQL())
}

func TestParse_Positional(t *testing.T) {
	p, err := Parse("UPDATE legoset SET manual = $1 WHERE id = $2 OR parent = $2")
	require.NoError(t, err)
	assert.False(t, p.HasNamed())
	assert.Equal(t, 2, p.PositionalCount())

	p, err = Parse("SELECT * FROM t WHERE a = ? AND b = ? AND c = '?'")
	require.NoError(t, err)
	assert.Equal(t, 2, p.PositionalCount())
}

func TestParse_MixedIsRejected(t *testing.T) {
	_, err := Parse("SELECT * FROM t WHERE a = :a AND b = $1")
	assert.ErrorIs(t, err, ErrMixedParameters)
}

func TestExpand_Dialects(t *testing.T) {
	const sql = "UPDATE legoset SET manual = :manual WHERE manual = :manual"
	tests := []struct {
		name    string
		dialect domain.SQLDialect
		want    string
		binds   int
	}{
		{"postgres reuses markers", domain.PostgreSQL, "UPDATE legoset SET manual = $1 WHERE manual = $1", 1},
		{"mysql repeats markers", domain.MySQL, "UPDATE legoset SET manual = ? WHERE manual = ?", 2},
		{"sqlserver named markers", domain.SQLServer, "UPDATE legoset SET manual = @P0_manual WHERE manual = @P0_manual", 1},
	}

	e := NewExpander(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := e.Expand(sql, binding.ForDialect(tt.dialect), Params{Named: map[string]any{"manual": 42}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, op.SQL())
			assert.Equal(t, sql, op.Source())
			assert.Len(t, op.Bindings(), tt.binds)
		})
	}
}

func TestExpand_BindsValues(t *testing.T) {
	e := NewExpander(8)
	op, err := e.Expand("SELECT * FROM t WHERE a = :a AND b = :B",
		binding.ForDialect(domain.PostgreSQL),
		Params{Named: map[string]any{"a": "x", "b": nil}})
	require.NoError(t, err)

	target := domaintest.NewTarget()
	require.NoError(t, op.BindTo(target))
	assert.Equal(t, "x", target.Indexed[0])
	assert.Equal(t, domaintest.Null{Kind: domain.KindNull}, target.Indexed[1])
}

func TestExpand_Collections(t *testing.T) {
	e := NewExpander(8)
	op, err := e.Expand("SELECT * FROM t WHERE id IN (:ids) AND (a, b) IN (:pairs)",
		binding.ForDialect(domain.PostgreSQL),
		Params{Named: map[string]any{
			"ids":   []int{1, 2, 3},
			"pairs": [][]any{{"a", 1}, {"b", 2}},
		}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE id IN ($1, $2, $3) AND (a, b) IN (($4, $5), ($6, $7))", op.SQL())

	target := domaintest.NewTarget()
	require.NoError(t, op.BindTo(target))
	assert.Equal(t, 3, target.Indexed[2])
	assert.Equal(t, "b", target.Indexed[5])
}

func TestExpand_BytesAreScalar(t *testing.T) {
	op, err := NewExpander(1).Expand("INSERT INTO t (b) VALUES (:b)",
		binding.ForDialect(domain.SQLite),
		Params{Named: map[string]any{"b": []byte("raw")}})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t (b) VALUES (?)", op.SQL())
	assert.Len(t, op.Bindings(), 1)
}

func TestExpand_Errors(t *testing.T) {
	e := NewExpander(8)
	pg := binding.ForDialect(domain.PostgreSQL)

	_, err := e.Expand("SELECT :missing", pg, Params{})
	assert.ErrorIs(t, err, ErrMissingParameter)
	assert.Contains(t, err.Error(), ":missing")

	_, err = e.Expand("SELECT * FROM t WHERE id IN (:ids)", pg, Params{Named: map[string]any{"ids": []int{}}})
	assert.ErrorIs(t, err, ErrEmptyCollection)

	_, err = e.Expand("SELECT $2", pg, Params{Indexed: map[int]any{0: 1}})
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestExpand_PositionalPassThrough(t *testing.T) {
	e := NewExpander(8)
	const sql = "UPDATE legoset SET manual = $1 WHERE id = $2 OR parent = $2"
	op, err := e.Expand(sql, binding.ForDialect(domain.PostgreSQL), Params{Indexed: map[int]any{0: "m", 1: 7}})
	require.NoError(t, err)
	assert.Equal(t, sql, op.SQL())

	target := domaintest.NewTarget()
	require.NoError(t, op.BindTo(target))
	assert.Equal(t, map[int]any{0: "m", 1: 7}, target.Indexed)
	assert.Equal(t, []string{"#0", "#1"}, target.Order)
}

func TestExpand_NoParameters(t *testing.T) {
	op, err := NewExpander(8).Expand("SELECT 1", binding.ForDialect(domain.MySQL), Params{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", op.SQL())
	assert.Empty(t, op.Bindings())
}

func TestExpander_CachesParse(t *testing.T) {
	e := NewExpander(8)
	for i := 0; i < 3; i++ {
		_, err := e.Expand("SELECT :a", binding.ForDialect(domain.MySQL), Params{Named: map[string]any{"a": i}})
		require.NoError(t, err)
	}
	stats := e.CacheStats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, 1, stats.Size)
}
