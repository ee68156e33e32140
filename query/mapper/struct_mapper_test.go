package mapper

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/query/domain/domaintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type audit struct {
	CreatedAt time.Time `db:"created_at"`
}

type legoSet struct {
	audit
	ID      int    `db:"id"`
	Name    string `json:"name,omitempty"`
	Manual  *int64 `db:"manual"`
	Price   float64
	Active  bool           `db:"active"`
	Note    sql.NullString `db:"note"`
	Ignored string         `db:"-"`
	hidden  string
}

func TestStruct_MapsColumns(t *testing.T) {
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	row := domaintest.NewRow(int64(42), []byte("SCHAUFELRADBAGGER"), int32(3), "12.5", int64(1), "memo", "x", created)
	md := domain.MetadataOf("ID", "NAME", "manual", "price", "active", "note", "ignored", "created_at")

	got, err := Struct[legoSet]().Apply(row, md)
	require.NoError(t, err)

	assert.Equal(t, 42, got.ID)
	assert.Equal(t, "SCHAUFELRADBAGGER", got.Name)
	require.NotNil(t, got.Manual)
	assert.Equal(t, int64(3), *got.Manual)
	assert.Equal(t, 12.5, got.Price)
	assert.True(t, got.Active)
	assert.Equal(t, sql.NullString{String: "memo", Valid: true}, got.Note)
	assert.Empty(t, got.Ignored)
	assert.Empty(t, got.hidden)
	assert.Equal(t, created, got.CreatedAt)
}

func TestStruct_NullsAndMissingColumns(t *testing.T) {
	got, err := Struct[*legoSet]().Apply(domaintest.NewRow(1, nil), domain.MetadataOf("id", "manual"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.ID)
	assert.Nil(t, got.Manual)
	assert.False(t, got.Note.Valid)
}

func TestStruct_Errors(t *testing.T) {
	_, err := Struct[int]().Apply(domaintest.NewRow(1), domain.MetadataOf("id"))
	assert.ErrorIs(t, err, ErrNotStruct)

	_, err = Struct[legoSet]().Apply(domaintest.NewRow("seven"), domain.MetadataOf("id"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column id")

	boom := errors.New("decode")
	row := domaintest.NewRow(1)
	row.Errs = map[int]error{0: boom}
	_, err = Struct[legoSet]().Apply(row, domain.MetadataOf("id"))
	assert.Same(t, boom, err)
}

func TestStruct_Overflow(t *testing.T) {
	type small struct {
		N int8 `db:"n"`
	}
	_, err := Struct[small]().Apply(domaintest.NewRow(int64(300)), domain.MetadataOf("n"))
	assert.ErrorContains(t, err, "overflows")

	type rec struct {
		N int `db:"n"`
	}
	tests := []struct {
		name  string
		value any
		want  int
		ok    bool
	}{
		{"integral float", 3.0, 3, true},
		{"negative integral float", -2.0, -2, true},
		{"fraction", 1.9, 0, false},
		{"too large", 1e30, 0, false},
		{"too small", -1e30, 0, false},
		{"two to the 63", 9223372036854775808.0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Struct[rec]().Apply(domaintest.NewRow(tt.value), domain.MetadataOf("n"))
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.N)
		})
	}

	_, err = SingleColumn[int]().Apply(domaintest.NewRow(1e30), domain.MetadataOf("n"))
	assert.Error(t, err)
	_, err = SingleColumn[int8]().Apply(domaintest.NewRow(float32(200)), domain.MetadataOf("n"))
	assert.ErrorContains(t, err, "overflows")
}

func TestSingleColumn(t *testing.T) {
	ids, err := SingleColumn[int]().Apply(domaintest.NewRow(int64(5)), domain.MetadataOf("id"))
	require.NoError(t, err)
	assert.Equal(t, 5, ids)

	s, err := SingleColumn[string]().Apply(domaintest.NewRow([]byte("abc")), domain.MetadataOf("name"))
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	f, err := SingleColumn[float64]().Apply(domaintest.NewRow([]byte("2.5")), domain.MetadataOf("avg"))
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	v, err := SingleColumn[any]().Apply(domaintest.NewRow(nil), domain.MetadataOf("x"))
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = SingleColumn[int]().Apply(domaintest.NewRow(1, 2), domain.MetadataOf("a", "b"))
	assert.ErrorIs(t, err, ErrColumnCount)
}
