package database_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/runtime/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Positional(t *testing.T) {
	p := database.NewParams()
	require.NoError(t, p.Bind(1, "b"))
	require.NoError(t, p.Bind(0, "a"))

	args, err := p.Args()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, args)

	err = p.Bind(0, "again")
	assert.ErrorIs(t, err, database.ErrAlreadyBound)

	assert.ErrorIs(t, p.BindName("x", 1), database.ErrMixedBinding)
}

func TestParams_Gap(t *testing.T) {
	p := database.NewParams()
	require.NoError(t, p.Bind(0, 1))
	require.NoError(t, p.Bind(2, 3))

	_, err := p.Args()
	assert.ErrorIs(t, err, database.ErrUnboundParameter)
}

func TestParams_Named(t *testing.T) {
	p := database.NewParams()
	require.NoError(t, p.BindName("P0_manual", 42))
	require.NoError(t, p.BindNullName("P1_name", domain.KindString))
	assert.ErrorIs(t, p.BindName("P0_manual", 1), database.ErrAlreadyBound)
	assert.ErrorIs(t, p.Bind(0, 1), database.ErrMixedBinding)

	args, err := p.Args()
	require.NoError(t, err)
	assert.Equal(t, []any{sql.Named("P0_manual", 42), sql.Named("P1_name", sql.NullString{})}, args)

	order, values := p.NamedValues()
	assert.Equal(t, []string{"P0_manual", "P1_name"}, order)
	assert.Equal(t, 42, values["P0_manual"])
}

func TestNullValue(t *testing.T) {
	assert.Equal(t, sql.NullInt64{}, database.NullValue(domain.KindInt))
	assert.Equal(t, sql.NullTime{}, database.NullValue(domain.KindTime))
	assert.Equal(t, []byte(nil), database.NullValue(domain.KindBytes))
	assert.Nil(t, database.NullValue(domain.KindNull))
}

type classifier struct{ database.Adapter }

func (classifier) IsTransient(err error) bool { return err.Error() == "busy" }

func TestIsTransient(t *testing.T) {
	a := classifier{}
	assert.True(t, database.IsTransient(a, errors.New("busy")))
	assert.True(t, database.IsTransient(a, fmt.Errorf("exec: %w", driver.ErrBadConn)))
	assert.False(t, database.IsTransient(a, errors.New("syntax error")))
	assert.False(t, database.IsTransient(a, context.Canceled))
	assert.False(t, database.IsTransient(a, nil))
}

func openSQLite(t *testing.T) *database.SQLAdapter {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	a := database.NewSQLAdapterFromDB(db, domain.SQLite)
	require.NoError(t, a.Connect(context.Background()))
	return a
}

func TestSQLAdapter_StatementRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := openSQLite(t)

	stmt, err := a.NewStatement(`CREATE TABLE legoset (id INTEGER PRIMARY KEY, name TEXT, manual INTEGER)`)
	require.NoError(t, err)
	_, err = stmt.Exec(ctx)
	require.NoError(t, err)

	insert, err := a.NewStatement(`INSERT INTO legoset (id, name, manual) VALUES (?, ?, ?)`)
	require.NoError(t, err)
	require.NoError(t, insert.Bind(0, 42055))
	require.NoError(t, insert.Bind(1, "SCHAUFELRADBAGGER"))
	require.NoError(t, insert.BindNull(2, domain.KindInt))
	n, err := insert.Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	sel, err := a.NewStatement(`SELECT id, name, manual FROM legoset WHERE id = ?`)
	require.NoError(t, err)
	require.NoError(t, sel.Bind(0, 42055))
	res, err := sel.Query(ctx)
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, []string{"id", "name", "manual"}, domain.ColumnNames(res.Metadata()))
	require.True(t, res.Next())
	id, err := res.Row().Get(0)
	require.NoError(t, err)
	assert.Equal(t, int64(42055), id)
	manual, err := res.Row().Get(2)
	require.NoError(t, err)
	assert.Nil(t, manual)

	_, err = res.Row().Get(3)
	assert.Error(t, err)

	assert.False(t, res.Next())
	assert.NoError(t, res.Err())
}

func TestSQLAdapter_NotConnected(t *testing.T) {
	a := database.NewSQLAdapter("sqlite3", domain.SQLite, database.Config{URL: ":memory:"})
	_, err := a.NewStatement("SELECT 1")
	assert.ErrorIs(t, err, database.ErrNotConnected)
	assert.ErrorIs(t, a.Ping(context.Background()), database.ErrNotConnected)
	assert.NoError(t, a.Disconnect(context.Background()))
}

func TestSQLAdapter_ConnectAndDisconnect(t *testing.T) {
	ctx := context.Background()
	cfg := database.DefaultConfig()
	cfg.URL = ":memory:"
	a := database.NewSQLAdapter("sqlite3", domain.SQLite, cfg)

	require.NoError(t, a.Connect(ctx))
	assert.NoError(t, a.Ping(ctx))
	assert.Equal(t, domain.SQLite, a.Dialect())
	assert.Equal(t, "?", a.BindMarkers().Create().Next().Placeholder())
	assert.False(t, a.IsTransient(errors.New("x")))
	require.NoError(t, a.Disconnect(ctx))
	assert.ErrorIs(t, a.Ping(ctx), database.ErrNotConnected)
}
