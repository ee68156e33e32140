package mysql

import (
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/runtime/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a, err := New(database.Config{URL: "user:pass@tcp(localhost:3306)/lego", ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, domain.MySQL, a.Dialect())
	assert.Equal(t, "?", a.BindMarkers().Create().Next().Placeholder())

	_, err = New(database.Config{URL: "not a dsn"})
	assert.Error(t, err)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1213}))
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1205}))
	assert.True(t, IsTransient(mysql.ErrInvalidConn))
	assert.False(t, IsTransient(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsTransient(errors.New("boom")))
}
