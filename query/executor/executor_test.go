package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/satishbabariya/r2dbc-go/query/binding"
	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/runtime/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("connection reset")
	errFatal     = errors.New("syntax error")
)

// plan scripts one execution attempt.
type plan struct {
	err     error   // returned from Query or Exec
	rows    [][]any // delivered before rowErr
	rowErr  error
	updated int64
}

type fakeAdapter struct {
	plans      []plan
	statements []*fakeStatement
}

func (a *fakeAdapter) Connect(context.Context) error           { return nil }
func (a *fakeAdapter) Disconnect(context.Context) error        { return nil }
func (a *fakeAdapter) Ping(context.Context) error              { return nil }
func (a *fakeAdapter) Dialect() domain.SQLDialect              { return domain.PostgreSQL }
func (a *fakeAdapter) BindMarkers() binding.BindMarkersFactory { return binding.ForDialect(domain.PostgreSQL) }
func (a *fakeAdapter) IsTransient(err error) bool              { return errors.Is(err, errTransient) }

func (a *fakeAdapter) NewStatement(sql string) (database.Statement, error) {
	i := min(len(a.statements), len(a.plans)-1)
	stmt := &fakeStatement{Params: database.NewParams(), sql: sql, plan: a.plans[i]}
	a.statements = append(a.statements, stmt)
	return stmt, nil
}

type fakeStatement struct {
	*database.Params
	sql  string
	plan plan
}

func (s *fakeStatement) Query(context.Context) (database.Result, error) {
	if s.plan.err != nil {
		return nil, s.plan.err
	}
	return &fakeResult{plan: s.plan, pos: -1}, nil
}

func (s *fakeStatement) Exec(context.Context) (int64, error) {
	if s.plan.err != nil {
		return 0, s.plan.err
	}
	return s.plan.updated, nil
}

type fakeResult struct {
	plan plan
	pos  int
}

func (r *fakeResult) Next() bool {
	r.pos++
	return r.pos < len(r.plan.rows)
}

func (r *fakeResult) Row() domain.Row              { return database.NewValuesRow(r.plan.rows[r.pos]) }
func (r *fakeResult) Metadata() domain.RowMetadata { return domain.MetadataOf("id", "name") }
func (r *fakeResult) Err() error                   { return r.plan.rowErr }
func (r *fakeResult) Close() error                 { return nil }

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
}

func operation(values ...any) *binding.Prepared[string] {
	b := binding.NewBindings(len(values))
	for i, v := range values {
		b.Add(binding.Positional(i, fmt.Sprintf("$%d", i+1)), v)
	}
	return binding.NewPrepared("SELECT id, name FROM lego_set WHERE id = $1", "SELECT id, name FROM lego_set WHERE id = $1", b)
}

func collect(t *testing.T, exec *Executor, op domain.Operation) ([][]any, error) {
	t.Helper()
	var got [][]any
	err := exec.Query(context.Background(), op, func(row domain.Row, md domain.RowMetadata) error {
		values := make([]any, len(md.ColumnMetadatas()))
		for i := range values {
			v, err := row.Get(i)
			if err != nil {
				return err
			}
			values[i] = v
		}
		got = append(got, values)
		return nil
	})
	return got, err
}

func TestQuery_DeliversRowsInOrder(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{{rows: [][]any{{int64(42055), "SCHAUFELRADBAGGER"}, {int64(42056), "PORSCHE"}}}}}
	exec := New(adapter, WithRetry(fastRetry(3)))

	got, err := collect(t, exec, operation(int64(42055)))
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(42055), "SCHAUFELRADBAGGER"}, {int64(42056), "PORSCHE"}}, got)

	require.Len(t, adapter.statements, 1)
	args, err := adapter.statements[0].Positional()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(42055)}, args)
	assert.Equal(t, "SELECT id, name FROM lego_set WHERE id = $1", adapter.statements[0].sql)
}

func TestQuery_RetriesTransientFailureWithFreshStatement(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{
		{err: errTransient},
		{rows: [][]any{{int64(1), "a"}}},
	}}
	exec := New(adapter, WithRetry(fastRetry(3)))

	got, err := collect(t, exec, operation(int64(1)))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.Len(t, adapter.statements, 2)
	assert.NotSame(t, adapter.statements[0], adapter.statements[1])
	for _, stmt := range adapter.statements {
		args, err := stmt.Positional()
		require.NoError(t, err)
		assert.Equal(t, []any{int64(1)}, args)
	}
}

func TestQuery_NoRetryAfterRowsDelivered(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{
		{rows: [][]any{{int64(1), "a"}}, rowErr: errTransient},
		{rows: [][]any{{int64(1), "a"}, {int64(2), "b"}}},
	}}
	exec := New(adapter, WithRetry(fastRetry(3)))

	got, err := collect(t, exec, operation(int64(1)))
	assert.Same(t, errTransient, err)
	assert.Len(t, got, 1)
	assert.Len(t, adapter.statements, 1)
}

func TestQuery_NonTransientFailsImmediately(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{{err: errFatal}}}
	exec := New(adapter, WithRetry(fastRetry(5)))

	_, err := collect(t, exec, operation(int64(1)))
	assert.Same(t, errFatal, err)
	assert.Len(t, adapter.statements, 1)
}

func TestQuery_HandlerErrorStopsIteration(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{{rows: [][]any{{int64(1), "a"}, {int64(2), "b"}}}}}
	exec := New(adapter, WithRetry(fastRetry(3)))

	stop := errors.New("stop")
	calls := 0
	err := exec.Query(context.Background(), operation(int64(1)), func(domain.Row, domain.RowMetadata) error {
		calls++
		return stop
	})
	assert.Same(t, stop, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, adapter.statements, 1)
}

func TestQuery_BindErrorReturnedUnchanged(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{{}}}
	exec := New(adapter, WithRetry(fastRetry(3)))

	b := binding.NewBindings(2)
	b.Add(binding.Positional(0, "$1"), 1)
	b.Add(binding.Positional(0, "$1"), 2)
	op := binding.NewPrepared("SELECT $1", "SELECT $1", b)

	_, err := collect(t, exec, op)
	assert.ErrorIs(t, err, database.ErrAlreadyBound)
	assert.Len(t, adapter.statements, 1)
}

func TestQuery_CanceledContext(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{{}}}
	exec := New(adapter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := exec.Query(ctx, operation(), func(domain.Row, domain.RowMetadata) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, adapter.statements)
}

func TestUpdate(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{{err: errTransient}, {updated: 3}}}
	exec := New(adapter, WithRetry(fastRetry(2)))

	n, err := exec.Update(context.Background(), operation("x"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Len(t, adapter.statements, 2)
}

func TestUpdate_RetriesExhausted(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{{err: errTransient}}}
	exec := New(adapter, WithRetry(fastRetry(2)))

	n, err := exec.Update(context.Background(), operation("x"))
	assert.Same(t, errTransient, err)
	assert.Zero(t, n)
	assert.Len(t, adapter.statements, 2)
}

func TestNoRetry(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{{err: errTransient}}}
	exec := New(adapter, WithRetry(NoRetry()))

	_, err := exec.Update(context.Background(), operation())
	assert.Same(t, errTransient, err)
	assert.Len(t, adapter.statements, 1)
}

func TestMiddleware_OrderAndEvent(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{{err: errTransient}, {updated: 2}}}

	var trace []string
	var seen *QueryEvent
	record := func(name string) Middleware {
		return func(ctx context.Context, event *QueryEvent, next func() error) error {
			trace = append(trace, name+":before")
			err := next()
			trace = append(trace, name+":after")
			seen = event
			return err
		}
	}
	exec := New(adapter, WithRetry(fastRetry(3)), WithMiddleware(record("outer")))
	exec.Use(record("inner"))

	_, err := exec.Update(context.Background(), operation("x", nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"outer:before", "inner:before", "inner:after", "outer:after"}, trace)
	require.NotNil(t, seen)
	_, parseErr := uuid.Parse(seen.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, KindUpdate, seen.Kind)
	assert.Equal(t, []any{"x", nil}, seen.Args)
	assert.Equal(t, 2, seen.Attempts)
	assert.Equal(t, int64(2), seen.Rows)
	assert.NoError(t, seen.Error)
	assert.False(t, seen.End.Before(seen.Start))
}

func TestTimingAndErrorMiddleware(t *testing.T) {
	adapter := &fakeAdapter{plans: []plan{{err: errFatal}}}

	var timedSQL, failedSQL string
	var failed error
	exec := New(adapter,
		WithMiddleware(
			TimingMiddleware(func(sql string, _ time.Duration) { timedSQL = sql }),
			ErrorMiddleware(func(sql string, err error) { failedSQL, failed = sql, err }),
		),
	)

	_, err := exec.Update(context.Background(), operation())
	assert.Same(t, errFatal, err)
	assert.Equal(t, adapter.statements[0].sql, timedSQL)
	assert.Equal(t, timedSQL, failedSQL)
	assert.Same(t, errFatal, failed)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := &fakeAdapter{plans: []plan{{rows: [][]any{{int64(1), "a"}}}}}
	exec := New(adapter, WithMiddleware(LoggingMiddleware(logger)))

	_, err := collect(t, exec, operation(int64(1)))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "kind=query")
	assert.Contains(t, buf.String(), "execution completed")
	assert.Contains(t, buf.String(), "rows=1")
}
