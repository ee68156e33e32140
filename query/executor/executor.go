// Package executor runs prepared operations against a database adapter.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/satishbabariya/r2dbc-go/internal/debug"
	"github.com/satishbabariya/r2dbc-go/query/binding"
	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/runtime/database"
)

// RowHandler receives each row of a result in order. The row is only valid
// during the call. Returning an error stops the iteration.
type RowHandler func(row domain.Row, md domain.RowMetadata) error

// Executor runs operations. Every attempt creates a new statement from the
// adapter and binds the operation into it, so an operation can be retried
// safely. Transient failures are retried until the first row has been
// delivered.
type Executor struct {
	adapter     database.Adapter
	retryConfig RetryConfig
	middlewares []Middleware
}

// Option configures an Executor.
type Option func(*Executor)

// WithRetry sets the retry policy.
func WithRetry(config RetryConfig) Option {
	return func(e *Executor) { e.retryConfig = config }
}

// WithMiddleware appends middlewares.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(e *Executor) { e.middlewares = append(e.middlewares, middlewares...) }
}

// New creates an executor using DefaultRetryConfig.
func New(adapter database.Adapter, opts ...Option) *Executor {
	e := &Executor{adapter: adapter, retryConfig: DefaultRetryConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Adapter returns the adapter operations run against.
func (e *Executor) Adapter() database.Adapter { return e.adapter }

// Query runs op and passes each row to fn.
func (e *Executor) Query(ctx context.Context, op domain.Operation, fn RowHandler) error {
	event := newEvent(KindQuery, op)
	return e.executeWithMiddleware(ctx, event, func() error {
		delivered := false
		return e.retry(ctx, event, func() error {
			if err := ctx.Err(); err != nil {
				return permanent(err)
			}
			stmt, err := e.prepare(op)
			if err != nil {
				return permanent(err)
			}
			res, err := stmt.Query(ctx)
			if err != nil {
				return err
			}
			defer res.Close()

			md := res.Metadata()
			for res.Next() {
				delivered = true
				event.Rows++
				if err := fn(res.Row(), md); err != nil {
					return permanent(err)
				}
			}
			if err := res.Err(); err != nil {
				if delivered {
					return permanent(err)
				}
				return err
			}
			return nil
		})
	})
}

// Update runs op and returns the number of affected rows.
func (e *Executor) Update(ctx context.Context, op domain.Operation) (int64, error) {
	event := newEvent(KindUpdate, op)
	var count int64
	err := e.executeWithMiddleware(ctx, event, func() error {
		return e.retry(ctx, event, func() error {
			if err := ctx.Err(); err != nil {
				return permanent(err)
			}
			stmt, err := e.prepare(op)
			if err != nil {
				return permanent(err)
			}
			n, err := stmt.Exec(ctx)
			if err != nil {
				return err
			}
			count = n
			event.Rows = n
			return nil
		})
	})
	return count, err
}

func (e *Executor) prepare(op domain.Operation) (database.Statement, error) {
	stmt, err := e.adapter.NewStatement(op.SQL())
	if err != nil {
		return nil, err
	}
	if err := op.BindTo(stmt); err != nil {
		return nil, err
	}
	return stmt, nil
}

func newEvent(kind Kind, op domain.Operation) *QueryEvent {
	event := &QueryEvent{
		ID:    uuid.NewString(),
		Kind:  kind,
		SQL:   op.SQL(),
		Start: time.Now(),
	}
	if b, ok := op.(interface{ Bindings() []binding.Binding }); ok {
		for _, item := range b.Bindings() {
			if item.Null {
				event.Args = append(event.Args, nil)
				continue
			}
			event.Args = append(event.Args, item.Value)
		}
	}
	debug.Debug("prepared", "execution", event.ID, "kind", kind, "sql", event.SQL)
	return event
}
