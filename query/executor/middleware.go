package executor

import (
	"context"
	"log/slog"
	"time"
)

// Kind is the type of statement execution.
type Kind string

const (
	KindQuery  Kind = "query"
	KindUpdate Kind = "update"
)

// QueryEvent represents a statement execution event
type QueryEvent struct {
	ID       string
	Kind     Kind
	SQL      string
	Args     []any
	Attempts int
	Rows     int64 // rows delivered or rows updated
	Duration time.Duration
	Error    error
	Start    time.Time
	End      time.Time
}

// Middleware is a function that intercepts statement execution
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

// Use adds a middleware to the chain
func (e *Executor) Use(middleware Middleware) {
	e.middlewares = append(e.middlewares, middleware)
}

// executeWithMiddleware executes exec with the middleware chain
func (e *Executor) executeWithMiddleware(ctx context.Context, event *QueryEvent, exec func() error) error {
	var next func() error
	index := 0

	next = func() error {
		if index >= len(e.middlewares) {
			// Last middleware, execute the actual statement
			err := exec()
			event.End = time.Now()
			event.Duration = event.End.Sub(event.Start)
			event.Error = err
			return err
		}

		middleware := e.middlewares[index]
		index++
		return middleware(ctx, event, next)
	}

	return next()
}

// LoggingMiddleware creates a middleware that logs statements
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		log := logger.With("execution", event.ID, "kind", event.Kind)
		log.DebugContext(ctx, "executing", "sql", event.SQL, "args", event.Args)
		err := next()
		if err != nil {
			log.ErrorContext(ctx, "execution failed", "error", err, "attempts", event.Attempts)
		} else {
			log.DebugContext(ctx, "execution completed", "duration", event.Duration, "rows", event.Rows, "attempts", event.Attempts)
		}
		return err
	}
}

// TimingMiddleware creates a middleware that measures execution time
func TimingMiddleware(onTiming func(sql string, duration time.Duration)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event.SQL, event.Duration)
		}
		return err
	}
}

// ErrorMiddleware creates a middleware that handles errors
func ErrorMiddleware(onError func(sql string, err error)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil && onError != nil {
			onError(event.SQL, err)
		}
		return err
	}
}
