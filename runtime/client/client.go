// Package client provides the database client: SQL strings with named or
// positional parameters in, mapped rows or update counts out.
package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/query/executor"
	"github.com/satishbabariya/r2dbc-go/query/mapper"
	"github.com/satishbabariya/r2dbc-go/query/named"
	"github.com/satishbabariya/r2dbc-go/runtime/database"
	"github.com/satishbabariya/r2dbc-go/runtime/database/mysql"
	"github.com/satishbabariya/r2dbc-go/runtime/database/pgx"
	"github.com/satishbabariya/r2dbc-go/runtime/database/postgres"
	"github.com/satishbabariya/r2dbc-go/runtime/database/sqlite"
)

// Client is the main database client
type Client struct {
	adapter   database.Adapter
	executor  *executor.Executor
	expander  *named.Expander
	rowMapper mapper.RowMapper[mapper.ColumnMap]

	execOpts []executor.Option
}

// Option configures a Client.
type Option func(*Client)

// WithRowMapper sets the mapper Fetch uses.
func WithRowMapper(rm mapper.RowMapper[mapper.ColumnMap]) Option {
	return func(c *Client) {
		if rm != nil {
			c.rowMapper = rm
		}
	}
}

// WithCaseSensitiveKeys makes Fetch return maps with exact-case keys.
func WithCaseSensitiveKeys() Option {
	return WithRowMapper(mapper.NewColumnMapRowMapper(mapper.WithCaseSensitiveKeys()))
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(config executor.RetryConfig) Option {
	return func(c *Client) { c.execOpts = append(c.execOpts, executor.WithRetry(config)) }
}

// WithMiddleware adds execution middlewares.
func WithMiddleware(middlewares ...executor.Middleware) Option {
	return func(c *Client) { c.execOpts = append(c.execOpts, executor.WithMiddleware(middlewares...)) }
}

// WithExpander shares a named parameter expander, and its parse cache,
// between clients.
func WithExpander(e *named.Expander) Option {
	return func(c *Client) {
		if e != nil {
			c.expander = e
		}
	}
}

// New creates a client over a connected adapter.
func New(adapter database.Adapter, opts ...Option) *Client {
	c := &Client{
		adapter:   adapter,
		expander:  named.NewExpander(named.DefaultCacheSize),
		rowMapper: mapper.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.executor = executor.New(adapter, c.execOpts...)
	return c
}

// Open creates the adapter for config.Provider, connects it and returns a
// client over it.
func Open(ctx context.Context, config database.Config, opts ...Option) (*Client, error) {
	adapter, err := NewAdapter(config)
	if err != nil {
		return nil, err
	}
	if err := adapter.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect %s: %w", config.Provider, err)
	}
	return New(adapter, opts...), nil
}

// NewAdapter maps a provider name to its adapter.
func NewAdapter(config database.Config) (database.Adapter, error) {
	switch strings.ToLower(config.Provider) {
	case "postgresql", "postgres":
		return postgres.New(config), nil
	case "pgx":
		return pgx.New(config), nil
	case "mysql":
		a, err := mysql.New(config)
		if err != nil {
			return nil, err
		}
		return a, nil
	case "sqlite", "sqlite3":
		return sqlite.New(config), nil
	default:
		return nil, fmt.Errorf("%w: %s", database.ErrUnsupportedProvider, config.Provider)
	}
}

// Adapter returns the underlying adapter.
func (c *Client) Adapter() database.Adapter { return c.adapter }

// Executor returns the executor statements run through.
func (c *Client) Executor() *executor.Executor { return c.executor }

// Expander returns the named parameter expander.
func (c *Client) Expander() *named.Expander { return c.expander }

// Ping checks the database connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.adapter.Ping(ctx)
}

// Close disconnects the adapter.
func (c *Client) Close(ctx context.Context) error {
	return c.adapter.Disconnect(ctx)
}

// SQL starts a statement from a SQL string. Use :name placeholders with Bind
// or the driver's positional placeholders ($1, ?) with BindIndex.
func (c *Client) SQL(query string) *Spec {
	return &Spec{client: c, sql: query}
}

// Execute starts a statement from a prepared operation, such as compiler
// output.
func (c *Client) Execute(op domain.Operation) *Spec {
	return &Spec{client: c, op: op}
}
