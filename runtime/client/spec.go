package client

import (
	"context"
	"errors"

	"github.com/satishbabariya/r2dbc-go/query/binding"
	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/query/named"
)

var errOperationBound = errors.New("client: parameters cannot be bound to a prepared operation")

// Spec is a statement and its parameter values. Bind calls return the same
// Spec; a Spec must not be shared between goroutines while binding.
type Spec struct {
	client *Client
	sql    string
	op     domain.Operation
	params named.Params
}

// Bind sets a named parameter. A slice value expands to a list of markers.
func (s *Spec) Bind(name string, value any) *Spec {
	if s.params.Named == nil {
		s.params.Named = map[string]any{}
	}
	s.params.Named[name] = value
	return s
}

// BindIndex sets the zero-based positional parameter.
func (s *Spec) BindIndex(index int, value any) *Spec {
	if s.params.Indexed == nil {
		s.params.Indexed = map[int]any{}
	}
	s.params.Indexed[index] = value
	return s
}

// BindNull sets a named parameter to NULL of the given kind.
func (s *Spec) BindNull(name string, kind domain.Kind) *Spec {
	return s.Bind(name, binding.NullOf(kind))
}

// BindIndexNull sets a positional parameter to NULL of the given kind.
func (s *Spec) BindIndexNull(index int, kind domain.Kind) *Spec {
	return s.BindIndex(index, binding.NullOf(kind))
}

// Operation expands the statement for the adapter's bind markers.
func (s *Spec) Operation() (domain.Operation, error) {
	if s.op != nil {
		if len(s.params.Named) > 0 || len(s.params.Indexed) > 0 {
			return nil, errOperationBound
		}
		return s.op, nil
	}
	op, err := s.client.expander.Expand(s.sql, s.client.adapter.BindMarkers(), s.params)
	if err != nil {
		return nil, err
	}
	return op, nil
}

// RowsUpdated runs the statement and returns the number of affected rows.
func (s *Spec) RowsUpdated(ctx context.Context) (int64, error) {
	op, err := s.Operation()
	if err != nil {
		return 0, err
	}
	return s.client.executor.Update(ctx, op)
}

// Void is the result of a modifying statement whose count is discarded.
type Void struct{}

// UpdateResult lists the result types a modifying statement converts its
// update count to.
type UpdateResult interface {
	int | int64 | float64 | bool | Void
}

// Modifying runs spec and converts the update count to R. A bool is true
// when at least one row changed.
func Modifying[R UpdateResult](ctx context.Context, spec *Spec) (R, error) {
	var out R
	n, err := spec.RowsUpdated(ctx)
	if err != nil {
		return out, err
	}
	switch p := any(&out).(type) {
	case *int:
		*p = int(n)
	case *int64:
		*p = n
	case *float64:
		*p = float64(n)
	case *bool:
		*p = n > 0
	}
	return out, nil
}
