package client

import (
	"context"
	"errors"
	"iter"

	"github.com/satishbabariya/r2dbc-go/query/domain"
	"github.com/satishbabariya/r2dbc-go/query/mapper"
)

var (
	// ErrNoRows is returned by One and First when the result is empty.
	ErrNoRows = errors.New("client: no rows in result")
	// ErrIncorrectResultSize is returned by One when more than one row is
	// returned.
	ErrIncorrectResultSize = errors.New("client: incorrect result size, expected one row")
)

var errStop = errors.New("stop")

// FetchSpec runs a query and maps each row with a RowMapper.
type FetchSpec[T any] struct {
	spec      *Spec
	rowMapper mapper.RowMapper[T]
}

// Fetch maps rows to column maps using the client's row mapper.
func Fetch(spec *Spec) *FetchSpec[mapper.ColumnMap] {
	return &FetchSpec[mapper.ColumnMap]{spec: spec, rowMapper: spec.client.rowMapper}
}

// Map maps rows with rm.
func Map[T any](spec *Spec, rm mapper.RowMapper[T]) *FetchSpec[T] {
	return &FetchSpec[T]{spec: spec, rowMapper: rm}
}

// Each calls fn for every mapped row in result order.
func (f *FetchSpec[T]) Each(ctx context.Context, fn func(T) error) error {
	op, err := f.spec.Operation()
	if err != nil {
		return err
	}
	return f.spec.client.executor.Query(ctx, op, func(row domain.Row, md domain.RowMetadata) error {
		v, err := f.rowMapper.Apply(row, md)
		if err != nil {
			return err
		}
		return fn(v)
	})
}

// All returns every mapped row.
func (f *FetchSpec[T]) All(ctx context.Context) ([]T, error) {
	var out []T
	err := f.Each(ctx, func(v T) error {
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// One returns the only row. It fails with ErrNoRows on an empty result and
// with ErrIncorrectResultSize when there is more than one row.
func (f *FetchSpec[T]) One(ctx context.Context) (T, error) {
	var (
		out  T
		seen bool
	)
	err := f.Each(ctx, func(v T) error {
		if seen {
			return ErrIncorrectResultSize
		}
		out, seen = v, true
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if !seen {
		return out, ErrNoRows
	}
	return out, nil
}

// First returns the first row and discards the rest.
func (f *FetchSpec[T]) First(ctx context.Context) (T, error) {
	var (
		out  T
		seen bool
	)
	err := f.Each(ctx, func(v T) error {
		out, seen = v, true
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return out, err
	}
	if !seen {
		return out, ErrNoRows
	}
	return out, nil
}

// Stream yields mapped rows as they are read. A failure is yielded once as
// the last element. Breaking out of the loop closes the result.
func (f *FetchSpec[T]) Stream(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		err := f.Each(ctx, func(v T) error {
			if !yield(v, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			var zero T
			yield(zero, err)
		}
	}
}
