// Package domaintest provides in-memory rows and bind targets for tests.
package domaintest

import (
	"errors"
	"fmt"

	"github.com/satishbabariya/r2dbc-go/query/domain"
)

// ErrAlreadyBound is returned when a slot is bound twice on one Target.
var ErrAlreadyBound = errors.New("domaintest: parameter already bound")

// Row is a domain.Row over a slice. Errs, when set, makes Get fail for the
// given ordinal.
type Row struct {
	Values []any
	Errs   map[int]error
}

// NewRow returns a Row holding values.
func NewRow(values ...any) *Row { return &Row{Values: values} }

// Get implements domain.Row.
func (r *Row) Get(index int) (any, error) {
	if err, ok := r.Errs[index]; ok {
		return nil, err
	}
	if index < 0 || index >= len(r.Values) {
		return nil, fmt.Errorf("domaintest: column index %d out of range [0,%d)", index, len(r.Values))
	}
	return r.Values[index], nil
}

// Null records a NULL binding.
type Null struct{ Kind domain.Kind }

// Target records every binding. Binding the same slot twice fails.
type Target struct {
	Indexed map[int]any
	Named   map[string]any
	// Order lists bound slots as "#<index>" or the parameter name.
	Order []string
	// Err, when set, is returned from every bind call.
	Err error
}

// NewTarget returns an empty Target.
func NewTarget() *Target {
	return &Target{Indexed: map[int]any{}, Named: map[string]any{}}
}

func (t *Target) Bind(index int, value any) error {
	if t.Err != nil {
		return t.Err
	}
	if _, ok := t.Indexed[index]; ok {
		return fmt.Errorf("%w: #%d", ErrAlreadyBound, index)
	}
	t.Indexed[index] = value
	t.Order = append(t.Order, fmt.Sprintf("#%d", index))
	return nil
}

func (t *Target) BindName(name string, value any) error {
	if t.Err != nil {
		return t.Err
	}
	if _, ok := t.Named[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, name)
	}
	t.Named[name] = value
	t.Order = append(t.Order, name)
	return nil
}

func (t *Target) BindNull(index int, kind domain.Kind) error {
	return t.Bind(index, Null{Kind: kind})
}

func (t *Target) BindNullName(name string, kind domain.Kind) error {
	return t.BindName(name, Null{Kind: kind})
}

var _ domain.BindTarget = (*Target)(nil)
