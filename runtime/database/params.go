package database

import (
	"database/sql"
	"fmt"

	"github.com/satishbabariya/r2dbc-go/query/domain"
)

// Params collects the values bound to one statement. Each slot can be bound
// once; positional and named slots cannot be mixed.
type Params struct {
	indexed map[int]any
	named   map[string]any
	order   []string
}

// NewParams returns an empty parameter set.
func NewParams() *Params { return newParams() }

func newParams() *Params {
	return &Params{indexed: map[int]any{}, named: map[string]any{}}
}

// Bind sets the zero-based positional parameter.
func (p *Params) Bind(index int, value any) error {
	if index < 0 {
		return fmt.Errorf("invalid parameter index %d", index)
	}
	if len(p.named) > 0 {
		return ErrMixedBinding
	}
	if _, ok := p.indexed[index]; ok {
		return fmt.Errorf("%w: #%d", ErrAlreadyBound, index)
	}
	p.indexed[index] = value
	return nil
}

// BindName sets a named parameter.
func (p *Params) BindName(name string, value any) error {
	if len(p.indexed) > 0 {
		return ErrMixedBinding
	}
	if _, ok := p.named[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, name)
	}
	p.named[name] = value
	p.order = append(p.order, name)
	return nil
}

// BindNull sets the positional parameter to a typed NULL.
func (p *Params) BindNull(index int, kind domain.Kind) error {
	return p.Bind(index, NullValue(kind))
}

// BindNullName sets the named parameter to a typed NULL.
func (p *Params) BindNullName(name string, kind domain.Kind) error {
	return p.BindName(name, NullValue(kind))
}

// Named reports whether the parameters are bound by name.
func (p *Params) Named() bool { return len(p.named) > 0 }

// Positional returns the positional values in order. A gap in the indices
// is an error.
func (p *Params) Positional() ([]any, error) {
	args := make([]any, len(p.indexed))
	for i := range args {
		v, ok := p.indexed[i]
		if !ok {
			return nil, fmt.Errorf("%w: #%d", ErrUnboundParameter, i)
		}
		args[i] = v
	}
	return args, nil
}

// NamedValues returns the named values in bind order.
func (p *Params) NamedValues() ([]string, map[string]any) {
	return append([]string(nil), p.order...), p.named
}

// Args returns database/sql arguments, wrapping named values in sql.Named.
func (p *Params) Args() ([]any, error) {
	if !p.Named() {
		return p.Positional()
	}
	args := make([]any, 0, len(p.order))
	for _, name := range p.order {
		args = append(args, sql.Named(name, p.named[name]))
	}
	return args, nil
}

// NullValue returns a typed NULL for kind so drivers can infer the
// parameter type.
func NullValue(kind domain.Kind) any {
	switch kind {
	case domain.KindBool:
		return sql.NullBool{}
	case domain.KindInt, domain.KindUint:
		return sql.NullInt64{}
	case domain.KindFloat:
		return sql.NullFloat64{}
	case domain.KindString:
		return sql.NullString{}
	case domain.KindTime:
		return sql.NullTime{}
	case domain.KindBytes:
		return []byte(nil)
	default:
		return nil
	}
}
