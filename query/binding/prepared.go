package binding

import "github.com/satishbabariya/r2dbc-go/query/domain"

// Prepared is the default domain.PreparedOperation. It holds no mutable state
// and may be bound into any number of fresh targets.
type Prepared[S any] struct {
	source   S
	sql      string
	bindings *Bindings
}

// NewPrepared creates a prepared operation. bindings may be nil.
func NewPrepared[S any](source S, sql string, bindings *Bindings) *Prepared[S] {
	if bindings == nil {
		bindings = NewBindings(0)
	}
	return &Prepared[S]{source: source, sql: sql, bindings: bindings}
}

// Source returns the query source.
func (p *Prepared[S]) Source() S { return p.source }

// SQL returns the rendered statement.
func (p *Prepared[S]) SQL() string { return p.sql }

// BindTo applies the captured bindings to target.
func (p *Prepared[S]) BindTo(target domain.BindTarget) error {
	return p.bindings.Apply(target)
}

// Bindings returns a copy of the captured bindings, for rendering and logging.
func (p *Prepared[S]) Bindings() []Binding { return p.bindings.All() }

func (p *Prepared[S]) String() string { return p.sql }

var _ domain.PreparedOperation[string] = (*Prepared[string])(nil)
