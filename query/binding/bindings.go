package binding

import (
	"github.com/satishbabariya/r2dbc-go/query/domain"
)

// Parameter is a value with an explicit kind. Use it to bind a typed NULL,
// which some drivers need to infer the parameter type.
type Parameter struct {
	Value any
	Kind  domain.Kind
}

// NullOf returns a NULL parameter of the given kind.
func NullOf(kind domain.Kind) Parameter { return Parameter{Kind: kind} }

// Binding is one captured value and the marker it is bound through.
type Binding struct {
	Marker BindMarker
	Value  any
	Null   bool
	Kind   domain.Kind
}

// Apply writes the binding into target.
func (b Binding) Apply(target domain.BindTarget) error {
	if b.Null {
		return b.Marker.BindNull(target, b.Kind)
	}
	return b.Marker.Bind(target, b.Value)
}

// Bindings is an ordered set of bindings. The zero value is ready to use.
// Once handed to a prepared operation it must not be modified.
type Bindings struct {
	items []Binding
}

// NewBindings returns an empty Bindings with room for n entries.
func NewBindings(n int) *Bindings {
	return &Bindings{items: make([]Binding, 0, n)}
}

// Add captures value for marker. nil, a NULL domain.Value and a Parameter
// without value are recorded as NULL bindings.
func (b *Bindings) Add(marker BindMarker, value any) {
	switch v := value.(type) {
	case nil:
		b.AddNull(marker, domain.KindNull)
		return
	case Parameter:
		if v.Value == nil {
			b.AddNull(marker, v.Kind)
			return
		}
		value = v.Value
	case domain.Value:
		if v.IsNull() {
			b.AddNull(marker, domain.KindNull)
			return
		}
		value = v.Any()
	}
	b.items = append(b.items, Binding{Marker: marker, Value: value, Kind: domain.ValueOf(value).Kind()})
}

// AddNull captures a NULL of the given kind for marker.
func (b *Bindings) AddNull(marker BindMarker, kind domain.Kind) {
	b.items = append(b.items, Binding{Marker: marker, Null: true, Kind: kind})
}

// Len returns the number of bindings.
func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// All returns a copy of the bindings in capture order.
func (b *Bindings) All() []Binding {
	if b == nil {
		return nil
	}
	out := make([]Binding, len(b.items))
	copy(out, b.items)
	return out
}

// Apply writes every binding into target, stopping at the first error.
func (b *Bindings) Apply(target domain.BindTarget) error {
	if b == nil {
		return nil
	}
	for _, item := range b.items {
		if err := item.Apply(target); err != nil {
			return err
		}
	}
	return nil
}

// Merge returns a new Bindings holding the bindings of all inputs in order.
func Merge(sets ...*Bindings) *Bindings {
	n := 0
	for _, s := range sets {
		n += s.Len()
	}
	out := NewBindings(n)
	for _, s := range sets {
		if s != nil {
			out.items = append(out.items, s.items...)
		}
	}
	return out
}
