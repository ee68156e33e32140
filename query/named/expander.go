package named

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/satishbabariya/r2dbc-go/query/binding"
	"github.com/satishbabariya/r2dbc-go/query/cache"
)

// DefaultCacheSize is the number of parsed statements kept by NewExpander
// when no size is given.
const DefaultCacheSize = 256

var (
	// ErrMissingParameter is returned when the SQL references a parameter
	// that has no value.
	ErrMissingParameter = errors.New("named: no value for parameter")
	// ErrEmptyCollection is returned when a slice parameter has no elements.
	ErrEmptyCollection = errors.New("named: empty collection parameter")
)

// Params holds the values for one expansion. Named values are looked up by
// exact name first, then ignoring case. Indexed values are zero-based.
type Params struct {
	Named   map[string]any
	Indexed map[int]any
}

func (p Params) lookup(name string) (any, bool) {
	if v, ok := p.Named[name]; ok {
		return v, true
	}
	for k, v := range p.Named {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// Expander turns SQL with :name parameters into prepared operations for a
// marker style. Safe for concurrent use.
type Expander struct {
	parsed *cache.LRUCache[string, *ParsedSQL]
}

// NewExpander returns an expander caching up to size parsed statements.
func NewExpander(size int) *Expander {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Expander{parsed: cache.NewLRUCache[string, *ParsedSQL](size, 0)}
}

// Parse returns the cached parse of sql.
func (e *Expander) Parse(sql string) (*ParsedSQL, error) {
	return e.parsed.GetOrCreate(sql, Parse)
}

// CacheStats reports parse cache statistics.
func (e *Expander) CacheStats() cache.Stats { return e.parsed.GetStats() }

// Expand renders sql for the markers produced by factory and captures the
// parameter values. Named parameters are replaced with markers; slices expand
// to a comma separated marker list and a slice of slices to a list of tuples.
// When markers are identifiable a repeated name reuses its markers. SQL with
// positional placeholders is left as written and bound by index.
func (e *Expander) Expand(sql string, factory binding.BindMarkersFactory, params Params) (*binding.Prepared[string], error) {
	p, err := e.Parse(sql)
	if err != nil {
		return nil, err
	}
	if p.HasNamed() {
		return expandNamed(p, factory, params)
	}
	return bindPositional(p, params)
}

func expandNamed(p *ParsedSQL, factory binding.BindMarkersFactory, params Params) (*binding.Prepared[string], error) {
	var (
		b        strings.Builder
		markers  = factory.Create()
		bindings = binding.NewBindings(len(p.names))
		reuse    = factory.Identifiable()
		rendered = make(map[string]string, len(p.names))
	)
	b.Grow(len(p.sql))

	for _, s := range p.segments {
		if s.kind != segmentNamed {
			b.WriteString(s.text)
			continue
		}
		if text, ok := rendered[s.name]; ok && reuse {
			b.WriteString(text)
			continue
		}

		value, ok := params.lookup(s.name)
		if !ok {
			return nil, fmt.Errorf("%w :%s", ErrMissingParameter, s.name)
		}
		text, err := renderValue(s.name, value, markers, bindings)
		if err != nil {
			return nil, err
		}
		rendered[s.name] = text
		b.WriteString(text)
	}

	return binding.NewPrepared(p.sql, b.String(), bindings), nil
}

func renderValue(name string, value any, markers binding.BindMarkers, bindings *binding.Bindings) (string, error) {
	rv, ok := collection(value)
	if !ok {
		m := markers.NextNamed(name)
		bindings.Add(m, value)
		return m.Placeholder(), nil
	}
	if rv.Len() == 0 {
		return "", fmt.Errorf("%w :%s", ErrEmptyCollection, name)
	}

	var b strings.Builder
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		elem := rv.Index(i).Interface()
		tuple, isTuple := collection(elem)
		if !isTuple {
			m := markers.NextNamed(name)
			bindings.Add(m, elem)
			b.WriteString(m.Placeholder())
			continue
		}
		b.WriteByte('(')
		for j := 0; j < tuple.Len(); j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			m := markers.NextNamed(name)
			bindings.Add(m, tuple.Index(j).Interface())
			b.WriteString(m.Placeholder())
		}
		b.WriteByte(')')
	}
	return b.String(), nil
}

func bindPositional(p *ParsedSQL, params Params) (*binding.Prepared[string], error) {
	bindings := binding.NewBindings(p.positional)
	bound := make(map[int]struct{}, p.positional)
	for _, s := range p.segments {
		if s.kind != segmentPositional {
			continue
		}
		if _, ok := bound[s.index]; ok {
			continue
		}
		value, ok := params.Indexed[s.index]
		if !ok {
			return nil, fmt.Errorf("%w %s (index %d)", ErrMissingParameter, s.text, s.index)
		}
		bindings.Add(binding.Positional(s.index, s.text), value)
		bound[s.index] = struct{}{}
	}
	return binding.NewPrepared(p.sql, p.sql, bindings), nil
}

// collection reports whether v expands into several markers. []byte is a
// scalar.
func collection(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv, false
		}
		return rv, true
	}
	return rv, false
}
