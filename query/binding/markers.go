// Package binding renders dialect specific bind markers and applies captured
// parameter values to a domain.BindTarget.
package binding

import (
	"strconv"

	"github.com/satishbabariya/r2dbc-go/query/domain"
)

// BindMarker is a single placeholder in rendered SQL together with the logic
// to address it on a BindTarget.
type BindMarker interface {
	// Placeholder is the text substituted into the SQL.
	Placeholder() string
	// Bind writes value into the slot this marker addresses.
	Bind(target domain.BindTarget, value any) error
	// BindNull writes NULL of the given kind.
	BindNull(target domain.BindTarget, kind domain.Kind) error
}

// BindMarkers hands out markers for one statement. Not safe for concurrent use;
// create one per rendering.
type BindMarkers interface {
	// Next returns a new marker.
	Next() BindMarker
	// NextNamed returns a new marker, using hint where the dialect names markers.
	NextNamed(hint string) BindMarker
}

// BindMarkersFactory creates BindMarkers for a dialect.
type BindMarkersFactory interface {
	Create() BindMarkers
	// Identifiable reports whether a marker can be referenced more than once
	// in the same statement ($1 can, ? cannot).
	Identifiable() bool
}

// Anonymous returns markers rendered as a fixed placeholder, bound by position.
func Anonymous(placeholder string) BindMarkersFactory {
	return anonymousFactory{placeholder: placeholder}
}

// Indexed returns markers rendered as prefix followed by a number starting at
// offset, bound by position ($1, $2, ...).
func Indexed(prefix string, offset int) BindMarkersFactory {
	return indexedFactory{prefix: prefix, offset: offset}
}

// Named returns markers rendered as prefix+namePrefix+counter (@P0, @P1, ...),
// bound by name without the prefix.
func Named(prefix, namePrefix string) BindMarkersFactory {
	return namedFactory{prefix: prefix, namePrefix: namePrefix}
}

// ForDialect returns the marker style a dialect expects.
func ForDialect(d domain.SQLDialect) BindMarkersFactory {
	switch d {
	case domain.PostgreSQL:
		return Indexed("$", 1)
	case domain.SQLServer:
		return Named("@", "P")
	default:
		return Anonymous("?")
	}
}

type anonymousFactory struct{ placeholder string }

func (f anonymousFactory) Create() BindMarkers { return &anonymousMarkers{placeholder: f.placeholder} }
func (anonymousFactory) Identifiable() bool    { return false }

type anonymousMarkers struct {
	placeholder string
	counter     int
}

func (m *anonymousMarkers) Next() BindMarker {
	mk := indexedMarker{placeholder: m.placeholder, index: m.counter}
	m.counter++
	return mk
}

func (m *anonymousMarkers) NextNamed(string) BindMarker { return m.Next() }

type indexedFactory struct {
	prefix string
	offset int
}

func (f indexedFactory) Create() BindMarkers {
	return &indexedMarkers{prefix: f.prefix, offset: f.offset}
}
func (indexedFactory) Identifiable() bool { return true }

type indexedMarkers struct {
	prefix  string
	offset  int
	counter int
}

func (m *indexedMarkers) Next() BindMarker {
	mk := indexedMarker{
		placeholder: m.prefix + strconv.Itoa(m.counter+m.offset),
		index:       m.counter,
	}
	m.counter++
	return mk
}

func (m *indexedMarkers) NextNamed(string) BindMarker { return m.Next() }

// Positional returns a marker for a placeholder already present in the SQL
// text, bound at the zero-based index.
func Positional(index int, placeholder string) BindMarker {
	return indexedMarker{placeholder: placeholder, index: index}
}

type indexedMarker struct {
	placeholder string
	index       int
}

func (m indexedMarker) Placeholder() string { return m.placeholder }

func (m indexedMarker) Bind(target domain.BindTarget, value any) error {
	return target.Bind(m.index, value)
}

func (m indexedMarker) BindNull(target domain.BindTarget, kind domain.Kind) error {
	return target.BindNull(m.index, kind)
}

type namedFactory struct {
	prefix     string
	namePrefix string
}

func (f namedFactory) Create() BindMarkers {
	return &namedMarkers{prefix: f.prefix, namePrefix: f.namePrefix}
}
func (namedFactory) Identifiable() bool { return true }

type namedMarkers struct {
	prefix     string
	namePrefix string
	counter    int
}

func (m *namedMarkers) Next() BindMarker {
	name := m.namePrefix + strconv.Itoa(m.counter)
	m.counter++
	return namedMarker{placeholder: m.prefix + name, name: name}
}

// NextNamed appends a sanitized hint so rendered SQL stays readable (@P0_manual).
func (m *namedMarkers) NextNamed(hint string) BindMarker {
	clean := sanitizeHint(hint)
	if clean == "" {
		return m.Next()
	}
	name := m.namePrefix + strconv.Itoa(m.counter) + "_" + clean
	m.counter++
	return namedMarker{placeholder: m.prefix + name, name: name}
}

type namedMarker struct {
	placeholder string
	name        string
}

func (m namedMarker) Placeholder() string { return m.placeholder }

func (m namedMarker) Bind(target domain.BindTarget, value any) error {
	return target.BindName(m.name, value)
}

func (m namedMarker) BindNull(target domain.BindTarget, kind domain.Kind) error {
	return target.BindNullName(m.name, kind)
}

func sanitizeHint(hint string) string {
	b := make([]byte, 0, len(hint))
	for i := 0; i < len(hint) && len(b) < 32; i++ {
		c := hint[i]
		if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			b = append(b, c)
		}
	}
	return string(b)
}
