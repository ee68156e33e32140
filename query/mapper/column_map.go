package mapper

import (
	"bytes"
	"encoding/json"
	"iter"

	"github.com/satishbabariya/r2dbc-go/query/domain"
	"golang.org/x/text/cases"
)

// ColumnMap is an insertion ordered map from column key to column value.
// It is not safe for concurrent mutation.
type ColumnMap interface {
	// Put stores value under key. Re-putting a key that is already present
	// keeps the original position.
	Put(key string, value any)
	// Get returns the value stored under key.
	Get(key string) (any, bool)
	// Value returns the value under key as a domain.Value. Missing keys are NULL.
	Value(key string) domain.Value
	// Delete removes key.
	Delete(key string) bool
	// Keys returns the keys in insertion order.
	Keys() []string
	// Len returns the number of entries.
	Len() int
	// All iterates entries in insertion order.
	All() iter.Seq2[string, any]
}

// MapFactory allocates a ColumnMap for a row with the given column count.
// The count is a capacity hint.
type MapFactory func(columnCount int) ColumnMap

type entry struct {
	key   string
	value any
}

// LinkedMap is the ColumnMap used by default. Lookups ignore case unless the
// map was created with NewCaseSensitiveColumnMap. When a key differing only in
// case is put again, the entry keeps its position and takes the new spelling
// and value.
type LinkedMap struct {
	entries   []entry
	index     map[string]int
	sensitive bool
	fold      cases.Caser
}

// NewColumnMap returns an empty case-insensitive LinkedMap.
func NewColumnMap(capacity int) *LinkedMap {
	return &LinkedMap{
		entries: make([]entry, 0, capacity),
		index:   make(map[string]int, capacity),
		fold:    cases.Fold(),
	}
}

// NewCaseSensitiveColumnMap returns an empty LinkedMap with exact key lookup.
func NewCaseSensitiveColumnMap(capacity int) *LinkedMap {
	return &LinkedMap{
		entries:   make([]entry, 0, capacity),
		index:     make(map[string]int, capacity),
		sensitive: true,
	}
}

func (m *LinkedMap) lookupKey(key string) string {
	if m.sensitive {
		return key
	}
	return m.fold.String(key)
}

func (m *LinkedMap) Put(key string, value any) {
	lk := m.lookupKey(key)
	if i, ok := m.index[lk]; ok {
		m.entries[i] = entry{key: key, value: value}
		return
	}
	m.index[lk] = len(m.entries)
	m.entries = append(m.entries, entry{key: key, value: value})
}

func (m *LinkedMap) Get(key string) (any, bool) {
	i, ok := m.index[m.lookupKey(key)]
	if !ok {
		return nil, false
	}
	return m.entries[i].value, true
}

func (m *LinkedMap) Value(key string) domain.Value {
	v, _ := m.Get(key)
	return domain.ValueOf(v)
}

func (m *LinkedMap) Delete(key string) bool {
	lk := m.lookupKey(key)
	i, ok := m.index[lk]
	if !ok {
		return false
	}
	delete(m.index, lk)
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	for j := i; j < len(m.entries); j++ {
		m.index[m.lookupKey(m.entries[j].key)] = j
	}
	return true
}

func (m *LinkedMap) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

func (m *LinkedMap) Len() int { return len(m.entries) }

func (m *LinkedMap) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Map copies the entries into a plain map, losing order.
func (m *LinkedMap) Map() map[string]any {
	out := make(map[string]any, len(m.entries))
	for _, e := range m.entries {
		out[e.key] = e.value
	}
	return out
}

// MarshalJSON renders the entries as a JSON object in column order.
func (m *LinkedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(jsonValue(e.value))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue renders driver bytes as text rather than base64.
func jsonValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

var _ ColumnMap = (*LinkedMap)(nil)
