// Package named expands :name parameters in SQL text into dialect bind
// markers and captures their values as a prepared operation.
package named

import "errors"

// ErrMixedParameters is returned for SQL using both :name and positional
// placeholders.
var ErrMixedParameters = errors.New("named: SQL mixes named and positional parameters")

// ParsedSQL is SQL split into literal text and parameter placeholders.
// Immutable once parsed and shared through the expander cache.
type ParsedSQL struct {
	sql        string
	segments   []segment
	names      []string
	positional int
}

// Parse splits sql into fragments. Placeholders inside comments, quoted
// strings, quoted identifiers and dollar-quoted bodies are left alone.
func Parse(sql string) (*ParsedSQL, error) {
	segs, err := tokenize(sql)
	if err != nil {
		return nil, err
	}

	p := &ParsedSQL{sql: sql, segments: segs}
	seen := make(map[string]struct{})
	for _, s := range segs {
		switch s.kind {
		case segmentNamed:
			if _, ok := seen[s.name]; !ok {
				seen[s.name] = struct{}{}
				p.names = append(p.names, s.name)
			}
		case segmentPositional:
			if s.index+1 > p.positional {
				p.positional = s.index + 1
			}
		}
	}
	if len(p.names) > 0 && p.positional > 0 {
		return nil, ErrMixedParameters
	}
	return p, nil
}

// SQL returns the original text.
func (p *ParsedSQL) SQL() string { return p.sql }

// ParameterNames returns the distinct named parameters in first-seen order.
func (p *ParsedSQL) ParameterNames() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// PositionalCount returns the number of positional slots, the highest
// $n or the count of ? markers.
func (p *ParsedSQL) PositionalCount() int { return p.positional }

// HasNamed reports whether the SQL uses :name parameters.
func (p *ParsedSQL) HasNamed() bool { return len(p.names) > 0 }
