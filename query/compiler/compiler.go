// Package compiler compiles domain.Query values into prepared SQL operations.
package compiler

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/satishbabariya/r2dbc-go/query/binding"
	"github.com/satishbabariya/r2dbc-go/query/domain"
)

// likeEscape is the ESCAPE character used for Contains, StartsWith and EndsWith.
const likeEscape = "!"

// Compiler compiles queries into SQL for one dialect. Values are always
// bound through markers, never inlined. Safe for concurrent use.
type Compiler struct {
	dialect domain.SQLDialect
	markers binding.BindMarkersFactory
}

// NewCompiler creates a new query compiler
func NewCompiler(dialect domain.SQLDialect) *Compiler {
	return &Compiler{dialect: dialect, markers: binding.ForDialect(dialect)}
}

// NewCompilerWithMarkers creates a compiler using custom bind markers.
func NewCompilerWithMarkers(dialect domain.SQLDialect, markers binding.BindMarkersFactory) *Compiler {
	return &Compiler{dialect: dialect, markers: markers}
}

// Dialect returns the target dialect.
func (c *Compiler) Dialect() domain.SQLDialect { return c.dialect }

// Compile renders q. The returned operation's Source is q.
func (c *Compiler) Compile(q *domain.Query) (*binding.Prepared[*domain.Query], error) {
	if q == nil {
		return nil, ErrInvalidQuery
	}
	if strings.TrimSpace(q.Table) == "" {
		return nil, ErrEmptyTable
	}

	st := &state{
		compiler: c,
		markers:  c.markers.Create(),
		bindings: binding.NewBindings(len(q.Assignments) + len(q.Filter.Conditions)),
	}

	var err error
	switch q.Operation {
	case domain.Select, "":
		err = st.selectSQL(q)
	case domain.Insert:
		err = st.insertSQL(q)
	case domain.Update:
		err = st.updateSQL(q)
	case domain.Delete:
		err = st.deleteSQL(q)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedQuery, q.Operation)
	}
	if err != nil {
		return nil, err
	}
	return binding.NewPrepared(q, st.sql.String(), st.bindings), nil
}

// state holds the output of one compilation.
type state struct {
	compiler *Compiler
	sql      strings.Builder
	markers  binding.BindMarkers
	bindings *binding.Bindings
}

func (s *state) bind(column string, value any) string {
	m := s.markers.NextNamed(column)
	s.bindings.Add(m, value)
	return m.Placeholder()
}

func (s *state) selectSQL(q *domain.Query) error {
	s.sql.WriteString("SELECT ")
	if q.Distinct {
		s.sql.WriteString("DISTINCT ")
	}
	if len(q.Columns) == 0 {
		s.sql.WriteString("*")
	} else {
		for i, col := range q.Columns {
			if i > 0 {
				s.sql.WriteString(", ")
			}
			s.sql.WriteString(s.compiler.quote(col))
		}
	}
	s.sql.WriteString(" FROM ")
	s.sql.WriteString(s.compiler.quote(q.Table))

	if err := s.where(q.Filter); err != nil {
		return err
	}

	if len(q.Ordering) > 0 {
		s.sql.WriteString(" ORDER BY ")
		for i, o := range q.Ordering {
			if i > 0 {
				s.sql.WriteString(", ")
			}
			dir := o.Direction
			if dir == "" {
				dir = domain.Asc
			}
			s.sql.WriteString(s.compiler.quote(o.Field))
			s.sql.WriteString(" ")
			s.sql.WriteString(strings.ToUpper(string(dir)))
		}
	}

	s.pagination(q)
	return nil
}

func (s *state) pagination(q *domain.Query) {
	limit, offset := q.Pagination.Limit, q.Pagination.Offset
	if limit == nil && offset == nil {
		return
	}

	if s.compiler.dialect == domain.SQLServer {
		if len(q.Ordering) == 0 {
			s.sql.WriteString(" ORDER BY (SELECT NULL)")
		}
		off := 0
		if offset != nil {
			off = *offset
		}
		s.sql.WriteString(" OFFSET " + strconv.Itoa(off) + " ROWS")
		if limit != nil {
			s.sql.WriteString(" FETCH NEXT " + strconv.Itoa(*limit) + " ROWS ONLY")
		}
		return
	}

	switch {
	case limit != nil:
		s.sql.WriteString(" LIMIT " + strconv.Itoa(*limit))
	case s.compiler.dialect == domain.SQLite:
		s.sql.WriteString(" LIMIT -1")
	case s.compiler.dialect == domain.MySQL:
		s.sql.WriteString(" LIMIT 18446744073709551615")
	}
	if offset != nil {
		s.sql.WriteString(" OFFSET " + strconv.Itoa(*offset))
	}
}

func (s *state) insertSQL(q *domain.Query) error {
	if len(q.Assignments) == 0 {
		return ErrNoAssignments
	}
	cols := make([]string, len(q.Assignments))
	vals := make([]string, len(q.Assignments))
	for i, a := range q.Assignments {
		cols[i] = s.compiler.quote(a.Column)
		vals[i] = s.bind(a.Column, a.Value)
	}
	s.sql.WriteString("INSERT INTO ")
	s.sql.WriteString(s.compiler.quote(q.Table))
	s.sql.WriteString(" (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(vals, ", ") + ")")
	return nil
}

func (s *state) updateSQL(q *domain.Query) error {
	if len(q.Assignments) == 0 {
		return ErrNoAssignments
	}
	s.sql.WriteString("UPDATE ")
	s.sql.WriteString(s.compiler.quote(q.Table))
	s.sql.WriteString(" SET ")
	for i, a := range q.Assignments {
		if i > 0 {
			s.sql.WriteString(", ")
		}
		s.sql.WriteString(s.compiler.quote(a.Column))
		s.sql.WriteString(" = ")
		s.sql.WriteString(s.bind(a.Column, a.Value))
	}
	return s.where(q.Filter)
}

func (s *state) deleteSQL(q *domain.Query) error {
	s.sql.WriteString("DELETE FROM ")
	s.sql.WriteString(s.compiler.quote(q.Table))
	return s.where(q.Filter)
}

func (s *state) where(f domain.Filter) error {
	if f.IsEmpty() {
		return nil
	}
	clause, err := s.filter(f)
	if err != nil {
		return err
	}
	s.sql.WriteString(" WHERE ")
	s.sql.WriteString(clause)
	return nil
}

func (s *state) filter(f domain.Filter) (string, error) {
	var parts []string
	for _, cond := range f.Conditions {
		part, err := s.condition(cond)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	for _, nested := range f.NestedFilters {
		if nested.IsEmpty() {
			continue
		}
		part, err := s.filter(nested)
		if err != nil {
			return "", err
		}
		if nested.Operator != domain.NOT && len(nested.Conditions)+len(nested.NestedFilters) > 1 {
			part = "(" + part + ")"
		}
		parts = append(parts, part)
	}

	switch f.Operator {
	case domain.NOT:
		if len(parts) == 1 && strings.HasPrefix(parts[0], "(") {
			return "NOT " + parts[0], nil
		}
		return "NOT (" + strings.Join(parts, " AND ") + ")", nil
	case domain.OR:
		return strings.Join(parts, " OR "), nil
	case domain.AND, "":
		return strings.Join(parts, " AND "), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOperator, f.Operator)
	}
}

func (s *state) condition(cond domain.Condition) (string, error) {
	col := s.compiler.quote(cond.Field)

	switch cond.Operator {
	case domain.Equals:
		if cond.Value == nil {
			return col + " IS NULL", nil
		}
		return col + " = " + s.bind(cond.Field, cond.Value), nil
	case domain.NotEquals:
		if cond.Value == nil {
			return col + " IS NOT NULL", nil
		}
		return col + " <> " + s.bind(cond.Field, cond.Value), nil
	case domain.Lt:
		return col + " < " + s.bind(cond.Field, cond.Value), nil
	case domain.Lte:
		return col + " <= " + s.bind(cond.Field, cond.Value), nil
	case domain.Gt:
		return col + " > " + s.bind(cond.Field, cond.Value), nil
	case domain.Gte:
		return col + " >= " + s.bind(cond.Field, cond.Value), nil
	case domain.Like:
		return col + " LIKE " + s.bind(cond.Field, cond.Value), nil
	case domain.Contains, domain.StartsWith, domain.EndsWith:
		pattern := escapeLike(fmt.Sprint(cond.Value))
		switch cond.Operator {
		case domain.Contains:
			pattern = "%" + pattern + "%"
		case domain.StartsWith:
			pattern += "%"
		default:
			pattern = "%" + pattern
		}
		return col + " LIKE " + s.bind(cond.Field, pattern) + " ESCAPE '" + likeEscape + "'", nil
	case domain.In, domain.NotIn:
		return s.in(col, cond)
	case domain.IsNull:
		return col + " IS NULL", nil
	case domain.IsNotNull:
		return col + " IS NOT NULL", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOperator, cond.Operator)
	}
}

func (s *state) in(col string, cond domain.Condition) (string, error) {
	rv := reflect.ValueOf(cond.Value)
	if cond.Value == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return "", fmt.Errorf("%w: %s on %s needs a slice, got %T", ErrInvalidQuery, cond.Operator, cond.Field, cond.Value)
	}
	if rv.Len() == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyIn, cond.Field)
	}
	markers := make([]string, rv.Len())
	for i := range markers {
		markers[i] = s.bind(cond.Field, rv.Index(i).Interface())
	}
	op := " IN ("
	if cond.Operator == domain.NotIn {
		op = " NOT IN ("
	}
	return col + op + strings.Join(markers, ", ") + ")", nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

// quote quotes an identifier for the dialect. Dotted names are quoted per
// part and "*" is left alone.
func (c *Compiler) quote(ident string) string {
	if ident == "*" {
		return ident
	}
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		if p == "*" {
			continue
		}
		switch c.dialect {
		case domain.MySQL:
			parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
		case domain.SQLServer:
			parts[i] = "[" + strings.ReplaceAll(p, "]", "]]") + "]"
		default:
			parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
		}
	}
	return strings.Join(parts, ".")
}
