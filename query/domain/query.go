package domain

// Query is the statement description compiled into SQL by the compiler.
type Query struct {
	Table       string
	Operation   StatementKind
	Columns     []string     // SELECT list; empty means *
	Assignments []Assignment // INSERT values / UPDATE SET, in order
	Filter      Filter
	Ordering    []OrderBy
	Pagination  Pagination
	Distinct    bool
}

// StatementKind is the SQL statement produced for a Query.
type StatementKind string

const (
	// Select reads rows.
	Select StatementKind = "SELECT"
	// Insert inserts one row.
	Insert StatementKind = "INSERT"
	// Update updates matching rows.
	Update StatementKind = "UPDATE"
	// Delete deletes matching rows.
	Delete StatementKind = "DELETE"
)

// Assignment is a column = value pair.
type Assignment struct {
	Column string
	Value  any
}

// Filter represents query conditions with support for nested logical combinations.
// Filters can contain both direct conditions and nested filter groups.
// Example: (status='active' AND role='admin') OR verified=true
// Would be represented as:
//
//	Filter{
//	  Operator: OR,
//	  NestedFilters: [
//	    Filter{Operator: AND, Conditions: [{status='active'}, {role='admin'}]},
//	    Filter{Conditions: [{verified=true}]}
//	  ]
//	}
type Filter struct {
	Conditions    []Condition
	NestedFilters []Filter
	Operator      LogicalOperator
}

// IsEmpty reports whether the filter has no conditions at any depth.
func (f Filter) IsEmpty() bool {
	if len(f.Conditions) > 0 {
		return false
	}
	for _, n := range f.NestedFilters {
		if !n.IsEmpty() {
			return false
		}
	}
	return true
}

// LogicalOperator combines conditions.
type LogicalOperator string

const (
	AND LogicalOperator = "AND"
	OR  LogicalOperator = "OR"
	NOT LogicalOperator = "NOT"
)

// Condition is a single column predicate.
type Condition struct {
	Field    string
	Operator ComparisonOperator
	Value    any
}

// ComparisonOperator represents comparison operators.
type ComparisonOperator string

const (
	Equals     ComparisonOperator = "equals"
	NotEquals  ComparisonOperator = "not"
	In         ComparisonOperator = "in"
	NotIn      ComparisonOperator = "notIn"
	Lt         ComparisonOperator = "lt"
	Lte        ComparisonOperator = "lte"
	Gt         ComparisonOperator = "gt"
	Gte        ComparisonOperator = "gte"
	Like       ComparisonOperator = "like"
	Contains   ComparisonOperator = "contains"
	StartsWith ComparisonOperator = "startsWith"
	EndsWith   ComparisonOperator = "endsWith"
	IsNull     ComparisonOperator = "isNull"
	IsNotNull  ComparisonOperator = "isNotNull"
)

// OrderBy defines sorting.
type OrderBy struct {
	Field     string
	Direction SortDirection
}

// SortDirection represents sort direction.
type SortDirection string

const (
	Asc  SortDirection = "ASC"
	Desc SortDirection = "DESC"
)

// Pagination limits the result window. Nil means unset.
type Pagination struct {
	Limit  *int
	Offset *int
}

// SQLDialect identifies the SQL flavour of a database.
type SQLDialect string

const (
	PostgreSQL SQLDialect = "postgres"
	MySQL      SQLDialect = "mysql"
	SQLite     SQLDialect = "sqlite"
	SQLServer  SQLDialect = "sqlserver"
)
