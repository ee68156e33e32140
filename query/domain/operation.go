package domain

// BindTarget receives parameter values before a statement executes. It is
// supplied and owned by the driver layer; operations only write into it.
type BindTarget interface {
	// Bind sets the value of the zero-based positional parameter.
	Bind(index int, value any) error
	// BindName sets the value of a named parameter.
	BindName(name string, value any) error
	// BindNull sets the positional parameter to NULL of the given kind.
	BindNull(index int, kind Kind) error
	// BindNullName sets the named parameter to NULL of the given kind.
	BindNullName(name string, kind Kind) error
}

// QueryOperation exposes the rendered SQL of an operation.
type QueryOperation interface {
	SQL() string
}

// Operation is a QueryOperation whose parameters can be applied to a
// BindTarget. Executors depend on this facet only.
type Operation interface {
	QueryOperation
	// BindTo writes every captured parameter into target. Binding errors
	// reported by the target are returned unchanged.
	BindTo(target BindTarget) error
}

// PreparedOperation pairs a query source with its rendered SQL and bindings.
// Implementations are immutable once constructed.
type PreparedOperation[S any] interface {
	Operation
	// Source returns the query source, such as a SQL string or a *Query.
	Source() S
}
