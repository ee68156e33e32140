package compiler

import "errors"

var (
	ErrUnsupportedQuery    = errors.New("unsupported query type")
	ErrInvalidQuery        = errors.New("invalid query")
	ErrEmptyTable          = errors.New("query has no table")
	ErrNoAssignments       = errors.New("query has no column values")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrEmptyIn             = errors.New("IN condition with no values")
)
