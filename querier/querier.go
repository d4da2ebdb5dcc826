package querier

import (
	"fmt"
	"strings"

	"github.com/thisisjab/docq/fault"
	"github.com/thisisjab/docq/store"
)

// Operator identifies one of the six supported comparison operators.
type Operator string

const (
	OpEq  Operator = "=="
	OpNe  Operator = "!="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpLt  Operator = "<"
	OpLte Operator = "<="
)

// Expression is a single parsed query expression. It is immutable once
// produced by Parse: Field matches [A-Za-z0-9_]+, Op is one of the six
// operators and Value is the raw value text with outer quotes stripped.
type Expression struct {
	Field string
	Op    Operator
	Value string
}

// Predicate is a boolean test over a single document. Predicates are pure:
// they hold no state and may be applied to any number of documents.
type Predicate func(doc store.Document) bool

// Compile parses a query string and builds an executable predicate from it.
// It is the entry point shared by every command that accepts a query
// expression (query, delete, update, watch).
func Compile(input string) (Predicate, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fault.New(fault.BadInputCode, "query string cannot be empty or whitespace only")
	}

	expr, ok := Parse(input)
	if !ok {
		return nil, fault.New(fault.MalformedQueryCode, fmt.Sprintf(
			"invalid query format: %q. Expected format: 'field == value', 'field != value', "+
				"'field > value', 'field < value', 'field >= value', or 'field <= value'. "+
				"Field names must be alphanumeric (letters, numbers, underscore).", input))
	}

	return Build(expr.Field, expr.Op, expr.Value)
}
