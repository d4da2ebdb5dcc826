package querier

import (
	"fmt"
	"reflect"

	"github.com/thisisjab/docq/fault"
	"github.com/thisisjab/docq/store"
)

// Build constructs a predicate from parsed query components. Ordering
// operators require the query-side value to coerce to a number here, at
// build time; equality operators compare the value as-is, with no numeric
// coercion. The operator guard is kept even though Parse only ever emits the
// six known operators, since Build is usable on its own.
func Build(field string, op Operator, value any) (Predicate, error) {
	switch op {
	case OpGt, OpGte, OpLt, OpLte:
		comparand, err := ToNumber(value)
		if err != nil {
			return nil, fault.New(fault.NonNumericComparandCode, fmt.Sprintf(
				"numeric comparison operators (>, >=, <, <=) require numeric values: %v", value)).WithOriginal(err)
		}
		return fieldTest(field, orderingTest(op, comparand)), nil

	case OpEq:
		return fieldTest(field, func(v any) bool { return equalValues(v, value) }), nil

	case OpNe:
		return fieldTest(field, func(v any) bool { return !equalValues(v, value) }), nil

	default:
		return nil, fault.New(fault.UnsupportedOperatorCode, fmt.Sprintf("unsupported operator: %s", op))
	}
}

// fieldTest lifts a test on a single field value to a whole-document
// predicate. A document without the field never matches, regardless of the
// operator.
func fieldTest(field string, test func(v any) bool) Predicate {
	return func(doc store.Document) bool {
		v, ok := doc[field]
		if !ok {
			return false
		}
		return test(v)
	}
}

// orderingTest builds the per-document side of a numeric comparison. A field
// value that does not coerce to a number is defined not to match; it is
// never an evaluation error.
func orderingTest(op Operator, comparand float64) func(v any) bool {
	return func(v any) bool {
		n, err := ToNumber(v)
		if err != nil {
			return false
		}

		switch op {
		case OpGt:
			return n > comparand
		case OpGte:
			return n >= comparand
		case OpLt:
			return n < comparand
		case OpLte:
			return n <= comparand
		default:
			return false
		}
	}
}

// equalValues compares two values with type-sensitive equality: the number 5
// and the text "5" are not equal. This mirrors the ordering/equality split of
// the query language, where only ordering operators coerce numerically.
func equalValues(a, b any) bool {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case float64:
		y, ok := toFloat(b)
		return ok && x == y
	case int:
		y, ok := toFloat(b)
		return ok && float64(x) == y
	case int64:
		y, ok := toFloat(b)
		return ok && float64(x) == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case nil:
		return b == nil
	default:
		return reflect.DeepEqual(a, b)
	}
}

// toFloat widens numeric types only. Strings deliberately do not convert.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
