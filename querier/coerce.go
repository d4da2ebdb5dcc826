package querier

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/thisisjab/docq/querier/arith"
)

// ErrNotNumeric reports that a value cannot be interpreted as a number.
var ErrNotNumeric = errors.New("cannot parse as numeric value")

// ToNumber normalizes a value into a float64. Numeric types pass through
// directly. Strings are tried as a plain decimal float first and, failing
// that, as a restricted arithmetic expression ("2+3", "math.pi"). Every
// other type fails with ErrNotNumeric.
func ToNumber(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
		if f, err := arith.Eval(s); err == nil {
			return f, nil
		}
		return 0, fmt.Errorf("%w: %s", ErrNotNumeric, v)
	}

	return 0, fmt.Errorf("%w: %v", ErrNotNumeric, value)
}

// IsNumeric reports whether ToNumber would succeed for the value.
func IsNumeric(value any) bool {
	_, err := ToNumber(value)
	return err == nil
}
