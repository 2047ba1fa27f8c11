package scoring

import (
	"fmt"
	"strings"
)

// negativeStrings are string values treated as "no classification".
var negativeStrings = map[string]struct{}{
	"":      {},
	"null":  {},
	"none":  {},
	"false": {},
	"0":     {},
}

// IsPositive applies the generic truthiness rule: nil, empty or null-like
// strings, false, zero and empty collections are negative.
func IsPositive(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		_, negative := negativeStrings[normalize(val)]
		return !negative
	case float64:
		return val != 0
	case int:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// PositivityRule decides whether one side of a pair is in the positive class.
type PositivityRule struct {
	// Value, when non-nil, is the explicit positive class value.
	Value any
	// NullIsNegative treats a nil value as negative before any other check.
	NullIsNegative bool
}

// Positive applies the rule to v.
func (r PositivityRule) Positive(v any) bool {
	if r.Value != nil {
		return valuesEqual(v, r.Value)
	}
	if r.NullIsNegative && v == nil {
		return false
	}
	return IsPositive(v)
}

// valuesEqual compares a decoded JSON value against a configured value.
// Strings compare exactly, numbers numerically, booleans as booleans.
func valuesEqual(v, want any) bool {
	switch w := want.(type) {
	case string:
		s, ok := v.(string)
		return ok && s == w
	case bool:
		b, ok := v.(bool)
		return ok && b == w
	}
	if wf, ok := toFloat(want); ok {
		vf, ok := toFloat(v)
		return ok && vf == wf
	}
	return fmt.Sprint(v) == fmt.Sprint(want)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
