package scoring

import (
	"fmt"

	"github.com/spboyer/panelscore/internal/metrics"
)

// comparePair classifies one binary pair. When both sides are positive
// strings they must match after trimming and case-folding; a different
// positive value counts as a false negative.
func comparePair(expected, actual any, expRule, outRule PositivityRule) metrics.Outcome {
	expPos := expRule.Positive(expected)
	actPos := outRule.Positive(actual)
	if expPos && actPos {
		es, eok := expected.(string)
		as, aok := actual.(string)
		if eok && aok && normalize(es) != normalize(as) {
			return metrics.FalseNegative
		}
		return metrics.TruePositive
	}
	return metrics.Classify(expPos, actPos)
}

// compareLists counts item-level overlap between two extracted lists.
// Two empty lists are one true negative.
func compareLists(expected, actual any) (metrics.ConfusionCounts, error) {
	e, err := stringSet(expected)
	if err != nil {
		return metrics.ConfusionCounts{}, fmt.Errorf("expected: %w", err)
	}
	a, err := stringSet(actual)
	if err != nil {
		return metrics.ConfusionCounts{}, fmt.Errorf("output: %w", err)
	}

	var c metrics.ConfusionCounts
	if len(e) == 0 && len(a) == 0 {
		c.TN = 1
		return c, nil
	}
	for item := range a {
		if _, ok := e[item]; ok {
			c.TP++
		} else {
			c.FP++
		}
	}
	for item := range e {
		if _, ok := a[item]; !ok {
			c.FN++
		}
	}
	return c, nil
}

func stringSet(v any) (map[string]struct{}, error) {
	set := map[string]struct{}{}
	switch val := v.(type) {
	case nil:
		return set, nil
	case []any:
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				s = fmt.Sprint(item)
			}
			if n := normalize(s); n != "" {
				set[n] = struct{}{}
			}
		}
		return set, nil
	case string:
		if n := normalize(val); n != "" {
			set[n] = struct{}{}
		}
		return set, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
}

// classLabel renders a multiclass value for matrix lookup.
func classLabel(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool, float64:
		return fmt.Sprint(val), true
	}
	return "", false
}
