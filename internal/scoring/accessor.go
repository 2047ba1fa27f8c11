package scoring

// Extraction is the result of resolving a value through ordered candidate
// fields. Field is empty when no candidate held a non-null value.
type Extraction struct {
	Value any
	Field string
}

// Extract returns the first non-null value among candidates, in order.
func Extract(obj map[string]any, candidates []string) Extraction {
	for _, field := range candidates {
		if v, ok := obj[field]; ok && v != nil {
			return Extraction{Value: v, Field: field}
		}
	}
	return Extraction{}
}
