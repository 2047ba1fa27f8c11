package statistics

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrLengthMismatch is returned when two raters labeled different numbers of items.
	ErrLengthMismatch = errors.New("label lists must have the same length")
	// ErrNoLabels is returned for empty label lists.
	ErrNoLabels = errors.New("cannot calculate kappa for empty label lists")
)

// KappaResult is the agreement between two raters.
type KappaResult struct {
	Kappa             float64                   `json:"kappa"`
	ObservedAgreement float64                   `json:"observed_agreement"`
	ExpectedAgreement float64                   `json:"expected_agreement"`
	Interpretation    string                    `json:"interpretation"`
	ConfusionMatrix   map[string]map[string]int `json:"confusion_matrix"`
	Labels            []string                  `json:"labels"`
	Samples           int                       `json:"n_samples"`
}

// InterpretKappa maps kappa onto the Landis & Koch scale.
func InterpretKappa(kappa float64) string {
	switch {
	case kappa < 0:
		return "Poor (less than chance)"
	case kappa < 0.20:
		return "Slight"
	case kappa < 0.40:
		return "Fair"
	case kappa < 0.60:
		return "Moderate"
	case kappa < 0.80:
		return "Substantial"
	default:
		return "Almost Perfect"
	}
}

// CohensKappa measures chance-corrected agreement between two label lists.
func CohensKappa(a, b []string) (*KappaResult, error) {
	return kappa(a, b, func(i, j, _ int) float64 {
		if i == j {
			return 1
		}
		return 0
	})
}

// WeightedKappa is Cohen's kappa with quadratic weights over the sorted
// label order, for ordinal labels.
func WeightedKappa(a, b []string) (*KappaResult, error) {
	return kappa(a, b, func(i, j, k int) float64 {
		if k <= 1 {
			return 1
		}
		d := float64(i - j)
		return 1 - d*d/float64((k-1)*(k-1))
	})
}

func kappa(a, b []string, weight func(i, j, k int) float64) (*KappaResult, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	n := len(a)
	if n == 0 {
		return nil, ErrNoLabels
	}

	labels := unionSorted(a, b)
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}
	k := len(labels)

	cells := make([][]int, k)
	for i := range cells {
		cells[i] = make([]int, k)
	}
	rowTotals := make([]int, k)
	colTotals := make([]int, k)
	for i := range a {
		r, c := idx[a[i]], idx[b[i]]
		cells[r][c]++
		rowTotals[r]++
		colTotals[c]++
	}

	var po, pe float64
	nf := float64(n)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			w := weight(i, j, k)
			po += w * float64(cells[i][j]) / nf
			pe += w * (float64(rowTotals[i]) / nf) * (float64(colTotals[j]) / nf)
		}
	}

	kv := 1.0
	if pe != 1.0 {
		kv = (po - pe) / (1 - pe)
	}

	matrix := make(map[string]map[string]int, k)
	for i, l1 := range labels {
		row := make(map[string]int, k)
		for j, l2 := range labels {
			row[l2] = cells[i][j]
		}
		matrix[l1] = row
	}

	return &KappaResult{
		Kappa:             kv,
		ObservedAgreement: po,
		ExpectedAgreement: pe,
		Interpretation:    InterpretKappa(kv),
		ConfusionMatrix:   matrix,
		Labels:            labels,
		Samples:           n,
	}, nil
}

func unionSorted(a, b []string) []string {
	seen := map[string]struct{}{}
	for _, l := range a {
		seen[l] = struct{}{}
	}
	for _, l := range b {
		seen[l] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
