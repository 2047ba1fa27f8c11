package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCohensKappa(t *testing.T) {
	tests := []struct {
		name           string
		a, b           []string
		want           float64
		interpretation string
	}{
		{
			name:           "perfect agreement",
			a:              []string{"R", "N", "S", "C"},
			b:              []string{"R", "N", "S", "C"},
			want:           1,
			interpretation: "Almost Perfect",
		},
		{
			name:           "single label everywhere",
			a:              []string{"R", "R", "R"},
			b:              []string{"R", "R", "R"},
			want:           1,
			interpretation: "Almost Perfect",
		},
		{
			// po = 0.5, pe = 0.5 -> kappa 0
			name:           "chance agreement",
			a:              []string{"Pass", "Pass", "Fail", "Fail"},
			b:              []string{"Pass", "Fail", "Pass", "Fail"},
			want:           0,
			interpretation: "Slight",
		},
		{
			name:           "systematic disagreement",
			a:              []string{"Pass", "Fail"},
			b:              []string{"Fail", "Pass"},
			want:           -1,
			interpretation: "Poor (less than chance)",
		},
		{
			// po = 0.6; pe = 0.6*0.6 + 0.4*0.4 = 0.52
			name:           "weak",
			a:              []string{"Y", "Y", "Y", "N", "N"},
			b:              []string{"Y", "Y", "N", "N", "Y"},
			want:           (0.6 - 0.52) / (1 - 0.52),
			interpretation: "Slight",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CohensKappa(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.Kappa, 1e-9)
			assert.Equal(t, tt.interpretation, got.Interpretation)
			assert.Equal(t, len(tt.a), got.Samples)
		})
	}
}

func TestCohensKappa_ConfusionMatrix(t *testing.T) {
	got, err := CohensKappa([]string{"A", "A", "B"}, []string{"A", "B", "B"})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, got.Labels)
	require.Equal(t, map[string]map[string]int{
		"A": {"A": 1, "B": 1},
		"B": {"A": 0, "B": 1},
	}, got.ConfusionMatrix)
	assert.InDelta(t, 2.0/3.0, got.ObservedAgreement, 1e-9)
}

func TestCohensKappa_Errors(t *testing.T) {
	_, err := CohensKappa([]string{"A"}, []string{"A", "B"})
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = CohensKappa(nil, nil)
	require.ErrorIs(t, err, ErrNoLabels)
}

func TestWeightedKappa(t *testing.T) {
	// Near misses on an ordinal scale are penalized less than with
	// unweighted kappa.
	a := []string{"1", "2", "3", "4", "5"}
	b := []string{"2", "2", "3", "4", "4"}

	unweighted, err := CohensKappa(a, b)
	require.NoError(t, err)
	weighted, err := WeightedKappa(a, b)
	require.NoError(t, err)
	require.Greater(t, weighted.Kappa, unweighted.Kappa)

	same, err := WeightedKappa([]string{"x", "x"}, []string{"x", "x"})
	require.NoError(t, err)
	require.Equal(t, 1.0, same.Kappa)
}

func TestInterpretKappa(t *testing.T) {
	tests := []struct {
		k    float64
		want string
	}{
		{-0.1, "Poor (less than chance)"},
		{0.0, "Slight"},
		{0.2, "Fair"},
		{0.45, "Moderate"},
		{0.6, "Substantial"},
		{0.8, "Almost Perfect"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretKappa(tt.k))
	}
}
