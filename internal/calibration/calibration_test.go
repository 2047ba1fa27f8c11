package calibration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	human := map[string]Scores{
		"s1":         {Overall: 4, Dimensions: map[string]float64{"accuracy": 4, "clarity": 3}, Notes: "solid"},
		"s2":         {Overall: 2, Dimensions: map[string]float64{"accuracy": 2, "clarity": 3}},
		"s3":         {Overall: 5, Dimensions: map[string]float64{"accuracy": 5}},
		"s4":         {Overall: 1},
		"human-only": {Overall: 3},
	}
	judge := map[string]Scores{
		"s1":         {Overall: 4, Dimensions: map[string]float64{"accuracy": 5, "clarity": 3}},
		"s2":         {Overall: 3, Dimensions: map[string]float64{"accuracy": 2, "clarity": 3}},
		"s3":         {Overall: 2, Dimensions: map[string]float64{"accuracy": 5, "relevance": 4}},
		"s4":         {Overall: 1},
		"judge-only": {Overall: 3},
	}

	report, err := Compare(human, judge, 1)
	require.NoError(t, err)

	want := &Report{
		Samples:   4,
		Tolerance: 1,
		Dimensions: []DimensionAgreement{
			{
				Dimension:       "overall",
				Samples:         4,
				Exact:           50,
				WithinTolerance: 75,
				MAE:             1,
				// human (4,2,5,1) vs judge (4,3,2,1)
				Pearson: utils.Ptr(0.424),
				Status:  "fair",
			},
			{
				Dimension:       "accuracy",
				Samples:         3,
				Exact:           66.7,
				WithinTolerance: 100,
				MAE:             0.33,
				Pearson:         utils.Ptr(0.945),
				Status:          "good",
			},
			{
				Dimension:       "clarity",
				Samples:         2,
				Exact:           100,
				WithinTolerance: 100,
				MAE:             0,
				Status:          "good",
			},
		},
		Details: []SampleDiff{
			{SampleID: "s1", HumanOverall: 4, JudgeOverall: 4, Diff: 0, Notes: "solid"},
			{SampleID: "s2", HumanOverall: 2, JudgeOverall: 3, Diff: 1},
			{SampleID: "s3", HumanOverall: 5, JudgeOverall: 2, Diff: -3},
			{SampleID: "s4", HumanOverall: 1, JudgeOverall: 1, Diff: 0},
		},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("Compare() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "fair", report.OverallStatus())
}

func TestCompare_NoOverlap(t *testing.T) {
	_, err := Compare(map[string]Scores{"a": {}}, map[string]Scores{"b": {}}, 1)
	require.ErrorIs(t, err, ErrNoOverlap)

	_, err = Compare(nil, nil, 1)
	require.ErrorIs(t, err, ErrNoOverlap)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{100, "good"},
		{85, "good"},
		{84.9, "fair"},
		{70, "fair"},
		{69.9, "poor"},
		{0, "poor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.pct), "Status(%v)", tt.pct)
	}
}

func TestScoresFromVerdicts(t *testing.T) {
	got := ScoresFromVerdicts([]models.AggregatedVerdict{
		{SampleID: "a", Overall: utils.Ptr(4.0), DimensionScores: map[string]float64{"x": 3}},
		{SampleID: "b"},
		{SampleID: "c", Overall: utils.Ptr(2.5)},
	})
	assert.Equal(t, map[string]Scores{
		"a": {Overall: 4, Dimensions: map[string]float64{"x": 3}},
		"c": {Overall: 2.5},
	}, got)
}

func TestLoadHumanCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "human.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"sample_id,human_score,human_accuracy,human_clarity,human_notes\n"+
			"s1,4,5,3,looks right\n"+
			"s2,2.5,2,,\n"), 0o644))

	got, err := LoadHumanCSV(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]Scores{
		"s1": {Overall: 4, Dimensions: map[string]float64{"accuracy": 5, "clarity": 3}, Notes: "looks right"},
		"s2": {Overall: 2.5, Dimensions: map[string]float64{"accuracy": 2}},
	}, got)
}

func TestLoadHumanCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing id", "sample_id,human_score\n,4\n", "row 2: missing sample_id"},
		{"bad score", "sample_id,human_score\ns1,high\n", "row 2: human_score"},
		{"bad dimension", "sample_id,human_score,human_clarity\ns1,4,x\n", "row 2: human_clarity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "human.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadHumanCSV(path)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
