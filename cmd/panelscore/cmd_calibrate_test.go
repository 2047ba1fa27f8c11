package main

import (
	"encoding/json"
	"testing"

	"github.com/spboyer/panelscore/internal/calibration"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calibrationFixture(t *testing.T) (human, results string) {
	t.Helper()
	dir := t.TempDir()
	human = writeFile(t, dir, "human.csv",
		"sample_id,human_score,human_accuracy,human_notes\n"+
			"s1,4,4,ok\n"+
			"s2,2,2,\n"+
			"s3,5,5,\n"+
			"s4,1,1,\n")
	results = writeJSON(t, dir, "run.json", models.JudgeRun{
		RunID: "r1",
		Results: []models.AggregatedVerdict{
			{SampleID: "s1", Overall: utils.Ptr(4.0), DimensionScores: map[string]float64{"accuracy": 4}},
			{SampleID: "s2", Overall: utils.Ptr(3.0), DimensionScores: map[string]float64{"accuracy": 2}},
			{SampleID: "s3", Overall: utils.Ptr(2.0), DimensionScores: map[string]float64{"accuracy": 5}},
			{SampleID: "s4", Overall: utils.Ptr(1.0), DimensionScores: map[string]float64{"accuracy": 1}},
			{SampleID: "s5"},
		},
	})
	return human, results
}

func TestCalibrateCommand_Table(t *testing.T) {
	human, results := calibrationFixture(t)

	out, err := runCLI(t, "calibrate", human, results, "--diffs")
	require.NoError(t, err)
	assert.Contains(t, out, "Calibration over 4 shared samples")
	assert.Contains(t, out, "Within ±1")
	assert.Contains(t, out, "Overall agreement: fair")
	assert.Contains(t, out, "s3: human 5.0, judge 2.0 (-3.0)")
	assert.NotContains(t, out, "s2: human")
}

func TestCalibrateCommand_JSON(t *testing.T) {
	human, results := calibrationFixture(t)

	out, err := runCLI(t, "calibrate", human, results, "--format", "json")
	require.NoError(t, err)
	var report calibration.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.Samples)
	require.Len(t, report.Dimensions, 2)
	assert.Equal(t, "overall", report.Dimensions[0].Dimension)
	assert.Equal(t, 75.0, report.Dimensions[0].WithinTolerance)
	assert.Equal(t, "accuracy", report.Dimensions[1].Dimension)
	assert.Equal(t, 100.0, report.Dimensions[1].Exact)
}

func TestCalibrateCommand_Thresholds(t *testing.T) {
	human, results := calibrationFixture(t)

	_, err := runCLI(t, "calibrate", human, results, "--min-agreement", "80")
	var te *ThresholdError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Message, "75.0%")

	// a wider tolerance counts s3 as agreeing
	_, err = runCLI(t, "calibrate", human, results, "--tolerance", "3", "--min-agreement", "80")
	require.NoError(t, err)

	_, err = runCLI(t, "calibrate", human, results, "--tolerance", "-1")
	require.ErrorContains(t, err, "--tolerance must be >= 0")
}
