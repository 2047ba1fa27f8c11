package reporting

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spboyer/panelscore/internal/calibration"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/statistics"
	"github.com/spboyer/panelscore/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(out string) []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), "|") {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestScoreTable(t *testing.T) {
	var buf bytes.Buffer
	err := ScoreTable(&buf, []models.ScoreRecord{
		{RunID: "m02_v1", Module: "m02", Total: 15, TP: 5, TN: 10, Accuracy: 100, Precision: 100, Recall: 100, F1: 100, MCC: 1},
		{RunID: "m02_v2", Module: "m02", Total: 10, TP: 3, FP: 2, FN: 1, TN: 4, Accuracy: 70, Precision: 60, Recall: 75, F1: 66.7, MCC: 0.408, Skipped: 3},
	})
	require.NoError(t, err)

	out := buf.String()
	lines := rows(out)
	require.Len(t, lines, 4, out)
	assert.Contains(t, lines[0], "Run")
	assert.Contains(t, lines[0], "MCC")
	assert.Contains(t, lines[2], "m02_v1")
	assert.Contains(t, lines[2], "100.0%")
	assert.Contains(t, lines[3], "66.7%")
	assert.Contains(t, lines[3], "0.408")
}

func TestMulticlassTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MulticlassTable(&buf, models.ScoreRecord{}))
	assert.Empty(t, buf.String())

	rec := models.ScoreRecord{Multiclass: &models.MulticlassDetail{
		PerClass: map[string]models.ClassMetrics{
			"R": {TP: 2, FP: 1, Precision: 66.7, Recall: 100, F1: 80},
			"N": {TP: 1, FN: 1, Precision: 100, Recall: 50, F1: 66.7},
		},
		ExpectedDistribution: map[string]int{"R": 2, "N": 2},
		ActualDistribution:   map[string]int{"R": 3, "N": 1},
	}}
	require.NoError(t, MulticlassTable(&buf, rec))
	lines := rows(buf.String())
	require.Len(t, lines, 4)
	// classes are sorted
	assert.Contains(t, lines[2], "N")
	assert.Contains(t, lines[3], "R")
	assert.Contains(t, lines[3], "80.0%")
}

func TestSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SummaryTable(&buf, newTestRun().Summaries))

	lines := rows(buf.String())
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Pass Rate")
	assert.Contains(t, lines[2], "M02_brand_detection")
	assert.Contains(t, lines[2], "50.0%")
	assert.Contains(t, lines[2], "75.0%")
	assert.Contains(t, lines[3], "0.0%")
	assert.Contains(t, lines[3], "N/A")
}

func TestBiasTable(t *testing.T) {
	report := models.BiasReport{
		Leniency: models.LeniencyReport{
			Count: 3, Mean: utils.Ptr(4.5), Median: utils.Ptr(5.0),
			BiasDetected: models.BiasLeniency, Recommendation: "Scores run high",
		},
		CentralTendency: models.CentralTendency{BiasDetected: models.BiasNotApplicable},
		DimensionBias: models.DimensionBias{
			Highest:      &models.DimensionExtreme{Dimension: "accuracy", Mean: 5},
			Lowest:       &models.DimensionExtreme{Dimension: "brevity", Mean: 2.5},
			Spread:       utils.Ptr(2.5),
			BiasDetected: models.BiasDimension,
		},
		OutcomeCorrelation: models.OutcomeCorrelation{
			LowerLabel: "critic", HigherLabel: "defender",
			Partitions: map[string]models.OutcomePartition{"critic": {Count: 1, Mean: 4}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, BiasTable(&buf, report))
	lines := rows(buf.String())
	require.Len(t, lines, 6)
	assert.Contains(t, lines[2], "LENIENCY")
	assert.Contains(t, lines[2], "mean 4.50, median 5.00, n=3")
	assert.Contains(t, lines[3], "middle N/A, extreme N/A")
	assert.Contains(t, lines[4], "accuracy 5.00 / brevity 2.50, spread 2.50")
	assert.Contains(t, lines[5], "N/A")
}

func TestCalibrationTable(t *testing.T) {
	report := &calibration.Report{
		Samples:   4,
		Tolerance: 1,
		Dimensions: []calibration.DimensionAgreement{
			{Dimension: "overall", Samples: 4, Exact: 50, WithinTolerance: 75, MAE: 1, Pearson: utils.Ptr(0.424), Status: "fair"},
			{Dimension: "clarity", Samples: 2, Exact: 100, WithinTolerance: 100, Status: "good"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, CalibrationTable(&buf, report))

	lines := rows(buf.String())
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Within ±1")
	assert.Contains(t, lines[2], "0.424")
	assert.Contains(t, lines[2], "fair")
	assert.Contains(t, lines[3], "N/A")
}

func TestKappaTable(t *testing.T) {
	k, err := statistics.CohensKappa([]string{"OB", "OB", "NOB"}, []string{"OB", "NOB", "NOB"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, KappaTable(&buf, k))
	lines := rows(buf.String())
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "NOB")
	assert.Contains(t, lines[0], "OB")
}
