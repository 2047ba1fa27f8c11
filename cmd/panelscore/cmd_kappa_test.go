package main

import (
	"encoding/json"
	"testing"

	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/statistics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKappaCommand_IdenticalLabels(t *testing.T) {
	dir := t.TempDir()
	items := []map[string]string{
		{"sample_id": "1", "final_verdict": "PASS"},
		{"sample_id": "2", "final_verdict": "FAIL"},
		{"sample_id": "3", "final_verdict": "PASS"},
		{"sample_id": "4", "final_verdict": "FAIL"},
	}
	a := writeJSON(t, dir, "a.json", items)
	b := writeJSON(t, dir, "b.json", items)

	out, err := runCLI(t, "kappa", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "Cohen's kappa: 1.000 (Almost Perfect)")
	assert.Contains(t, out, "n=4")
}

func TestKappaCommand_JudgeRunsByID(t *testing.T) {
	dir := t.TempDir()
	runA := models.JudgeRun{Results: []models.AggregatedVerdict{
		{SampleID: "1", FinalVerdict: models.VerdictPass},
		{SampleID: "2", FinalVerdict: models.VerdictFail},
		{SampleID: "3", FinalVerdict: models.VerdictPass},
	}}
	// same verdicts, different order, one extra sample
	runB := models.JudgeRun{Results: []models.AggregatedVerdict{
		{SampleID: "3", FinalVerdict: models.VerdictPass},
		{SampleID: "4", FinalVerdict: models.VerdictFail},
		{SampleID: "1", FinalVerdict: models.VerdictPass},
		{SampleID: "2", FinalVerdict: models.VerdictFail},
	}}
	a := writeJSON(t, dir, "a.json", runA)
	b := writeJSON(t, dir, "b.json", runB)

	out, err := runCLI(t, "kappa", a, b, "--format", "json")
	require.NoError(t, err)
	var k statistics.KappaResult
	require.NoError(t, json.Unmarshal([]byte(out), &k))
	assert.Equal(t, 1.0, k.Kappa)
	assert.Equal(t, 3, k.Samples)
}

func TestKappaCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	a := writeJSON(t, dir, "a.json", []map[string]string{{"label": "x"}})
	obj := writeFile(t, dir, "obj.json", `{"foo": 1}`)

	_, err := runCLI(t, "kappa", a, a)
	require.ErrorContains(t, err, `missing field "final_verdict"`)

	_, err = runCLI(t, "kappa", obj, a, "--field", "label")
	require.ErrorContains(t, err, "expected an array of results")

	_, err = runCLI(t, "kappa", a)
	require.Error(t, err)
}

func TestPairLabels(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []labelled
		wantA  []string
		wantB  []string
	}{
		{
			name:  "by id",
			a:     []labelled{{"1", "x"}, {"2", "y"}, {"3", "z"}},
			b:     []labelled{{"3", "z"}, {"1", "y"}},
			wantA: []string{"x", "z"},
			wantB: []string{"y", "z"},
		},
		{
			name:  "positional when an id is missing",
			a:     []labelled{{"1", "x"}, {"", "y"}},
			b:     []labelled{{"2", "y"}, {"1", "x"}},
			wantA: []string{"x", "y"},
			wantB: []string{"y", "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			la, lb := pairLabels(tt.a, tt.b)
			assert.Equal(t, tt.wantA, la)
			assert.Equal(t, tt.wantB, lb)
		})
	}
}
