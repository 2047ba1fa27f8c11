package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spboyer/panelscore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brandDataset writes a JSONL file of m02 rows. Each pair is
// (expected, output) for branding_scope_1; "" means null.
func brandDataset(t *testing.T, dir, name string, pairs ...[2]string) string {
	t.Helper()
	val := func(s string) string {
		if s == "" {
			return "null"
		}
		return `"` + s + `"`
	}
	var b strings.Builder
	for i, p := range pairs {
		fmt.Fprintf(&b, `{"sample_id": "s%d", "input": {"keyword": "kw-%d"}, "expected": {"branding_scope_1": %s}, "output": {"branding_scope_1": %s}}`+"\n",
			i+1, i+1, val(p[0]), val(p[1]))
	}
	return writeFile(t, dir, name, b.String())
}

func perfectPairs() [][2]string {
	var pairs [][2]string
	for range 5 {
		pairs = append(pairs, [2]string{"OB", "OB"})
	}
	for range 5 {
		pairs = append(pairs, [2]string{"", ""})
	}
	return pairs
}

func TestScoreCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	path := brandDataset(t, dir, "results_v2_gpt4o.jsonl", perfectPairs()...)

	out, err := runCLI(t, "score", path, "--module", "m02", "--format", "json", "--config", dir)
	require.NoError(t, err)

	var records []models.ScoreRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "m02", r.Module)
	assert.Equal(t, 10, r.Total)
	assert.Equal(t, 5, r.TP)
	assert.Equal(t, 5, r.TN)
	assert.Equal(t, 100.0, r.F1)
	assert.Equal(t, 1.0, r.MCC)
}

func TestScoreCommand_TableAndMerge(t *testing.T) {
	dir := t.TempDir()
	a := brandDataset(t, dir, "a.jsonl", perfectPairs()...)
	b := brandDataset(t, dir, "b.jsonl", [2]string{"OB", ""}, [2]string{"OB", "OB"}, [2]string{"", "OB"})
	outFile := filepath.Join(dir, "out", "scores.yaml")

	out, err := runCLI(t, "score", a, b, "-m", "M02", "--merge", "--interpret", "-o", outFile, "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "m02_merged")
	assert.Contains(t, out, "=== Interpretation ===")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_id: m02_merged")
	assert.Contains(t, string(data), "total: 13")
}

func TestScoreCommand_Directory(t *testing.T) {
	dir := t.TempDir()
	runs := filepath.Join(dir, "runs")
	require.NoError(t, os.MkdirAll(runs, 0o755))
	brandDataset(t, runs, "results_a.jsonl", perfectPairs()...)
	brandDataset(t, runs, "results_b.jsonl", perfectPairs()...)
	brandDataset(t, runs, "scratch.jsonl", [2]string{"OB", ""})

	out, err := runCLI(t, "score", runs, "-m", "m02", "--pattern", "results_*", "--format", "json", "--config", dir)
	require.NoError(t, err)

	var records []models.ScoreRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, 100.0, r.F1)
	}
}

func TestScoreCommand_MinF1(t *testing.T) {
	dir := t.TempDir()
	path := brandDataset(t, dir, "weak.jsonl", [2]string{"OB", ""}, [2]string{"OB", "OB"}, [2]string{"", "OB"}, [2]string{"", ""})

	_, err := runCLI(t, "score", path, "-m", "m02", "--min-f1", "90", "--config", dir)
	var thresholdErr *ThresholdError
	require.True(t, errors.As(err, &thresholdErr), "got %v", err)
	assert.Contains(t, thresholdErr.Message, "below --min-f1")
}

func TestScoreCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	path := brandDataset(t, dir, "a.jsonl", perfectPairs()...)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown module", []string{"score", path, "-m", "m99"}, `unknown module "m99"`},
		{"bad format", []string{"score", path, "-m", "m02", "-f", "xml"}, "unsupported format"},
		{"missing file", []string{"score", filepath.Join(dir, "nope.jsonl"), "-m", "m02"}, "loading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, append(tt.args, "--config", dir)...)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestScoreCommand_ModuleFromProjectConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".panelscore.yaml", `
modules:
  m02:
    positive_expected: OB
    positive_output: OB
`)
	path := brandDataset(t, dir, "a.jsonl", [2]string{"OB", "OB"}, [2]string{"NOB", "NOB"})

	out, err := runCLI(t, "score", path, "-m", "m02", "-f", "json", "--config", dir)
	require.NoError(t, err)

	var records []models.ScoreRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Equal(t, 1, records[0].TP)
	assert.Equal(t, 1, records[0].TN)
}

func TestScoreCommand_FreeTextNotScorable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".panelscore.yaml", `
modules:
  m10:
    kind: free_text
`)
	path := brandDataset(t, dir, "a.jsonl", perfectPairs()...)

	_, err := runCLI(t, "score", path, "-m", "m10", "--config", dir)
	require.ErrorContains(t, err, "not exact-comparable")
}
