package reporting

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(judge string, v models.Verdict, reasoning string, ms int64) models.JudgeVerdict {
	return models.JudgeVerdict{Judge: judge, Verdict: v, Reasoning: reasoning, DurationMs: ms}
}

func newTestRun() *models.JudgeRun {
	return &models.JudgeRun{
		RunID:     "run-1",
		Timestamp: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Dataset:   "brand_keywords.csv",
		Panel: []models.PanelMember{
			{Model: "gpt-4o-mini", Provider: "openai"},
			{Name: "haiku", Model: "claude-3-haiku-20240307", Provider: "anthropic"},
		},
		Summaries: []models.RubricSummary{
			{RubricID: "M02_brand_detection", Module: "M02", PassCount: 1, FailCount: 1, AgreementRate: utils.Ptr(0.75)},
			{RubricID: "M04_competitor", Module: "M04", PassCount: 0, FailCount: 0, ErrorCount: 1},
		},
		InterJudge: models.InterJudgeStats{TotalEvaluations: 2, UnanimousCount: 1, UnanimousRate: utils.Ptr(0.5), SplitDecisions: 1, AvgAgreementRate: utils.Ptr(0.75)},
		Results: []models.AggregatedVerdict{
			{
				SampleID: "s1", RubricID: "M02_brand_detection", Module: "M02",
				FinalVerdict: models.VerdictPass, Votes: models.Votes{Pass: 2}, Agreement: true, AgreementRate: utils.Ptr(1.0),
				MemberVerdicts: []models.JudgeVerdict{
					member("openai/gpt-4o-mini", models.VerdictPass, "brand found", 1200),
					member("haiku", models.VerdictPass, "ok", 800),
				},
			},
			{
				SampleID: "s2", RubricID: "M02_brand_detection", Module: "M02",
				FinalVerdict: models.VerdictFail, Votes: models.Votes{Pass: 1, Fail: 1}, AgreementRate: utils.Ptr(0.5), NeedsReview: true,
				MemberVerdicts: []models.JudgeVerdict{
					member("openai/gpt-4o-mini", models.VerdictPass, "close enough", 500),
					member("haiku", models.VerdictFail, "brand missed", 2500),
				},
			},
			{
				SampleID: "s1", RubricID: "M04_competitor", Module: "M04",
				FinalVerdict: models.VerdictFail, Errors: 2,
				MemberVerdicts: []models.JudgeVerdict{
					{Judge: "openai/gpt-4o-mini", Verdict: models.VerdictError, Error: "rate limited"},
					{Judge: "haiku", Verdict: models.VerdictError, Error: "timeout"},
				},
			},
		},
	}
}

func TestConvertToJUnit(t *testing.T) {
	suites := ConvertToJUnit(newTestRun())

	assert.Equal(t, "brand_keywords.csv", suites.Name)
	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Errors)
	assert.InDelta(t, 3.7, suites.Time, 1e-9)
	require.Len(t, suites.TestSuites, 2)

	m02 := suites.TestSuites[0]
	assert.Equal(t, "M02_brand_detection", m02.Name)
	assert.Equal(t, 2, m02.Tests)
	assert.Equal(t, 1, m02.Failures)
	assert.Equal(t, "2025-06-15T12:00:00Z", m02.Timestamp)
	assert.Contains(t, m02.Properties, JUnitProperty{Name: "run_id", Value: "run-1"})
	assert.Contains(t, m02.Properties, JUnitProperty{Name: "panel", Value: "openai/gpt-4o-mini,haiku"})

	require.Len(t, m02.TestCases, 2)
	pass := m02.TestCases[0]
	assert.Equal(t, "s1", pass.Name)
	assert.Equal(t, "M02_brand_detection", pass.Classname)
	assert.InDelta(t, 1.2, pass.Time, 1e-9)
	assert.Nil(t, pass.Failure)
	assert.Nil(t, pass.Error)

	tie := m02.TestCases[1]
	require.NotNil(t, tie.Failure)
	assert.Equal(t, "s2: 1 pass / 1 fail (tie)", tie.Failure.Message)
	assert.Equal(t, "PanelFailure", tie.Failure.Type)
	assert.Contains(t, tie.Failure.Body, "[FAIL] haiku: brand missed")

	errored := suites.TestSuites[1].TestCases[0]
	require.NotNil(t, errored.Error)
	assert.Equal(t, "rate limited", errored.Error.Message)
	assert.Equal(t, "JudgeError", errored.Error.Type)
	assert.Equal(t, 1, suites.TestSuites[1].Errors)
}

func TestConvertToJUnit_Empty(t *testing.T) {
	suites := ConvertToJUnit(&models.JudgeRun{RunID: "empty"})
	assert.Equal(t, 0, suites.Tests)
	assert.Empty(t, suites.TestSuites)
}

func TestWriteJUnitXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xml")
	require.NoError(t, WriteJUnitXML(newTestRun(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))

	var parsed JUnitTestSuites
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, 3, parsed.Tests)
	require.Len(t, parsed.TestSuites, 2)
	assert.Equal(t, "M04_competitor", parsed.TestSuites[1].Name)
}

func TestWriteJUnitXML_BadPath(t *testing.T) {
	err := WriteJUnitXML(newTestRun(), filepath.Join(t.TempDir(), "missing", "results.xml"))
	require.Error(t, err)
}
