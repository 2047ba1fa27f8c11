package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spboyer/panelscore/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one rubric.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one sample judged against the suite's rubric.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure is a FAIL verdict from the panel.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError is a sample where every judge errored.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a test as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a judge run to JUnit XML, one suite per rubric
// in the order rubrics first appear in the results.
func ConvertToJUnit(run *models.JudgeRun) *JUnitTestSuites {
	out := &JUnitTestSuites{Name: run.Dataset}

	suites := map[string]*JUnitTestSuite{}
	var order []string
	for _, v := range run.Results {
		suite, ok := suites[v.RubricID]
		if !ok {
			suite = &JUnitTestSuite{
				Name:      v.RubricID,
				Timestamp: run.Timestamp.Format(time.RFC3339),
				Properties: []JUnitProperty{
					{Name: "run_id", Value: run.RunID},
					{Name: "module", Value: v.Module},
					{Name: "panel", Value: panelNames(run.Panel)},
				},
			}
			suites[v.RubricID] = suite
			order = append(order, v.RubricID)
		}

		tc := convertVerdict(&v)
		suite.Tests++
		suite.Time += tc.Time
		switch {
		case tc.Error != nil:
			suite.Errors++
		case tc.Failure != nil:
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	for _, id := range order {
		s := suites[id]
		out.Tests += s.Tests
		out.Failures += s.Failures
		out.Errors += s.Errors
		out.Time += s.Time
		out.TestSuites = append(out.TestSuites, *s)
	}
	return out
}

func panelNames(panel []models.PanelMember) string {
	names := make([]string, len(panel))
	for i, m := range panel {
		names[i] = m.DisplayName()
	}
	return strings.Join(names, ",")
}

func convertVerdict(v *models.AggregatedVerdict) JUnitTestCase {
	// Judges run concurrently, so the slowest member bounds the case.
	var slowest int64
	for _, m := range v.MemberVerdicts {
		slowest = max(slowest, m.DurationMs)
	}

	tc := JUnitTestCase{
		Name:      v.SampleID,
		Classname: v.RubricID,
		Time:      float64(slowest) / 1000.0,
	}

	switch {
	case len(v.MemberVerdicts) > 0 && v.Votes.Total() == 0:
		tc.Error = buildError(v)
	case v.FinalVerdict != models.VerdictPass:
		tc.Failure = buildFailure(v)
	}
	return tc
}

func buildFailure(v *models.AggregatedVerdict) *JUnitFailure {
	msg := fmt.Sprintf("%s: %d pass / %d fail", v.SampleID, v.Votes.Pass, v.Votes.Fail)
	if v.IsTie() {
		msg += " (tie)"
	}
	return &JUnitFailure{
		Message: msg,
		Type:    "PanelFailure",
		Body:    formatMemberVerdicts(v.MemberVerdicts),
	}
}

func buildError(v *models.AggregatedVerdict) *JUnitError {
	msg := "all judges failed"
	for _, m := range v.MemberVerdicts {
		if m.Error != "" {
			msg = m.Error
			break
		}
	}
	return &JUnitError{
		Message: msg,
		Type:    "JudgeError",
		Body:    formatMemberVerdicts(v.MemberVerdicts),
	}
}

func formatMemberVerdicts(verdicts []models.JudgeVerdict) string {
	var b strings.Builder
	for _, m := range verdicts {
		detail := m.Reasoning
		if m.IsError() {
			detail = m.Error
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Verdict, m.Judge, detail)
	}
	return b.String()
}

// WriteJUnitXML writes JUnit XML for run to path.
func WriteJUnitXML(run *models.JudgeRun, path string) error {
	suites := ConvertToJUnit(run)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
