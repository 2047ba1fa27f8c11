package reporting

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/panelscore/internal/models"
)

// InterpretScore returns a plain-language label for a percentage metric
// such as accuracy or F1 (0-100).
func InterpretScore(pct float64) string {
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretMCC labels a Matthews correlation coefficient.
func InterpretMCC(mcc float64) string {
	switch {
	case mcc >= 0.7:
		return "Strong"
	case mcc >= 0.4:
		return "Moderate"
	case mcc > 0:
		return "Weak"
	case mcc == 0:
		return "No better than chance"
	default:
		return "Inverse"
	}
}

// InterpretPassRate returns a human-readable explanation of a rubric pass
// rate (0-1).
func InterpretPassRate(rate float64) string {
	pct := rate * 100
	switch {
	case pct >= 100:
		return fmt.Sprintf("All samples passed (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most samples passed (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the samples passed (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few samples passed (%.0f%%)", pct)
	}
}

// InterpretAgreement explains how consistently the panel voted. A nil rate
// means no judge produced a valid vote.
func InterpretAgreement(rate *float64) string {
	if rate == nil {
		return "No valid judge votes."
	}
	pct := *rate * 100
	switch {
	case *rate >= 1:
		return "Judges were unanimous."
	case *rate >= 0.8:
		return fmt.Sprintf("Judges mostly agreed (%.0f%%).", pct)
	default:
		return fmt.Sprintf("Judges often disagreed (%.0f%%). Review the rubric definitions for ambiguity.", pct)
	}
}

// FormatScoreReport produces a plain-language report for scored runs.
func FormatScoreReport(records []models.ScoreRecord) string {
	var b strings.Builder
	b.WriteString("=== Interpretation ===\n\n")

	width := 0
	for _, r := range records {
		width = max(width, runewidth.StringWidth(r.RunID))
	}
	for _, r := range records {
		fmt.Fprintf(&b, "%s  F1 %5.1f%% %s, MCC %.3f %s\n",
			padRight(r.RunID, width), r.F1, InterpretScore(r.F1), r.MCC, InterpretMCC(r.MCC))
		if r.Skipped > 0 || r.Duplicates > 0 {
			fmt.Fprintf(&b, "%s  %d skipped, %d duplicates\n", padRight("", width), r.Skipped, r.Duplicates)
		}
	}
	return b.String()
}

// FormatJudgeReport produces a plain-language report for a judge run.
func FormatJudgeReport(run *models.JudgeRun) string {
	var b strings.Builder
	b.WriteString("=== Interpretation ===\n\n")

	fmt.Fprintf(&b, "Run:        %s\n", run.RunID)
	fmt.Fprintf(&b, "Panel:      %s\n", panelNames(run.Panel))
	fmt.Fprintf(&b, "Evaluated:  %d\n", run.InterJudge.TotalEvaluations)
	fmt.Fprintf(&b, "Agreement:  %s\n", InterpretAgreement(run.InterJudge.AvgAgreementRate))
	if run.InterJudge.SplitDecisions > 0 {
		fmt.Fprintf(&b, "Split:      %d decisions need review\n", run.InterJudge.SplitDecisions)
	}

	if len(run.Summaries) > 0 {
		b.WriteString("\nPer-Rubric Interpretation:\n")
		width := 0
		for _, s := range run.Summaries {
			width = max(width, runewidth.StringWidth(s.RubricID))
		}
		for _, s := range run.Summaries {
			icon := "✓"
			if s.FailCount > 0 || s.ErrorCount > 0 {
				icon = "✗"
			}
			fmt.Fprintf(&b, "  %s %s  %s\n", icon, padRight(s.RubricID, width), InterpretPassRate(s.PassRate()))
			if s.ErrorCount > 0 {
				fmt.Fprintf(&b, "    %d samples had no usable judge verdict\n", s.ErrorCount)
			}
		}
	}
	return b.String()
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
