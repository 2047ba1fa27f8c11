package models

import "strings"

// Verdict is a judge's decision for one (sample, rubric) pair.
type Verdict string

const (
	VerdictPass  Verdict = "PASS"
	VerdictFail  Verdict = "FAIL"
	VerdictError Verdict = "ERROR"
)

// ParseVerdict case-folds a raw judge label. Anything that is not
// recognizably "pass" is a FAIL.
func ParseVerdict(raw string) Verdict {
	if strings.EqualFold(strings.TrimSpace(raw), "pass") {
		return VerdictPass
	}
	return VerdictFail
}

// Confidence is the variance-derived confidence of a numeric panel score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
	ConfidenceNone   Confidence = "NONE"
)

// JudgeVerdict is one judge's normalized output.
type JudgeVerdict struct {
	Judge           string             `json:"judge" yaml:"judge"`
	Verdict         Verdict            `json:"verdict" yaml:"verdict"`
	Reasoning       string             `json:"reasoning" yaml:"reasoning"`
	Score           *float64           `json:"score,omitempty" yaml:"score,omitempty"`
	DimensionScores map[string]float64 `json:"dimension_scores,omitempty" yaml:"dimension_scores,omitempty"`
	Tokens          int                `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	DurationMs      int64              `json:"duration_ms" yaml:"duration_ms"`
	// Error holds the invocation error text when Verdict is VerdictError.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// IsError reports whether the judge failed to produce a usable verdict.
func (v JudgeVerdict) IsError() bool {
	return v.Verdict == VerdictError
}

// Votes counts non-error member verdicts.
type Votes struct {
	Pass int `json:"pass" yaml:"pass"`
	Fail int `json:"fail" yaml:"fail"`
}

// Total is the number of members that took part in the vote.
func (v Votes) Total() int {
	return v.Pass + v.Fail
}

// AggregatedVerdict is the panel's combined decision for one (sample, rubric).
//
// Votes.Total() + Errors == len(MemberVerdicts) always holds. Ties resolve to
// FAIL and are observable as Agreement == false with equal vote counts.
type AggregatedVerdict struct {
	SampleID        string             `json:"sample_id" yaml:"sample_id"`
	RubricID        string             `json:"rubric_id" yaml:"rubric_id"`
	Module          string             `json:"module,omitempty" yaml:"module,omitempty"`
	FinalVerdict    Verdict            `json:"final_verdict" yaml:"final_verdict"`
	Reasoning       string             `json:"reasoning" yaml:"reasoning"`
	Votes           Votes              `json:"votes" yaml:"votes"`
	Errors          int                `json:"errors" yaml:"errors"`
	Agreement       bool               `json:"agreement" yaml:"agreement"`
	// AgreementRate is nil when no member cast a valid vote.
	AgreementRate   *float64           `json:"agreement_rate" yaml:"agreement_rate"`
	NeedsReview     bool               `json:"needs_review" yaml:"needs_review"`
	Overall         *float64           `json:"overall,omitempty" yaml:"overall,omitempty"`
	Median          *float64           `json:"median,omitempty" yaml:"median,omitempty"`
	DimensionScores map[string]float64 `json:"dimension_scores,omitempty" yaml:"dimension_scores,omitempty"`
	Confidence      Confidence         `json:"confidence" yaml:"confidence"`
	OutcomeLabel    string             `json:"outcome_label,omitempty" yaml:"outcome_label,omitempty"`
	MemberVerdicts  []JudgeVerdict     `json:"member_verdicts" yaml:"member_verdicts"`
}

// IsTie reports whether the vote was split evenly.
func (a AggregatedVerdict) IsTie() bool {
	return a.Votes.Pass == a.Votes.Fail
}

// ScoredSample converts the verdict into the Bias Auditor's input shape.
// A verdict without a numeric overall score yields an overall of 0, which
// the auditor treats as missing.
func (a AggregatedVerdict) ScoredSample() ScoredSample {
	s := ScoredSample{
		SampleID:        a.SampleID,
		DimensionScores: a.DimensionScores,
		OutcomeLabel:    a.OutcomeLabel,
	}
	if a.Overall != nil {
		s.Overall = *a.Overall
	}
	return s
}
