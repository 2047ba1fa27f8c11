package models

import "time"

// ExperimentInfo identifies which pipeline run produced a scored file.
type ExperimentInfo struct {
	SourceFile    string `json:"source_file" yaml:"source_file"`
	PromptVersion string `json:"prompt_version" yaml:"prompt_version"`
	Model         string `json:"model" yaml:"model"`
	Dataset       string `json:"dataset" yaml:"dataset"`
}

// ScoreRecord is the flat, serializable output of scoring one run of one
// module. Percentages are rounded to one decimal, MCC to three.
type ScoreRecord struct {
	RunID          string     `json:"run_id" yaml:"run_id"`
	Module         string     `json:"module" yaml:"module"`
	Kind           ModuleKind `json:"kind" yaml:"kind"`
	ExperimentInfo `yaml:",inline"`

	Total      int     `json:"total" yaml:"total"`
	TP         int     `json:"tp" yaml:"tp"`
	TN         int     `json:"tn" yaml:"tn"`
	FP         int     `json:"fp" yaml:"fp"`
	FN         int     `json:"fn" yaml:"fn"`
	Accuracy   float64 `json:"accuracy" yaml:"accuracy"`
	Precision  float64 `json:"precision" yaml:"precision"`
	Recall     float64 `json:"recall" yaml:"recall"`
	F1         float64 `json:"f1" yaml:"f1"`
	MCC        float64 `json:"mcc" yaml:"mcc"`
	Skipped    int     `json:"skipped" yaml:"skipped"`
	Duplicates int     `json:"duplicates" yaml:"duplicates"`

	Labels *OutcomeLabels `json:"labels,omitempty" yaml:"labels,omitempty"`
	Note   string         `json:"note,omitempty" yaml:"note,omitempty"`
	// ChosenFields counts which candidate field supplied each extracted
	// value, keyed "expected.<field>" / "output.<field>".
	ChosenFields map[string]int    `json:"chosen_fields,omitempty" yaml:"chosen_fields,omitempty"`
	Multiclass   *MulticlassDetail `json:"multiclass,omitempty" yaml:"multiclass,omitempty"`
}

// ClassMetrics is one-vs-rest performance for a single class.
type ClassMetrics struct {
	TP        int     `json:"tp" yaml:"tp"`
	FP        int     `json:"fp" yaml:"fp"`
	FN        int     `json:"fn" yaml:"fn"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
}

// MulticlassDetail carries the per-class breakdown of a multiclass module.
type MulticlassDetail struct {
	Correct              int                       `json:"correct" yaml:"correct"`
	Accuracy             float64                   `json:"accuracy" yaml:"accuracy"`
	MacroF1              float64                   `json:"macro_f1" yaml:"macro_f1"`
	PerClass             map[string]ClassMetrics   `json:"per_class" yaml:"per_class"`
	ConfusionMatrix      map[string]map[string]int `json:"confusion_matrix" yaml:"confusion_matrix"`
	ExpectedDistribution map[string]int            `json:"expected_distribution" yaml:"expected_distribution"`
	ActualDistribution   map[string]int            `json:"actual_distribution" yaml:"actual_distribution"`
}

// RubricSummary is the per-rubric roll-up of aggregated verdicts.
type RubricSummary struct {
	RubricID   string `json:"rubric_id" yaml:"rubric_id"`
	Module     string `json:"module,omitempty" yaml:"module,omitempty"`
	PassCount  int    `json:"pass_count" yaml:"pass_count"`
	FailCount  int    `json:"fail_count" yaml:"fail_count"`
	ErrorCount int    `json:"error_count" yaml:"error_count"`

	// AgreementRate is nil when no verdict for the rubric had a valid vote.
	AgreementRate *float64 `json:"agreement_rate" yaml:"agreement_rate"`
}

// PassRate is the fraction of samples that passed the rubric.
func (s RubricSummary) PassRate() float64 {
	total := s.PassCount + s.FailCount
	if total == 0 {
		return 0
	}
	return float64(s.PassCount) / float64(total)
}

// InterJudgeStats summarizes how often a panel agreed across a batch. The
// rates are nil when TotalEvaluations is zero.
type InterJudgeStats struct {
	TotalEvaluations int      `json:"total_evaluations" yaml:"total_evaluations"`
	UnanimousCount   int      `json:"unanimous_count" yaml:"unanimous_count"`
	UnanimousRate    *float64 `json:"unanimous_rate" yaml:"unanimous_rate"`
	SplitDecisions   int      `json:"split_decisions" yaml:"split_decisions"`
	AvgAgreementRate *float64 `json:"avg_agreement_rate" yaml:"avg_agreement_rate"`
}

// JudgeRun is the complete result of judging a dataset with a panel.
type JudgeRun struct {
	RunID      string              `json:"run_id" yaml:"run_id"`
	Timestamp  time.Time           `json:"timestamp" yaml:"timestamp"`
	Dataset    string              `json:"dataset" yaml:"dataset"`
	Panel      []PanelMember       `json:"panel" yaml:"panel"`
	Summaries  []RubricSummary     `json:"summaries" yaml:"summaries"`
	InterJudge InterJudgeStats     `json:"inter_judge" yaml:"inter_judge"`
	Bias       *BiasReport         `json:"bias,omitempty" yaml:"bias,omitempty"`
	Results    []AggregatedVerdict `json:"results" yaml:"results"`
}
