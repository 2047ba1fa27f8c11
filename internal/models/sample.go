package models

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Sample is one (input, expected, actual) triple for a single pipeline
// module and data row. Values are decoded JSON.
type Sample struct {
	SampleID string `json:"sample_id" yaml:"sample_id"`
	Input    any    `json:"input" yaml:"input"`
	Expected any    `json:"expected" yaml:"expected"`
	Actual   any    `json:"output" yaml:"output"`
	Keyword  string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	ASIN     string `json:"asin,omitempty" yaml:"asin,omitempty"`
	// OutcomeLabel is an optional categorical outcome carried through to
	// bias auditing (e.g. which side won a debate).
	OutcomeLabel string `json:"outcome_label,omitempty" yaml:"outcome_label,omitempty"`
}

// ScoredSample is one judged sample as consumed by the Bias Auditor.
type ScoredSample struct {
	SampleID        string             `json:"sample_id" yaml:"sample_id"`
	Overall         float64            `json:"overall" yaml:"overall"`
	DimensionScores map[string]float64 `json:"dimension_scores,omitempty" yaml:"dimension_scores,omitempty"`
	OutcomeLabel    string             `json:"outcome_label,omitempty" yaml:"outcome_label,omitempty"`
}

// scoredSampleFields also reads "scores", the key judges use in their
// replies, when "dimension_scores" is absent.
type scoredSampleFields struct {
	SampleID        string             `json:"sample_id" yaml:"sample_id"`
	Overall         float64            `json:"overall" yaml:"overall"`
	DimensionScores map[string]float64 `json:"dimension_scores" yaml:"dimension_scores"`
	Scores          map[string]float64 `json:"scores" yaml:"scores"`
	OutcomeLabel    string             `json:"outcome_label" yaml:"outcome_label"`
}

func (f scoredSampleFields) sample() ScoredSample {
	s := ScoredSample{
		SampleID:        f.SampleID,
		Overall:         f.Overall,
		DimensionScores: f.DimensionScores,
		OutcomeLabel:    f.OutcomeLabel,
	}
	if s.DimensionScores == nil {
		s.DimensionScores = f.Scores
	}
	return s
}

func (s *ScoredSample) UnmarshalJSON(data []byte) error {
	var f scoredSampleFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = f.sample()
	return nil
}

func (s *ScoredSample) UnmarshalYAML(node *yaml.Node) error {
	var f scoredSampleFields
	if err := node.Decode(&f); err != nil {
		return err
	}
	*s = f.sample()
	return nil
}
