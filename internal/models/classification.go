package models

import (
	"fmt"
	"slices"
)

// ModuleKind selects the comparison strategy used to score a module.
type ModuleKind string

const (
	KindBinary         ModuleKind = "binary"
	KindMulticlass     ModuleKind = "multiclass"
	KindListExtraction ModuleKind = "list_extraction"
	KindFreeText       ModuleKind = "free_text"
)

// Valid reports whether k is a known module kind.
func (k ModuleKind) Valid() bool {
	switch k {
	case KindBinary, KindMulticlass, KindListExtraction, KindFreeText:
		return true
	}
	return false
}

// OutcomeLabels are display names for the four confusion cells.
type OutcomeLabels struct {
	TP string `mapstructure:"tp" yaml:"tp" json:"tp"`
	TN string `mapstructure:"tn" yaml:"tn" json:"tn"`
	FP string `mapstructure:"fp" yaml:"fp" json:"fp"`
	FN string `mapstructure:"fn" yaml:"fn" json:"fn"`
}

// ClassifierConfig describes how to score one pipeline module.
//
// Fields lists candidate keys shared by both sides. ExpectedFields and
// OutputFields override it per side. Candidates are tried in order and the
// first non-null value wins.
type ClassifierConfig struct {
	ID               string        `mapstructure:"id" yaml:"id" json:"id"`
	Name             string        `mapstructure:"name" yaml:"name" json:"name"`
	Kind             ModuleKind    `mapstructure:"kind" yaml:"kind" json:"kind"`
	Folder           string        `mapstructure:"folder" yaml:"folder,omitempty" json:"folder,omitempty"`
	Fields           []string      `mapstructure:"fields" yaml:"fields,omitempty" json:"fields,omitempty"`
	ExpectedFields   []string      `mapstructure:"expected_fields" yaml:"expected_fields,omitempty" json:"expected_fields,omitempty"`
	OutputFields     []string      `mapstructure:"output_fields" yaml:"output_fields,omitempty" json:"output_fields,omitempty"`
	PositiveExpected any           `mapstructure:"positive_expected" yaml:"positive_expected,omitempty" json:"positive_expected,omitempty"`
	PositiveOutput   any           `mapstructure:"positive_output" yaml:"positive_output,omitempty" json:"positive_output,omitempty"`
	NullIsNegative   bool          `mapstructure:"null_is_negative" yaml:"null_is_negative,omitempty" json:"null_is_negative,omitempty"`
	SkipNoneExpected bool          `mapstructure:"skip_none_expected" yaml:"skip_none_expected,omitempty" json:"skip_none_expected,omitempty"`
	Classes          []string      `mapstructure:"classes" yaml:"classes,omitempty" json:"classes,omitempty"`
	Labels           OutcomeLabels `mapstructure:"labels" yaml:"labels,omitempty" json:"labels,omitempty"`
	Note             string        `mapstructure:"note" yaml:"note,omitempty" json:"note,omitempty"`
}

// ExpectedCandidates returns the ordered field candidates for the expected side.
func (c ClassifierConfig) ExpectedCandidates() []string {
	if len(c.ExpectedFields) > 0 {
		return c.ExpectedFields
	}
	return c.Fields
}

// OutputCandidates returns the ordered field candidates for the output side.
func (c ClassifierConfig) OutputCandidates() []string {
	if len(c.OutputFields) > 0 {
		return c.OutputFields
	}
	return c.Fields
}

// Validate checks that the config can drive a scorer.
func (c ClassifierConfig) Validate() error {
	if c.Kind == "" {
		return fmt.Errorf("module %q: kind is required", c.ID)
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("module %q: unknown kind %q", c.ID, c.Kind)
	}
	if c.Kind == KindFreeText {
		return nil
	}
	if len(c.ExpectedCandidates()) == 0 || len(c.OutputCandidates()) == 0 {
		return fmt.Errorf("module %q: no fields configured", c.ID)
	}
	if c.Kind == KindMulticlass {
		if len(c.Classes) < 2 {
			return fmt.Errorf("module %q: multiclass needs at least 2 classes, got %d", c.ID, len(c.Classes))
		}
		if c.PositiveExpected != nil {
			p, ok := c.PositiveExpected.(string)
			if !ok || !slices.Contains(c.Classes, p) {
				return fmt.Errorf("module %q: positive_expected %v is not one of the classes %v", c.ID, c.PositiveExpected, c.Classes)
			}
		}
	}
	return nil
}
