package models

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Rubric is a single pass/fail criterion with explicit definitions.
type Rubric struct {
	ID             string          `yaml:"-" json:"id"`
	Module         string          `yaml:"module" json:"module"`
	Criterion      string          `yaml:"criterion" json:"criterion"`
	Check          string          `yaml:"check,omitempty" json:"check,omitempty"`
	Task           string          `yaml:"task,omitempty" json:"task,omitempty"`
	PassDefinition string          `yaml:"pass_definition" json:"pass_definition"`
	FailDefinition string          `yaml:"fail_definition" json:"fail_definition"`
	Examples       []RubricExample `yaml:"examples,omitempty" json:"examples,omitempty"`
	// Dimensions lists named sub-scores a judge should return in a single
	// structured response.
	Dimensions []string `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
}

// Instruction returns the check text, falling back to the legacy "task" key.
func (r Rubric) Instruction() string {
	if r.Check != "" {
		return r.Check
	}
	if r.Task != "" {
		return r.Task
	}
	return "Evaluate the output"
}

// RubricExample is a few-shot example embedded in judge prompts.
type RubricExample struct {
	Input     any    `yaml:"input,omitempty" json:"input,omitempty"`
	Output    any    `yaml:"output,omitempty" json:"output,omitempty"`
	Label     string `yaml:"label,omitempty" json:"label,omitempty"`
	Reasoning string `yaml:"reasoning,omitempty" json:"reasoning,omitempty"`
}

// PanelMember configures one judge on a PoLL panel.
type PanelMember struct {
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Model    string `yaml:"model" json:"model"`
	Provider string `yaml:"provider" json:"provider"`
	// Repeat runs the same judge several times for variance estimation.
	Repeat int `yaml:"repeat,omitempty" json:"repeat,omitempty"`
}

// DisplayName is the name recorded on each JudgeVerdict.
func (m PanelMember) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Provider + "/" + m.Model
}

// DefaultPanel is used when a rubric file configures no panel.
func DefaultPanel() []PanelMember {
	return []PanelMember{
		{Model: "gpt-4o-mini", Provider: "openai"},
		{Model: "claude-3-haiku-20240307", Provider: "anthropic"},
		{Model: "command-r", Provider: "cohere"},
	}
}

// RubricSet is the decoded rubric file.
type RubricSet struct {
	Rubrics map[string]*Rubric `yaml:"rubrics"`
	Judges  struct {
		Panel []PanelMember `yaml:"poll_panel,omitempty"`
	} `yaml:"judges,omitempty"`
}

// LoadRubricSet reads a rubric YAML file.
func LoadRubricSet(path string) (*RubricSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRubricSet(data)
}

// ParseRubricSet decodes rubric YAML and fills in each rubric's ID.
func ParseRubricSet(data []byte) (*RubricSet, error) {
	var set RubricSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing rubrics: %w", err)
	}
	if set.Rubrics == nil {
		set.Rubrics = map[string]*Rubric{}
	}
	for id, r := range set.Rubrics {
		if r == nil {
			return nil, fmt.Errorf("rubric %q is empty", id)
		}
		r.ID = id
	}
	return &set, nil
}

// Get returns the rubric with the given ID, or nil.
func (s *RubricSet) Get(id string) *Rubric {
	return s.Rubrics[id]
}

// IDs returns all rubric IDs in sorted order.
func (s *RubricSet) IDs() []string {
	ids := make([]string, 0, len(s.Rubrics))
	for id := range s.Rubrics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ForModule returns the rubrics whose module matches, sorted by ID.
func (s *RubricSet) ForModule(module string) []*Rubric {
	var out []*Rubric
	for _, id := range s.IDs() {
		if r := s.Rubrics[id]; r.Module == module {
			out = append(out, r)
		}
	}
	return out
}

// Panel returns the configured PoLL panel or the default one.
func (s *RubricSet) Panel() []PanelMember {
	if len(s.Judges.Panel) > 0 {
		return s.Judges.Panel
	}
	return DefaultPanel()
}
