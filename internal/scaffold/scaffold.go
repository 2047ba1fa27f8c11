// Package scaffold generates starter rubric and project files for
// "panelscore init".
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/projectconfig"
)

var moduleIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ErrExists is returned when a file would be overwritten without force.
var ErrExists = errors.New("file already exists")

// ValidateModule rejects module ids that cannot prefix a rubric id.
func ValidateModule(module string) error {
	if module == "" {
		return fmt.Errorf("module must not be empty")
	}
	if !moduleIDPattern.MatchString(module) {
		return fmt.Errorf("module %q must start with a letter and contain only letters, digits and underscores", module)
	}
	return nil
}

// RubricsYAML returns a starter rubric file with one scored rubric for
// module and the given panel.
func RubricsYAML(module string, panel []models.PanelMember) string {
	var b strings.Builder
	fmt.Fprintf(&b, `rubrics:
  %[1]s_correctness:
    module: %[1]s
    criterion: The output is correct for the input
    check: Does the output match what a careful human reviewer would produce?
    pass_definition: The output is correct and complete
    fail_definition: The output is wrong, incomplete or unsupported by the input
    dimensions:
      - accuracy
      - reasoning
    examples:
      - input: {keyword: "example keyword"}
        output: {label: "expected label"}
        label: PASS
        reasoning: The label matches the keyword
`, module)

	if len(panel) > 0 {
		b.WriteString("\njudges:\n  poll_panel:\n")
		for _, m := range panel {
			fmt.Fprintf(&b, "    - model: %s\n      provider: %s\n", m.Model, m.Provider)
		}
	}
	return b.String()
}

// ProjectYAML returns a starter .panelscore.yaml.
func ProjectYAML(rubricsFile string) string {
	return fmt.Sprintf(`rubrics: %s
results: %s
workers: %d
timeout: %d
judge:
  provider: %s
  model: %s
cache:
  enabled: false
  dir: %s
bias:
  lower: critic
  higher: defender
  fallback: tie
`, rubricsFile, projectconfig.DefaultResultsDir, projectconfig.DefaultWorkers, projectconfig.DefaultTimeout,
		projectconfig.DefaultJudgeProvider, projectconfig.DefaultJudgeModel, projectconfig.DefaultCacheDir)
}

// WriteFiles writes each name → content pair under dir and returns the
// paths written. Existing files fail with ErrExists unless force is set.
// Nothing is written if any file would be refused.
func WriteFiles(dir string, files map[string]string, names []string, force bool) ([]string, error) {
	if !force {
		for _, name := range names {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return nil, fmt.Errorf("%s: %w (use --force to overwrite)", p, ErrExists)
			}
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	written := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(files[name]), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}
