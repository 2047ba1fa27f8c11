package judge

import (
	"errors"
	texttemplate "text/template"

	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/template"
)

const promptText = `You are an expert evaluator. Your job is to determine if the module output PASSES or FAILS based on one specific criterion.

## CRITERION: {{or_default "Unknown" .Rubric.Criterion}}

## CHECK
{{.Rubric.Instruction}}

## FAIL DEFINITION (output FAILS if ANY of these are true)
{{or_default "No fail definition provided" .Rubric.FailDefinition}}

## PASS DEFINITION (output PASSES if ALL of these are true)
{{or_default "No pass definition provided" .Rubric.PassDefinition}}
{{- if .Rubric.Examples}}

## EXAMPLES
{{- range $i, $ex := .Rubric.Examples}}

### Example {{add $i 1}}
Input: {{json $ex.Input}}
Output: {{json $ex.Output}}
Label: {{or_default "N/A" $ex.Label}}
Reasoning: {{or_default "N/A" $ex.Reasoning}}
{{- end}}
{{- end}}

---

## INPUT DATA
` + "```json" + `
{{json .Sample.Input}}
` + "```" + `

## MODULE OUTPUT (Evaluate This)
` + "```json" + `
{{json .Sample.Actual}}
` + "```" + `

## EXPECTED OUTPUT (Ground Truth)
` + "```json" + `
{{json .Sample.Expected}}
` + "```" + `

---

## YOUR RESPONSE

IMPORTANT: You MUST provide your reasoning FIRST, then your label.
{{- if .Rubric.Dimensions}}
Score each dimension from 1 (poor) to 5 (excellent), then give an overall score on the same scale.
{{- end}}

Return ONLY this JSON (no other text):
{
  "reasoning": "<explain your evaluation - what did you check, what did you find>",
  "label": "Pass" or "Fail"
{{- if .Rubric.Dimensions}},
  "scores": {
{{- range $i, $d := .Rubric.Dimensions}}{{if $i}},{{end}}
    {{json $d}}: <1-5>
{{- end}}
  },
  "overall": <1-5>
{{- end}}
}`

var promptTemplate = mustParsePrompt()

func mustParsePrompt() *texttemplate.Template {
	t, err := template.Parse("judge-prompt", promptText)
	if err != nil {
		panic(err)
	}
	return t
}

type promptData struct {
	Rubric *models.Rubric
	Sample models.Sample
}

// BuildPrompt renders the judge prompt for one (rubric, sample) pair. The
// same inputs always produce byte-identical output.
func BuildPrompt(rubric *models.Rubric, sample models.Sample) (string, error) {
	if rubric == nil {
		return "", errors.New("nil rubric")
	}
	return template.Execute(promptTemplate, promptData{Rubric: rubric, Sample: sample})
}
