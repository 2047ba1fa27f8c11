package judge

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"math"
	"regexp"

	"github.com/spboyer/panelscore/internal/tokens"
)

var dimensionLine = regexp.MustCompile(`(?m)^\s+"([^"]+)": <1-5>,?$`)

// MockInvoker is an offline judge for tests and dry runs. Its verdict and
// scores are derived from a hash of the model name and prompt, so the same
// prompt always gets the same answer.
type MockInvoker struct {
	model string
}

// NewMockInvoker creates a mock judge posing as model.
func NewMockInvoker(model string) *MockInvoker {
	return &MockInvoker{model: model}
}

// Invoke implements [Invoker].
func (m *MockInvoker) Invoke(ctx context.Context, prompt string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(m.model + "\x00" + prompt))

	label := "Fail"
	if sum[0]%2 == 0 {
		label = "Pass"
	}
	body := map[string]any{
		"reasoning": "mock judgment by " + m.model,
		"label":     label,
	}

	var dims []string
	for _, match := range dimensionLine.FindAllStringSubmatch(prompt, -1) {
		if match[1] != "overall" {
			dims = append(dims, match[1])
		}
	}
	if len(dims) > 0 {
		scores := make(map[string]float64, len(dims))
		total := 0.0
		for i, d := range dims {
			s := float64(1 + int(sum[(i+2)%len(sum)])%5)
			scores[d] = s
			total += s
		}
		body["scores"] = scores
		body["overall"] = math.Round(total/float64(len(dims))*10) / 10
	}

	text, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return &Response{
		Text:   string(text),
		Tokens: tokens.EstimateExchange(prompt, string(text)),
		Model:  m.model,
	}, nil
}
