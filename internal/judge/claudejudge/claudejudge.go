// Package claudejudge calls Anthropic's Messages API as a panel judge.
package claudejudge

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spboyer/panelscore/internal/judge"
)

const defaultMaxTokens = 1024

// Invoker sends judge prompts to a Claude model at temperature 0.
type Invoker struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

var _ judge.Invoker = (*Invoker)(nil)

// New creates an Invoker for model. Request options (API key, base URL)
// are passed through to the Anthropic client.
func New(model string, opts ...option.RequestOption) *Invoker {
	return &Invoker{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: defaultMaxTokens,
	}
}

// Invoke implements [judge.Invoker].
func (i *Invoker) Invoke(ctx context.Context, prompt string) (*judge.Response, error) {
	msg, err := i.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(i.model),
		MaxTokens: i.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic %s: %w", i.model, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &judge.Response{
		Text:   text.String(),
		Tokens: int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		Model:  string(msg.Model),
	}, nil
}
