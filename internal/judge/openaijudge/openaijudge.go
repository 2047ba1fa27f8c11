// Package openaijudge calls the OpenAI chat completions API as a panel judge.
package openaijudge

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/spboyer/panelscore/internal/judge"
)

// Invoker asks an OpenAI model for a JSON-object verdict at temperature 0.
type Invoker struct {
	client openai.Client
	model  string
}

var _ judge.Invoker = (*Invoker)(nil)

// New creates an Invoker for model.
func New(model string, opts ...option.RequestOption) *Invoker {
	return &Invoker{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Invoke implements [judge.Invoker].
func (i *Invoker) Invoke(ctx context.Context, prompt string) (*judge.Response, error) {
	resp, err := i.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(i.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai %s: %w", i.model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai %s: %w", i.model, judge.ErrEmptyResponse)
	}

	return &judge.Response{
		Text:   resp.Choices[0].Message.Content,
		Tokens: int(resp.Usage.TotalTokens),
		Model:  resp.Model,
	}, nil
}
