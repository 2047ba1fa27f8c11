// Package copilotjudge runs panel judges through a GitHub Copilot session.
package copilotjudge

import (
	"context"
	"fmt"
	"log/slog"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/spboyer/panelscore/internal/judge"
	"github.com/spboyer/panelscore/internal/tokens"
	"github.com/spboyer/panelscore/internal/utils"
)

// Options configures the Copilot judge.
type Options struct {
	// Cwd is the working directory for the Copilot CLI process.
	Cwd string
	// NewCopilotClient overrides client construction, for tests.
	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// Invoker sends each prompt in a fresh Copilot session, so judgments never
// share conversation state.
type Invoker struct {
	model     string
	cwd       string
	newClient func(clientOptions *copilot.ClientOptions) copilotClient
}

var _ judge.Invoker = (*Invoker)(nil)

// New creates a Copilot judge for model. opts may be nil.
func New(model string, opts *Options) *Invoker {
	inv := &Invoker{model: model, newClient: newCopilotClient}
	if opts != nil {
		inv.cwd = opts.Cwd
		if opts.NewCopilotClient != nil {
			inv.newClient = opts.NewCopilotClient
		}
	}
	return inv
}

// Invoke implements [judge.Invoker].
func (i *Invoker) Invoke(ctx context.Context, prompt string) (*judge.Response, error) {
	client := i.newClient(&copilot.ClientOptions{
		Cwd:             i.cwd,
		AutoStart:       utils.Ptr(true),
		AutoRestart:     utils.Ptr(true),
		UseLoggedInUser: utils.Ptr(true),
		LogLevel:        "error",
	})

	defer func() {
		if err := client.Stop(); err != nil {
			slog.ErrorContext(ctx, "error stopping client for copilot judge", "error", err)
		}
	}()

	session, err := client.CreateSession(ctx, &copilot.SessionConfig{
		Model:     i.model,
		Streaming: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start copilot session for judging: %w", err)
	}

	unregister := session.On(utils.SessionLogger("copilot/" + i.model))
	defer unregister()

	resp, err := session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: prompt,
		Mode:   "enqueue",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send judge prompt: %w", err)
	}

	if resp == nil || resp.Data.Content == nil {
		return nil, judge.ErrEmptyResponse
	}

	// sessions report no usage
	return &judge.Response{
		Text:   *resp.Data.Content,
		Tokens: tokens.EstimateExchange(prompt, *resp.Data.Content),
		Model:  i.model,
	}, nil
}
