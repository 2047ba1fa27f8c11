// Package judge turns a (rubric, sample) pair into a single judge's verdict.
//
// An [Invoker] is the raw model call. Providers live in sub-packages
// (claudejudge, openaijudge, copilotjudge) and can be wrapped with the
// retry, timeout, cache and metrics decorators in this package. The
// [Evaluator] builds the prompt, calls the invoker and normalizes whatever
// comes back into a [models.JudgeVerdict], never returning an error.
package judge

import (
	"context"
	"errors"
)

//go:generate go tool mockgen -destination mocks/mock_invoker.go -package mocks . Invoker

// ErrEmptyResponse is returned when a judge produced no text at all.
var ErrEmptyResponse = errors.New("judge returned an empty response")

// Response is what a provider returns for one prompt.
type Response struct {
	// Text is the raw model output.
	Text string `json:"text"`
	// Verdict and Reasoning are set by providers that already return a
	// structured decision. When empty, Text is parsed instead.
	Verdict   string `json:"verdict,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	Tokens    int    `json:"tokens,omitempty"`
	Model     string `json:"model,omitempty"`
}

// Invoker sends a fully-built prompt to a judge model.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (*Response, error)
}

// InvokerFunc adapts a function to [Invoker].
type InvokerFunc func(ctx context.Context, prompt string) (*Response, error)

// Invoke implements [Invoker].
func (f InvokerFunc) Invoke(ctx context.Context, prompt string) (*Response, error) {
	return f(ctx, prompt)
}
