// Package providers builds judge invokers from panel member configuration.
package providers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"
	"github.com/spboyer/panelscore/internal/cache"
	"github.com/spboyer/panelscore/internal/judge"
	"github.com/spboyer/panelscore/internal/judge/claudejudge"
	"github.com/spboyer/panelscore/internal/judge/copilotjudge"
	"github.com/spboyer/panelscore/internal/judge/openaijudge"
	"github.com/spboyer/panelscore/internal/models"
)

// Provider names accepted in panel configuration.
const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Copilot   = "copilot"
	Mock      = "mock"
)

// ErrUnsupportedProvider is returned for providers with no adapter.
var ErrUnsupportedProvider = errors.New("unsupported judge provider")

// Config holds what every invoker shares.
type Config struct {
	// Mock replaces every provider with the offline mock judge.
	Mock bool

	Timeout time.Duration
	Retry   judge.RetryConfig
	Cache   *cache.Cache
	Metrics *judge.Metrics

	// API keys and base URLs. Empty values fall back to the SDKs' own
	// environment handling.
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	AnthropicBaseURL string

	// CopilotCwd is the working directory for Copilot judge sessions.
	CopilotCwd string
}

// NewInvoker returns the decorated invoker for one member. name is the
// member's display name, used for metrics and cache namespacing.
func NewInvoker(member models.PanelMember, name string, cfg Config) (judge.Invoker, error) {
	provider := strings.ToLower(strings.TrimSpace(member.Provider))
	if member.Model == "" {
		return nil, fmt.Errorf("judge %s: model is required", name)
	}

	var base judge.Invoker
	switch {
	case cfg.Mock || provider == Mock:
		base = judge.NewMockInvoker(member.Model)
	case provider == OpenAI:
		var opts []openaioption.RequestOption
		if cfg.OpenAIAPIKey != "" {
			opts = append(opts, openaioption.WithAPIKey(cfg.OpenAIAPIKey))
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openaioption.WithBaseURL(cfg.OpenAIBaseURL))
		}
		base = openaijudge.New(member.Model, opts...)
	case provider == Anthropic:
		var opts []anthropicoption.RequestOption
		if cfg.AnthropicAPIKey != "" {
			opts = append(opts, anthropicoption.WithAPIKey(cfg.AnthropicAPIKey))
		}
		if cfg.AnthropicBaseURL != "" {
			opts = append(opts, anthropicoption.WithBaseURL(cfg.AnthropicBaseURL))
		}
		base = claudejudge.New(member.Model, opts...)
	case provider == Copilot:
		base = copilotjudge.New(member.Model, &copilotjudge.Options{Cwd: cfg.CopilotCwd})
	default:
		return nil, fmt.Errorf("judge %s: %w %q", name, ErrUnsupportedProvider, member.Provider)
	}

	inv := judge.WithTimeout(base, cfg.Timeout)
	inv = judge.Instrument(inv, name, cfg.Metrics)
	inv = judge.WithRetry(inv, name, cfg.Retry)
	if !cfg.Mock {
		inv = judge.WithCache(inv, cfg.Cache, name)
	}
	return inv, nil
}

// NewEvaluators expands the panel into one evaluator per judge run. A
// member with repeat N contributes N evaluators named "<name>#1".."#N".
// Members whose provider cannot be built are returned in the joined error
// and skipped. The returned members are the ones that made it into the
// panel, in their original order.
func NewEvaluators(members []models.PanelMember, cfg Config) ([]*judge.Evaluator, []models.PanelMember, error) {
	var evaluators []*judge.Evaluator
	var active []models.PanelMember
	var errs []error
	for _, m := range members {
		repeat := max(m.Repeat, 1)
		built := make([]*judge.Evaluator, 0, repeat)
		for r := 1; r <= repeat; r++ {
			name := m.DisplayName()
			if repeat > 1 {
				name = fmt.Sprintf("%s#%d", name, r)
			}
			inv, err := NewInvoker(m, name, cfg)
			if err != nil {
				errs = append(errs, err)
				built = nil
				break
			}
			e := judge.NewEvaluator(name, inv)
			e.Metrics = cfg.Metrics
			built = append(built, e)
		}
		if len(built) > 0 {
			evaluators = append(evaluators, built...)
			active = append(active, m)
		}
	}
	return evaluators, active, errors.Join(errs...)
}
