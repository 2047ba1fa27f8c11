package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spboyer/panelscore/internal/models"
)

// RubricNotFoundError is reported when a rubric id has no definition.
type RubricNotFoundError struct {
	ID string
}

func (e *RubricNotFoundError) Error() string {
	return fmt.Sprintf("rubric %q not found", e.ID)
}

// Evaluator is one panel member: a named invoker plus prompt construction
// and response normalization.
type Evaluator struct {
	Name    string
	Invoker Invoker
	// Metrics is optional.
	Metrics *Metrics
}

// NewEvaluator returns an Evaluator for invoker, recorded under name.
func NewEvaluator(name string, invoker Invoker) *Evaluator {
	return &Evaluator{Name: name, Invoker: invoker}
}

// ErrorVerdict is the verdict recorded when a judge could not produce one.
func ErrorVerdict(judgeName string, err error) models.JudgeVerdict {
	return models.JudgeVerdict{
		Judge:     judgeName,
		Verdict:   models.VerdictError,
		Reasoning: err.Error(),
		Error:     err.Error(),
	}
}

// EvaluateID looks the rubric up in set before evaluating. An unknown id
// is an ERROR verdict.
func (e *Evaluator) EvaluateID(ctx context.Context, set *models.RubricSet, rubricID string, sample models.Sample) models.JudgeVerdict {
	var rubric *models.Rubric
	if set != nil {
		rubric = set.Get(rubricID)
	}
	if rubric == nil {
		v := ErrorVerdict(e.Name, &RubricNotFoundError{ID: rubricID})
		e.Metrics.observeVerdict(e.Name, v.Verdict)
		return v
	}
	return e.Evaluate(ctx, rubric, sample)
}

// Evaluate judges one sample against one rubric. It never returns an
// error: invocation failures, empty or unparseable responses, cancellation
// and panics all become an ERROR verdict.
func (e *Evaluator) Evaluate(ctx context.Context, rubric *models.Rubric, sample models.Sample) (verdict models.JudgeVerdict) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			verdict = ErrorVerdict(e.Name, fmt.Errorf("judge panicked: %v", r))
		}
		verdict.DurationMs = time.Since(start).Milliseconds()
		e.Metrics.observeVerdict(e.Name, verdict.Verdict)
		if verdict.IsError() {
			slog.DebugContext(ctx, "judge error", "judge", e.Name, "sample", sample.SampleID, "error", verdict.Error)
		}
	}()

	if rubric == nil {
		return ErrorVerdict(e.Name, errors.New("nil rubric"))
	}
	if e.Invoker == nil {
		return ErrorVerdict(e.Name, errors.New("no invoker configured"))
	}

	prompt, err := BuildPrompt(rubric, sample)
	if err != nil {
		return ErrorVerdict(e.Name, fmt.Errorf("building prompt: %w", err))
	}

	resp, err := e.Invoker.Invoke(ctx, prompt)
	if err != nil {
		return ErrorVerdict(e.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return ErrorVerdict(e.Name, err)
	}
	if resp == nil || (strings.TrimSpace(resp.Text) == "" && resp.Verdict == "") {
		return ErrorVerdict(e.Name, ErrEmptyResponse)
	}

	verdict, err = normalize(resp)
	if err != nil {
		return ErrorVerdict(e.Name, err)
	}
	verdict.Judge = e.Name
	verdict.Tokens = resp.Tokens
	return verdict
}

func normalize(resp *Response) (models.JudgeVerdict, error) {
	if resp.Verdict != "" {
		v := models.JudgeVerdict{
			Verdict:   models.ParseVerdict(resp.Verdict),
			Reasoning: resp.Reasoning,
		}
		// Structured providers may still carry scores in the text.
		if p, err := ParseResponse(resp.Text); err == nil {
			v.Score = p.Score
			v.DimensionScores = p.DimensionScores
		}
		return v, nil
	}

	p, err := ParseResponse(resp.Text)
	if err != nil {
		return models.JudgeVerdict{}, err
	}
	return models.JudgeVerdict{
		Verdict:         p.Verdict,
		Reasoning:       p.Reasoning,
		Score:           p.Score,
		DimensionScores: p.DimensionScores,
	}, nil
}
