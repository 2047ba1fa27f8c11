// Package panel runs a Panel of LLM evaluators (PoLL) over samples and
// reduces the member verdicts to one decision per (sample, rubric) pair.
package panel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/spboyer/panelscore/internal/judge"
	"github.com/spboyer/panelscore/internal/models"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

const (
	EventBatchStart    EventType = "batch_start"
	EventPairComplete  EventType = "pair_complete"
	EventBatchComplete EventType = "batch_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	SampleID   string
	RubricID   string
	PairNum    int
	TotalPairs int
	Verdict    models.Verdict
	DurationMs int64
}

// Aggregator fans one prompt out to every panel member.
type Aggregator struct {
	Members []*judge.Evaluator
	// Workers bounds concurrent judge calls for a single pair and
	// concurrent pairs in a batch.
	Workers int

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWorkers sets the concurrency limit. Values below 1 use the default.
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		a.Workers = n
	}
}

// New returns an Aggregator over members.
func New(members []*judge.Evaluator, opts ...Option) *Aggregator {
	a := &Aggregator{Members: members, Workers: defaultWorkers}
	for _, opt := range opts {
		opt(a)
	}
	if a.Workers < 1 {
		a.Workers = defaultWorkers
	}
	return a
}

// OnProgress registers a progress listener
func (a *Aggregator) OnProgress(listener ProgressListener) {
	a.progressMu.Lock()
	defer a.progressMu.Unlock()
	a.listeners = append(a.listeners, listener)
}

func (a *Aggregator) notifyProgress(event ProgressEvent) {
	a.progressMu.Lock()
	listeners := make([]ProgressListener, len(a.listeners))
	copy(listeners, a.listeners)
	a.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Aggregate asks every member to judge sample against rubric and combines
// the answers with Vote. If ctx is done before every member has answered
// the partial verdict is discarded and ctx.Err() is returned.
func (a *Aggregator) Aggregate(ctx context.Context, rubric *models.Rubric, sample models.Sample) (models.AggregatedVerdict, error) {
	if len(a.Members) == 0 {
		return models.AggregatedVerdict{}, errors.New("panel has no members")
	}

	verdicts := make([]models.JudgeVerdict, len(a.Members))
	var g errgroup.Group
	g.SetLimit(a.Workers)
	for i, member := range a.Members {
		g.Go(func() error {
			verdicts[i] = member.Evaluate(ctx, rubric, sample)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return models.AggregatedVerdict{}, err
	}

	agg := Vote(verdicts)
	agg.SampleID = sample.SampleID
	agg.OutcomeLabel = sample.OutcomeLabel
	if rubric != nil {
		agg.RubricID = rubric.ID
		agg.Module = rubric.Module
	}
	return agg, nil
}

// AggregateID resolves rubricID in set first. An unknown id still goes
// through the panel so each member records the lookup failure.
func (a *Aggregator) AggregateID(ctx context.Context, set *models.RubricSet, rubricID string, sample models.Sample) (models.AggregatedVerdict, error) {
	var rubric *models.Rubric
	if set != nil {
		rubric = set.Get(rubricID)
	}
	if rubric != nil {
		return a.Aggregate(ctx, rubric, sample)
	}

	verdicts := make([]models.JudgeVerdict, len(a.Members))
	for i, member := range a.Members {
		verdicts[i] = member.EvaluateID(ctx, set, rubricID, sample)
	}
	agg := Vote(verdicts)
	agg.SampleID = sample.SampleID
	agg.RubricID = rubricID
	agg.OutcomeLabel = sample.OutcomeLabel
	return agg, nil
}

// AggregateBatch judges every (sample, rubric) pair. Results come back in
// sample-major order regardless of completion order.
func (a *Aggregator) AggregateBatch(ctx context.Context, set *models.RubricSet, rubricIDs []string, samples []models.Sample) ([]models.AggregatedVerdict, error) {
	total := len(samples) * len(rubricIDs)
	results := make([]models.AggregatedVerdict, total)

	a.notifyProgress(ProgressEvent{EventType: EventBatchStart, TotalPairs: total})
	start := time.Now()

	var doneMu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Workers)
	for si, sample := range samples {
		for ri, rubricID := range rubricIDs {
			idx := si*len(rubricIDs) + ri
			g.Go(func() error {
				pairStart := time.Now()
				agg, err := a.AggregateID(gctx, set, rubricID, sample)
				if err != nil {
					return err
				}
				results[idx] = agg

				doneMu.Lock()
				done++
				n := done
				doneMu.Unlock()

				a.notifyProgress(ProgressEvent{
					EventType:  EventPairComplete,
					SampleID:   sample.SampleID,
					RubricID:   rubricID,
					PairNum:    n,
					TotalPairs: total,
					Verdict:    agg.FinalVerdict,
					DurationMs: time.Since(pairStart).Milliseconds(),
				})
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "panel batch complete", "pairs", total, "members", len(a.Members), "duration", time.Since(start))
	a.notifyProgress(ProgressEvent{
		EventType:  EventBatchComplete,
		PairNum:    total,
		TotalPairs: total,
		DurationMs: time.Since(start).Milliseconds(),
	})
	return results, nil
}
