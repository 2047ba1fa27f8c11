package scoring

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spboyer/panelscore/internal/dataset"
	"github.com/spboyer/panelscore/internal/metrics"
	"github.com/spboyer/panelscore/internal/models"
)

var (
	// ErrNoData is returned when every row was skipped or duplicated.
	ErrNoData = metrics.ErrNoData
	// ErrNotScorable is returned for modules that need a judge rather than
	// exact comparison.
	ErrNotScorable = errors.New("module output is not exact-comparable; use a judge")
)

// Result is the raw outcome of scoring one set of records.
type Result struct {
	Counts     metrics.ConfusionCounts
	Metrics    metrics.ClassificationMetrics
	Skipped    int
	Duplicates int
	// ChosenFields counts which candidate supplied each value, keyed
	// "expected.<field>" or "output.<field>".
	ChosenFields map[string]int
	ParseErrors  []*dataset.ParseError
	// Matrix is set for multiclass modules.
	Matrix *metrics.MulticlassMatrix
}

// Scorer scores records for one configured module.
type Scorer struct {
	cfg     models.ClassifierConfig
	expRule PositivityRule
	outRule PositivityRule
}

// New validates cfg and returns a Scorer for it.
func New(cfg models.ClassifierConfig) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Kind == models.KindFreeText {
		return nil, fmt.Errorf("module %q: %w", cfg.ID, ErrNotScorable)
	}
	return &Scorer{
		cfg:     cfg,
		expRule: PositivityRule{Value: cfg.PositiveExpected, NullIsNegative: cfg.NullIsNegative},
		outRule: PositivityRule{Value: cfg.PositiveOutput},
	}, nil
}

// Config returns the module configuration the scorer was built with.
func (s *Scorer) Config() models.ClassifierConfig {
	return s.cfg
}

// Score compares expected and output values across records. Duplicate
// inputs are dropped before parsing; unparseable rows are skipped. An
// empty result returns ErrNoData.
func (s *Scorer) Score(records []dataset.Record) (*Result, error) {
	res := &Result{ChosenFields: map[string]int{}}
	if s.cfg.Kind == models.KindMulticlass {
		res.Matrix = metrics.NewMulticlassMatrix(s.cfg.Classes)
	}

	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.Input]; dup {
			res.Duplicates++
			continue
		}
		seen[rec.Input] = struct{}{}

		if err := s.scoreRecord(rec, res); err != nil {
			res.Skipped++
			var pe *dataset.ParseError
			if !errors.As(err, &pe) {
				pe = &dataset.ParseError{Line: rec.Line, Reason: err.Error()}
			}
			res.ParseErrors = append(res.ParseErrors, pe)
			slog.Debug("skipping row", "module", s.cfg.ID, "line", pe.Line, "reason", pe.Reason)
		}
	}

	if res.Matrix != nil {
		res.Counts = res.Matrix.OneVsRest(s.positiveClass())
	}

	m, err := res.Counts.Compute()
	if err != nil {
		return res, fmt.Errorf("%w (skipped: %d, duplicates: %d)", err, res.Skipped, res.Duplicates)
	}
	res.Metrics = m
	return res, nil
}

// positiveClass is the class used for the binary view of a multiclass
// matrix: the configured positive value, else the first class.
func (s *Scorer) positiveClass() string {
	if p, ok := s.cfg.PositiveExpected.(string); ok && p != "" {
		return p
	}
	return s.cfg.Classes[0]
}

func (s *Scorer) scoreRecord(rec dataset.Record, res *Result) error {
	if rec.Malformed != "" {
		return &dataset.ParseError{Line: rec.Line, Reason: rec.Malformed}
	}
	if !rec.HasExpected || !rec.HasOutput {
		return &dataset.ParseError{Line: rec.Line, Reason: "missing expected or output column"}
	}
	expObj, err := dataset.DecodeObject(rec.Line, dataset.ColumnExpected, rec.Expected)
	if err != nil {
		return err
	}
	outObj, err := dataset.DecodeObject(rec.Line, dataset.ColumnOutput, rec.Output)
	if err != nil {
		return err
	}

	exp := Extract(expObj, s.cfg.ExpectedCandidates())
	act := Extract(outObj, s.cfg.OutputCandidates())

	switch s.cfg.Kind {
	case models.KindBinary:
		if s.cfg.SkipNoneExpected && exp.Value == nil && !s.cfg.NullIsNegative {
			return &dataset.ParseError{Line: rec.Line, Reason: "expected value is null"}
		}
		res.Counts.Record(comparePair(exp.Value, act.Value, s.expRule, s.outRule))
	case models.KindMulticlass:
		e, eok := classLabel(exp.Value)
		a, aok := classLabel(act.Value)
		if !eok || !aok || !res.Matrix.Record(e, a) {
			return &dataset.ParseError{Line: rec.Line, Reason: fmt.Sprintf("labels %v/%v are not among configured classes", exp.Value, act.Value)}
		}
	case models.KindListExtraction:
		c, err := compareLists(exp.Value, act.Value)
		if err != nil {
			return &dataset.ParseError{Line: rec.Line, Reason: err.Error()}
		}
		res.Counts = res.Counts.Add(c)
	}

	if exp.Field != "" {
		res.ChosenFields["expected."+exp.Field]++
	}
	if act.Field != "" {
		res.ChosenFields["output."+act.Field]++
	}
	return nil
}
