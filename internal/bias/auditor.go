// Package bias audits a corpus of judged samples for systematic scoring
// patterns: leniency or severity, central tendency, skew between scoring
// dimensions, and scores that run against the expected outcome direction.
package bias

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/spboyer/panelscore/internal/metrics"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/statistics"
	"github.com/spboyer/panelscore/internal/utils"
)

// Thresholds on a 0-5 scale.
const (
	LeniencyMean        = 3.5
	SeverityMean        = 2.5
	CentralMiddleRatio  = 0.8
	DimensionSpreadBias = 1.5

	ciLevel = 0.95
)

// OutcomeDirection names the outcome labels expected to go with lower and
// higher scores. Samples without a label are counted under Fallback.
type OutcomeDirection struct {
	Lower    string `yaml:"lower" json:"lower"`
	Higher   string `yaml:"higher" json:"higher"`
	Fallback string `yaml:"fallback" json:"fallback"`
}

// DefaultDirection is the adversarial-debate setup: a critic win should
// score lower than a defender win.
func DefaultDirection() OutcomeDirection {
	return OutcomeDirection{Lower: "critic", Higher: "defender", Fallback: "tie"}
}

// Auditor builds BiasReports. Empty Direction fields fall back to
// DefaultDirection.
type Auditor struct {
	Direction OutcomeDirection
}

// NewAuditor returns an Auditor, filling empty direction fields from
// DefaultDirection.
func NewAuditor(dir OutcomeDirection) *Auditor {
	def := DefaultDirection()
	dir.Lower = cmp.Or(dir.Lower, def.Lower)
	dir.Higher = cmp.Or(dir.Higher, def.Higher)
	dir.Fallback = cmp.Or(dir.Fallback, def.Fallback)
	return &Auditor{Direction: dir}
}

// Audit computes every sub-report over corpus. It does not modify corpus
// and returns the same report for the same input.
func (a *Auditor) Audit(corpus []models.ScoredSample) models.BiasReport {
	dir := NewAuditor(a.Direction).Direction

	scores := overallScores(corpus)
	return models.BiasReport{
		Samples:            len(corpus),
		Leniency:           leniency(scores),
		CentralTendency:    centralTendency(scores),
		DimensionBias:      dimensionBias(corpus),
		OutcomeCorrelation: outcomeCorrelation(corpus, dir),
	}
}

// Summary is a one-line verdict over the report.
func Summary(r models.BiasReport) string {
	tags := r.Detected()
	if len(tags) == 0 {
		return "NO SIGNIFICANT BIASES DETECTED"
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = string(t)
	}
	return "BIASES DETECTED: " + strings.Join(names, ", ")
}

// overallScores drops non-positive scores, which mean "not scored".
func overallScores(corpus []models.ScoredSample) []float64 {
	var scores []float64
	for _, s := range corpus {
		if s.Overall > 0 {
			scores = append(scores, s.Overall)
		}
	}
	return scores
}

func leniency(scores []float64) models.LeniencyReport {
	r := models.LeniencyReport{Count: len(scores), BiasDetected: models.BiasNotApplicable}
	if len(scores) == 0 {
		r.Recommendation = "No scores found"
		return r
	}

	mean := metrics.Mean(scores)
	r.Mean = round2(mean)
	r.Median = round2(metrics.Median(scores))
	r.StdDev = round2(metrics.SampleStdDev(scores))
	r.Min = utils.Ptr(slices.Min(scores))
	r.Max = utils.Ptr(slices.Max(scores))

	ci := statistics.BootstrapMeanCI(scores, ciLevel)
	r.MeanCI = &models.MeanInterval{
		Lower:           metrics.Round(ci.Lower, 3),
		Upper:           metrics.Round(ci.Upper, 3),
		ConfidenceLevel: ci.ConfidenceLevel,
	}

	switch {
	case mean > LeniencyMean:
		r.BiasDetected = models.BiasLeniency
		r.Recommendation = "Scores run high; tighten pass definitions or add failing examples"
	case mean < SeverityMean:
		r.BiasDetected = models.BiasSeverity
		r.Recommendation = "Scores run low; check whether fail definitions are too broad"
	default:
		r.BiasDetected = models.BiasNone
		r.Recommendation = "Scores appear balanced"
	}
	return r
}

func centralTendency(scores []float64) models.CentralTendency {
	r := models.CentralTendency{Count: len(scores), BiasDetected: models.BiasNotApplicable}
	if len(scores) == 0 {
		r.Recommendation = "No scores found"
		return r
	}

	middle := 0
	for _, s := range scores {
		bucket := int(min(max(math.RoundToEven(s), 0), 5))
		r.Distribution[bucket]++
		if bucket >= 2 && bucket <= 4 {
			middle++
		}
	}
	ratio := float64(middle) / float64(len(scores))
	r.MiddleRatio = utils.Ptr(metrics.Round(ratio, 3))
	r.ExtremeRatio = utils.Ptr(metrics.Round(1-ratio, 3))

	if ratio > CentralMiddleRatio {
		r.BiasDetected = models.BiasCentralTendency
		r.Recommendation = "Judge may be avoiding extreme scores"
	} else {
		r.BiasDetected = models.BiasNone
		r.Recommendation = "Score distribution appears healthy"
	}
	return r
}

func dimensionBias(corpus []models.ScoredSample) models.DimensionBias {
	byDim := map[string][]float64{}
	for _, s := range corpus {
		for name, v := range s.DimensionScores {
			byDim[name] = append(byDim[name], v)
		}
	}

	r := models.DimensionBias{BiasDetected: models.BiasNotApplicable}
	if len(byDim) == 0 {
		r.Recommendation = "No dimension scores found"
		return r
	}

	r.Dimensions = make(map[string]models.DimensionStats, len(byDim))
	var highest, lowest *models.DimensionExtreme
	for _, name := range slices.Sorted(maps.Keys(byDim)) {
		vals := byDim[name]
		mean := metrics.Mean(vals)
		r.Dimensions[name] = models.DimensionStats{
			Count:  len(vals),
			Mean:   metrics.Round(mean, 2),
			StdDev: metrics.Round(metrics.SampleStdDev(vals), 2),
		}
		// Names are visited in order, so strict comparisons keep the
		// alphabetically first dimension on ties.
		if highest == nil || mean > highest.Mean {
			highest = &models.DimensionExtreme{Dimension: name, Mean: mean}
		}
		if lowest == nil || mean < lowest.Mean {
			lowest = &models.DimensionExtreme{Dimension: name, Mean: mean}
		}
	}

	spread := highest.Mean - lowest.Mean
	r.Spread = round2(spread)
	highest.Mean = metrics.Round(highest.Mean, 2)
	lowest.Mean = metrics.Round(lowest.Mean, 2)
	r.Highest, r.Lowest = highest, lowest

	if spread > DimensionSpreadBias {
		r.BiasDetected = models.BiasDimension
		r.Recommendation = fmt.Sprintf("%q may be scored too harshly", lowest.Dimension)
	} else {
		r.BiasDetected = models.BiasNone
		r.Recommendation = "Dimensions appear balanced"
	}
	return r
}

func outcomeCorrelation(corpus []models.ScoredSample, dir OutcomeDirection) models.OutcomeCorrelation {
	r := models.OutcomeCorrelation{
		LowerLabel:   dir.Lower,
		HigherLabel:  dir.Higher,
		BiasDetected: models.BiasNotApplicable,
	}

	byLabel := map[string][]float64{}
	for _, s := range corpus {
		if s.Overall <= 0 {
			continue
		}
		label := cmp.Or(s.OutcomeLabel, dir.Fallback)
		byLabel[label] = append(byLabel[label], s.Overall)
	}
	if len(byLabel) == 0 {
		r.Recommendation = "No scored outcomes found"
		return r
	}

	r.Partitions = make(map[string]models.OutcomePartition, len(byLabel))
	for label, vals := range byLabel {
		r.Partitions[label] = models.OutcomePartition{Count: len(vals), Mean: metrics.Round(metrics.Mean(vals), 2)}
	}

	lower, higher := byLabel[dir.Lower], byLabel[dir.Higher]
	r.AnomalyDetected = len(lower) > 0 && len(higher) > 0 && metrics.Mean(lower) > metrics.Mean(higher)
	if r.AnomalyDetected {
		r.BiasDetected = models.BiasOutcomeAnomaly
		r.Recommendation = fmt.Sprintf("ANOMALY: %s outcomes score higher than %s outcomes", dir.Lower, dir.Higher)
	} else {
		r.BiasDetected = models.BiasNone
		r.Recommendation = "Outcomes correlate correctly with scores"
	}
	return r
}

func round2(v float64) *float64 {
	return utils.Ptr(metrics.Round(v, 2))
}
