package metrics

import (
	"errors"
	"math"
)

// ErrNoData is returned when a confusion matrix has no scored records.
var ErrNoData = errors.New("no records processed")

// ConfusionCounts is a binary confusion matrix.
type ConfusionCounts struct {
	TP int `json:"tp"`
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// Outcome is one cell of the confusion matrix.
type Outcome int

const (
	TruePositive Outcome = iota
	TrueNegative
	FalsePositive
	FalseNegative
)

func (o Outcome) String() string {
	switch o {
	case TruePositive:
		return "tp"
	case TrueNegative:
		return "tn"
	case FalsePositive:
		return "fp"
	case FalseNegative:
		return "fn"
	}
	return "unknown"
}

// Classify maps expected/actual positivity onto a confusion cell.
func Classify(expected, actual bool) Outcome {
	switch {
	case expected && actual:
		return TruePositive
	case !expected && !actual:
		return TrueNegative
	case !expected && actual:
		return FalsePositive
	default:
		return FalseNegative
	}
}

// Record increments the cell for o.
func (c *ConfusionCounts) Record(o Outcome) {
	switch o {
	case TruePositive:
		c.TP++
	case TrueNegative:
		c.TN++
	case FalsePositive:
		c.FP++
	case FalseNegative:
		c.FN++
	}
}

// Add returns the cell-wise sum of c and o.
func (c ConfusionCounts) Add(o ConfusionCounts) ConfusionCounts {
	return ConfusionCounts{
		TP: c.TP + o.TP,
		TN: c.TN + o.TN,
		FP: c.FP + o.FP,
		FN: c.FN + o.FN,
	}
}

// Total is the number of scored records.
func (c ConfusionCounts) Total() int {
	return c.TP + c.TN + c.FP + c.FN
}

// ClassificationMetrics are derived from ConfusionCounts. Accuracy,
// precision, recall and F1 are fractions in [0,1]; MCC is in [-1,1].
type ClassificationMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	MCC       float64 `json:"mcc"`
}

// Compute derives metrics from c. An empty matrix returns ErrNoData rather
// than all-zero metrics.
func (c ConfusionCounts) Compute() (ClassificationMetrics, error) {
	total := c.Total()
	if total == 0 {
		return ClassificationMetrics{}, ErrNoData
	}
	precision := safeDivide(float64(c.TP), float64(c.TP+c.FP))
	recall := safeDivide(float64(c.TP), float64(c.TP+c.FN))
	return ClassificationMetrics{
		Accuracy:  safeDivide(float64(c.TP+c.TN), float64(total)),
		Precision: precision,
		Recall:    recall,
		F1:        F1(precision, recall),
		MCC:       c.MCC(),
	}, nil
}

// MCC computes the Matthews correlation coefficient. A zero denominator
// yields 0.
func (c ConfusionCounts) MCC() float64 {
	tp, tn, fp, fn := float64(c.TP), float64(c.TN), float64(c.FP), float64(c.FN)
	den := math.Sqrt((tp + fp) * (tp + fn) * (tn + fp) * (tn + fn))
	if den == 0 {
		return 0
	}
	return (tp*tn - fp*fn) / den
}

// F1 is the harmonic mean of precision and recall, 0 when both are 0.
func F1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

func safeDivide(num, den float64) float64 {
	if den == 0 {
		return 0.0
	}
	return num / den
}
