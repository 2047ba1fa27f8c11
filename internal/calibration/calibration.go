// Package calibration measures how closely judge scores track human labels.
package calibration

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/spboyer/panelscore/internal/dataset"
	"github.com/spboyer/panelscore/internal/metrics"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/utils"
)

// ErrNoOverlap is returned when the two score sets share no sample ids.
var ErrNoOverlap = errors.New("no common samples between human and judge scores")

// Overall is the dimension name used for the overall score.
const Overall = "overall"

// Agreement status thresholds on the within-tolerance percentage.
const (
	GoodAgreement = 85.0
	FairAgreement = 70.0
)

// Scores are one rater's scores for one sample.
type Scores struct {
	Overall    float64
	Dimensions map[string]float64
	Notes      string
}

func (s Scores) get(dim string) (float64, bool) {
	if dim == Overall {
		return s.Overall, true
	}
	v, ok := s.Dimensions[dim]
	return v, ok
}

// DimensionAgreement compares one dimension across the shared samples.
type DimensionAgreement struct {
	Dimension string `json:"dimension" yaml:"dimension"`
	Samples   int    `json:"samples" yaml:"samples"`
	// Exact and WithinTolerance are percentages.
	Exact           float64 `json:"exact_agreement" yaml:"exact_agreement"`
	WithinTolerance float64 `json:"within_tolerance_agreement" yaml:"within_tolerance_agreement"`
	MAE             float64 `json:"mean_absolute_error" yaml:"mean_absolute_error"`
	// Pearson is nil when either side is constant.
	Pearson *float64 `json:"correlation" yaml:"correlation"`
	Status  string   `json:"status" yaml:"status"`
}

// SampleDiff is the overall-score difference for one sample.
type SampleDiff struct {
	SampleID     string  `json:"sample_id" yaml:"sample_id"`
	HumanOverall float64 `json:"human_overall" yaml:"human_overall"`
	JudgeOverall float64 `json:"llm_overall" yaml:"llm_overall"`
	Diff         float64 `json:"diff" yaml:"diff"`
	Notes        string  `json:"human_notes,omitempty" yaml:"human_notes,omitempty"`
}

// Report is the result of Compare.
type Report struct {
	Samples    int                  `json:"total_samples" yaml:"total_samples"`
	Tolerance  float64              `json:"tolerance" yaml:"tolerance"`
	Dimensions []DimensionAgreement `json:"dimensions" yaml:"dimensions"`
	Details    []SampleDiff         `json:"details" yaml:"details"`
}

// OverallStatus is the status of the overall dimension.
func (r *Report) OverallStatus() string {
	for _, d := range r.Dimensions {
		if d.Dimension == Overall {
			return d.Status
		}
	}
	return Status(0)
}

// Status buckets a within-tolerance percentage.
func Status(withinPct float64) string {
	switch {
	case withinPct >= GoodAgreement:
		return "good"
	case withinPct >= FairAgreement:
		return "fair"
	default:
		return "poor"
	}
}

// Compare measures agreement between human and judge scores over the
// sample ids they share. Overall is always compared; any other dimension
// is compared over the shared samples where both sides scored it.
// Dimensions are reported overall first, then by name.
func Compare(human, judge map[string]Scores, tolerance float64) (*Report, error) {
	var ids []string
	for id := range human {
		if _, ok := judge[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoOverlap
	}
	slices.Sort(ids)

	dimSet := map[string]bool{}
	for _, id := range ids {
		for d := range human[id].Dimensions {
			if _, ok := judge[id].Dimensions[d]; ok && d != Overall {
				dimSet[d] = true
			}
		}
	}
	dims := append([]string{Overall}, slices.Sorted(maps.Keys(dimSet))...)

	report := &Report{Samples: len(ids), Tolerance: tolerance}
	for _, d := range dims {
		var hs, js []float64
		for _, id := range ids {
			h, hok := human[id].get(d)
			j, jok := judge[id].get(d)
			if hok && jok {
				hs = append(hs, h)
				js = append(js, j)
			}
		}
		report.Dimensions = append(report.Dimensions, compareDimension(d, hs, js, tolerance))
	}

	for _, id := range ids {
		h, j := human[id], judge[id]
		report.Details = append(report.Details, SampleDiff{
			SampleID:     id,
			HumanOverall: h.Overall,
			JudgeOverall: j.Overall,
			Diff:         metrics.Round(j.Overall-h.Overall, 3),
			Notes:        h.Notes,
		})
	}
	return report, nil
}

func compareDimension(name string, hs, js []float64, tolerance float64) DimensionAgreement {
	exact, within := 0, 0
	for i := range hs {
		diff := math.Abs(hs[i] - js[i])
		if diff == 0 {
			exact++
		}
		if diff <= tolerance {
			within++
		}
	}
	n := float64(len(hs))
	d := DimensionAgreement{
		Dimension:       name,
		Samples:         len(hs),
		Exact:           metrics.Percent(float64(exact) / n),
		WithinTolerance: metrics.Percent(float64(within) / n),
		MAE:             metrics.Round(metrics.MeanAbsoluteError(hs, js), 2),
	}
	if r, ok := metrics.Pearson(hs, js); ok {
		d.Pearson = utils.Ptr(metrics.Round(r, 3))
	}
	d.Status = Status(d.WithinTolerance)
	return d
}

// ScoresFromVerdicts keys aggregated panel scores by sample id. Verdicts
// without a numeric overall are skipped; for repeated ids the last wins.
func ScoresFromVerdicts(verdicts []models.AggregatedVerdict) map[string]Scores {
	out := make(map[string]Scores, len(verdicts))
	for _, v := range verdicts {
		if v.Overall == nil {
			continue
		}
		out[v.SampleID] = Scores{Overall: *v.Overall, Dimensions: v.DimensionScores}
	}
	return out
}

// LoadHumanCSV reads human labels. The file needs sample_id and
// human_score columns; every other human_<dim> column is a dimension
// score and human_notes is carried through. Empty dimension cells are
// left out.
func LoadHumanCSV(path string) (map[string]Scores, error) {
	rows, err := dataset.LoadCSV(path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Scores, len(rows))
	for i, row := range rows {
		id := strings.TrimSpace(row["sample_id"])
		if id == "" {
			return nil, fmt.Errorf("%s row %d: missing sample_id", path, i+2)
		}
		overall, err := strconv.ParseFloat(strings.TrimSpace(row["human_score"]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: human_score: %w", path, i+2, err)
		}

		s := Scores{Overall: overall, Notes: row["human_notes"]}
		for col, cell := range row {
			dim, ok := strings.CutPrefix(col, "human_")
			if !ok || dim == "score" || dim == "notes" || strings.TrimSpace(cell) == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %s: %w", path, i+2, col, err)
			}
			if s.Dimensions == nil {
				s.Dimensions = map[string]float64{}
			}
			s.Dimensions[dim] = v
		}
		out[id] = s
	}
	return out, nil
}
