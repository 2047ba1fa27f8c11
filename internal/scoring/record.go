package scoring

import (
	"fmt"
	"sort"

	"github.com/spboyer/panelscore/internal/metrics"
	"github.com/spboyer/panelscore/internal/models"
)

// NewRecord flattens a scoring result into the serializable record format.
func NewRecord(cfg models.ClassifierConfig, info models.ExperimentInfo, res *Result) models.ScoreRecord {
	rec := models.ScoreRecord{
		RunID:          RunID(cfg.ID, info),
		Module:         cfg.ID,
		Kind:           cfg.Kind,
		ExperimentInfo: info,
		Skipped:        res.Skipped,
		Duplicates:     res.Duplicates,
		Note:           cfg.Note,
	}
	if cfg.Labels != (models.OutcomeLabels{}) {
		labels := cfg.Labels
		rec.Labels = &labels
	}
	if len(res.ChosenFields) > 0 {
		rec.ChosenFields = res.ChosenFields
	}
	fillCounts(&rec, res.Counts)
	if res.Matrix != nil {
		rec.Multiclass = multiclassDetail(res.Matrix)
	}
	return rec
}

func fillCounts(rec *models.ScoreRecord, c metrics.ConfusionCounts) {
	rec.TP, rec.TN, rec.FP, rec.FN = c.TP, c.TN, c.FP, c.FN
	rec.Total = c.Total()
	m, err := c.Compute()
	if err != nil {
		return
	}
	rec.Accuracy = metrics.Percent(m.Accuracy)
	rec.Precision = metrics.Percent(m.Precision)
	rec.Recall = metrics.Percent(m.Recall)
	rec.F1 = metrics.Percent(m.F1)
	rec.MCC = metrics.Round(m.MCC, 3)
}

func multiclassDetail(m *metrics.MulticlassMatrix) *models.MulticlassDetail {
	d := &models.MulticlassDetail{
		Correct:              m.Correct(),
		Accuracy:             metrics.Percent(m.Accuracy()),
		PerClass:             make(map[string]models.ClassMetrics),
		ConfusionMatrix:      m.Nested(),
		ExpectedDistribution: m.ExpectedDistribution(),
		ActualDistribution:   m.ActualDistribution(),
	}
	f1Sum := 0.0
	for _, c := range m.Classes() {
		s := m.ClassScore(c)
		cm := models.ClassMetrics{
			TP:        s.TP,
			FP:        s.FP,
			FN:        s.FN,
			Precision: metrics.Percent(s.Precision),
			Recall:    metrics.Percent(s.Recall),
			F1:        metrics.Percent(s.F1),
		}
		d.PerClass[c] = cm
		f1Sum += cm.F1
	}
	// Macro F1 is the mean of the rounded per-class F1 percentages.
	if n := len(m.Classes()); n > 0 {
		d.MacroF1 = metrics.Round(f1Sum/float64(n), 1)
	}
	return d
}

// CountsOf returns the confusion counts stored in a record.
func CountsOf(rec models.ScoreRecord) metrics.ConfusionCounts {
	return metrics.ConfusionCounts{TP: rec.TP, TN: rec.TN, FP: rec.FP, FN: rec.FN}
}

// MergeRecords re-aggregates records of one module by summing counts and
// recomputing metrics from the sums. Metrics are never averaged, so
// merging a single record reproduces it exactly.
func MergeRecords(module string, records []models.ScoreRecord) (models.ScoreRecord, error) {
	if len(records) == 0 {
		return models.ScoreRecord{}, fmt.Errorf("merge %s: %w", module, ErrNoData)
	}
	out := models.ScoreRecord{
		RunID:  module + "_merged",
		Module: module,
		Kind:   records[0].Kind,
		Labels: records[0].Labels,
		Note:   records[0].Note,
	}
	var counts metrics.ConfusionCounts
	var matrices []map[string]map[string]int
	for _, r := range records {
		if r.Module != module {
			return models.ScoreRecord{}, fmt.Errorf("merge %s: record %s belongs to module %s", module, r.RunID, r.Module)
		}
		counts = counts.Add(CountsOf(r))
		out.Skipped += r.Skipped
		out.Duplicates += r.Duplicates
		for k, v := range r.ChosenFields {
			if out.ChosenFields == nil {
				out.ChosenFields = map[string]int{}
			}
			out.ChosenFields[k] += v
		}
		if r.Multiclass != nil {
			matrices = append(matrices, r.Multiclass.ConfusionMatrix)
		}
	}
	if counts.Total() == 0 {
		return models.ScoreRecord{}, fmt.Errorf("merge %s: %w", module, ErrNoData)
	}
	if len(records) == 1 {
		out.RunID = records[0].RunID
		out.ExperimentInfo = records[0].ExperimentInfo
	}
	fillCounts(&out, counts)
	if len(matrices) == len(records) {
		out.Multiclass = multiclassDetail(mergeMatrices(matrices))
	}
	return out, nil
}

func mergeMatrices(ms []map[string]map[string]int) *metrics.MulticlassMatrix {
	classSet := map[string]struct{}{}
	for _, m := range ms {
		for e, row := range m {
			classSet[e] = struct{}{}
			for a := range row {
				classSet[a] = struct{}{}
			}
		}
	}
	classes := make([]string, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	merged := metrics.NewMulticlassMatrix(classes)
	for _, m := range ms {
		for e, row := range m {
			for a, n := range row {
				for range n {
					merged.Record(e, a)
				}
			}
		}
	}
	return merged
}
