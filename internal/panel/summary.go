package panel

import (
	"github.com/spboyer/panelscore/internal/metrics"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/utils"
)

// Summarize rolls verdicts up per rubric, in order of first appearance,
// and computes panel-wide agreement statistics. A verdict with no valid
// votes counts toward ErrorCount rather than FailCount, and a rubric with
// only such verdicts has a nil AgreementRate.
func Summarize(verdicts []models.AggregatedVerdict) ([]models.RubricSummary, models.InterJudgeStats) {
	var order []string
	byRubric := map[string]*models.RubricSummary{}
	rates := map[string][]float64{}

	var stats models.InterJudgeStats
	var allRates []float64

	for _, v := range verdicts {
		s, ok := byRubric[v.RubricID]
		if !ok {
			s = &models.RubricSummary{RubricID: v.RubricID, Module: v.Module}
			byRubric[v.RubricID] = s
			order = append(order, v.RubricID)
		}

		if v.Votes.Total() == 0 || v.AgreementRate == nil {
			s.ErrorCount++
			continue
		}
		if v.FinalVerdict == models.VerdictPass {
			s.PassCount++
		} else {
			s.FailCount++
		}
		rates[v.RubricID] = append(rates[v.RubricID], *v.AgreementRate)

		stats.TotalEvaluations++
		if v.Agreement {
			stats.UnanimousCount++
		}
		allRates = append(allRates, *v.AgreementRate)
	}

	summaries := make([]models.RubricSummary, 0, len(order))
	for _, id := range order {
		s := byRubric[id]
		if r := rates[id]; len(r) > 0 {
			s.AgreementRate = utils.Ptr(metrics.Round(metrics.Mean(r), 3))
		}
		summaries = append(summaries, *s)
	}

	if stats.TotalEvaluations > 0 {
		stats.UnanimousRate = utils.Ptr(metrics.Round(float64(stats.UnanimousCount)/float64(stats.TotalEvaluations), 3))
		stats.SplitDecisions = stats.TotalEvaluations - stats.UnanimousCount
		stats.AvgAgreementRate = utils.Ptr(metrics.Round(metrics.Mean(allRates), 3))
	}
	return summaries, stats
}
