package panel

import (
	"maps"
	"slices"

	"github.com/spboyer/panelscore/internal/metrics"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/utils"
)

// Confidence thresholds on the population variance of member scores.
const (
	highConfidenceVariance   = 0.5
	mediumConfidenceVariance = 1.0
)

// Vote combines member verdicts by simple majority. ERROR verdicts are kept
// but do not vote. PASS needs strictly more pass than fail votes, so a tie
// (including no valid votes at all) is a FAIL.
func Vote(verdicts []models.JudgeVerdict) models.AggregatedVerdict {
	agg := models.AggregatedVerdict{
		FinalVerdict:   models.VerdictFail,
		MemberVerdicts: verdicts,
		Confidence:     models.ConfidenceNone,
	}
	if agg.MemberVerdicts == nil {
		agg.MemberVerdicts = []models.JudgeVerdict{}
	}

	for _, v := range verdicts {
		switch {
		case v.IsError():
			agg.Errors++
		case v.Verdict == models.VerdictPass:
			agg.Votes.Pass++
		default:
			agg.Votes.Fail++
		}
	}

	if agg.Votes.Pass > agg.Votes.Fail {
		agg.FinalVerdict = models.VerdictPass
	}

	total := agg.Votes.Total()
	if total > 0 {
		agg.Agreement = agg.Votes.Pass == total || agg.Votes.Fail == total
		agg.AgreementRate = utils.Ptr(float64(max(agg.Votes.Pass, agg.Votes.Fail)) / float64(total))
	}
	agg.NeedsReview = !agg.Agreement
	agg.Reasoning = majorityReasoning(verdicts, agg.FinalVerdict, total)

	scoreAggregate(&agg, verdicts)
	return agg
}

func majorityReasoning(verdicts []models.JudgeVerdict, final models.Verdict, valid int) string {
	switch {
	case len(verdicts) == 0:
		return "No results to aggregate"
	case valid == 0:
		return "All judges failed"
	}
	for _, v := range verdicts {
		if v.Verdict == final && v.Reasoning != "" {
			return v.Reasoning
		}
	}
	return "No reasoning provided"
}

func scoreAggregate(agg *models.AggregatedVerdict, verdicts []models.JudgeVerdict) {
	var scores []float64
	dims := map[string][]float64{}
	for _, v := range verdicts {
		if v.IsError() {
			continue
		}
		if v.Score != nil {
			scores = append(scores, *v.Score)
		}
		for name, s := range v.DimensionScores {
			dims[name] = append(dims[name], s)
		}
	}

	if len(scores) > 0 {
		overall := metrics.Mean(scores)
		median := metrics.Median(scores)
		agg.Overall = &overall
		agg.Median = &median
		agg.Confidence = confidence(metrics.Variance(scores))
	}

	if len(dims) > 0 {
		agg.DimensionScores = make(map[string]float64, len(dims))
		for _, name := range slices.Sorted(maps.Keys(dims)) {
			agg.DimensionScores[name] = metrics.Mean(dims[name])
		}
	}
}

func confidence(variance float64) models.Confidence {
	switch {
	case variance <= highConfidenceVariance:
		return models.ConfidenceHigh
	case variance <= mediumConfidenceVariance:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
