package models

// BiasTag labels the outcome of one bias sub-report.
type BiasTag string

const (
	BiasNone            BiasTag = "NONE"
	BiasLeniency        BiasTag = "LENIENCY"
	BiasSeverity        BiasTag = "SEVERITY"
	BiasCentralTendency BiasTag = "CENTRAL_TENDENCY"
	BiasDimension       BiasTag = "DIMENSION_BIAS"
	BiasOutcomeAnomaly  BiasTag = "OUTCOME_ANOMALY"
	// BiasNotApplicable marks a sub-report that had no data to measure.
	BiasNotApplicable BiasTag = "N/A"
)

// Detected reports whether the tag flags an actual bias.
func (t BiasTag) Detected() bool {
	return t != BiasNone && t != BiasNotApplicable && t != ""
}

// BiasReport is built once per corpus and never mutated. Statistics that
// could not be computed are nil and serialize as null.
type BiasReport struct {
	Samples            int                `json:"samples" yaml:"samples"`
	Leniency           LeniencyReport     `json:"leniency" yaml:"leniency"`
	CentralTendency    CentralTendency    `json:"central_tendency" yaml:"central_tendency"`
	DimensionBias      DimensionBias      `json:"dimension_bias" yaml:"dimension_bias"`
	OutcomeCorrelation OutcomeCorrelation `json:"outcome_correlation" yaml:"outcome_correlation"`
}

// Detected lists every bias flagged by the report, in sub-report order.
func (r BiasReport) Detected() []BiasTag {
	var tags []BiasTag
	for _, t := range []BiasTag{
		r.Leniency.BiasDetected,
		r.CentralTendency.BiasDetected,
		r.DimensionBias.BiasDetected,
		r.OutcomeCorrelation.BiasDetected,
	} {
		if t.Detected() {
			tags = append(tags, t)
		}
	}
	return tags
}

// MeanInterval is a bootstrap confidence interval of a mean.
type MeanInterval struct {
	Lower           float64 `json:"lower" yaml:"lower"`
	Upper           float64 `json:"upper" yaml:"upper"`
	ConfidenceLevel float64 `json:"confidence_level" yaml:"confidence_level"`
}

type LeniencyReport struct {
	Count          int           `json:"count" yaml:"count"`
	Mean           *float64      `json:"mean" yaml:"mean"`
	Median         *float64      `json:"median" yaml:"median"`
	StdDev         *float64      `json:"stdev" yaml:"stdev"`
	Min            *float64      `json:"min" yaml:"min"`
	Max            *float64      `json:"max" yaml:"max"`
	MeanCI         *MeanInterval `json:"mean_ci,omitempty" yaml:"mean_ci,omitempty"`
	BiasDetected   BiasTag       `json:"bias_detected" yaml:"bias_detected"`
	Recommendation string        `json:"recommendation" yaml:"recommendation"`
}

type CentralTendency struct {
	Count int `json:"count" yaml:"count"`
	// Distribution counts rounded scores 0 through 5.
	Distribution   [6]int   `json:"distribution" yaml:"distribution"`
	MiddleRatio    *float64 `json:"middle_ratio" yaml:"middle_ratio"`
	ExtremeRatio   *float64 `json:"extreme_ratio" yaml:"extreme_ratio"`
	BiasDetected   BiasTag  `json:"bias_detected" yaml:"bias_detected"`
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
}

type DimensionStats struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stdev" yaml:"stdev"`
}

type DimensionExtreme struct {
	Dimension string  `json:"dimension" yaml:"dimension"`
	Mean      float64 `json:"mean" yaml:"mean"`
}

type DimensionBias struct {
	Dimensions     map[string]DimensionStats `json:"dimension_stats" yaml:"dimension_stats"`
	Highest        *DimensionExtreme         `json:"highest" yaml:"highest"`
	Lowest         *DimensionExtreme         `json:"lowest" yaml:"lowest"`
	Spread         *float64                  `json:"spread" yaml:"spread"`
	BiasDetected   BiasTag                   `json:"bias_detected" yaml:"bias_detected"`
	Recommendation string                    `json:"recommendation" yaml:"recommendation"`
}

type OutcomePartition struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
}

type OutcomeCorrelation struct {
	LowerLabel      string                      `json:"lower_label" yaml:"lower_label"`
	HigherLabel     string                      `json:"higher_label" yaml:"higher_label"`
	Partitions      map[string]OutcomePartition `json:"partitions" yaml:"partitions"`
	AnomalyDetected bool                        `json:"anomaly_detected" yaml:"anomaly_detected"`
	BiasDetected    BiasTag                     `json:"bias_detected" yaml:"bias_detected"`
	Recommendation  string                      `json:"recommendation" yaml:"recommendation"`
}
