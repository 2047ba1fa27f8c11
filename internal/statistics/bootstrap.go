package statistics

import (
	"math"
	"math/rand"
	"sort"
)

// ConfidenceInterval holds the result of a bootstrap confidence interval computation.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// Contains reports whether v lies inside the interval.
func (ci ConfidenceInterval) Contains(v float64) bool {
	return v >= ci.Lower && v <= ci.Upper
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// DefaultSeed makes audit reports reproducible run to run.
const DefaultSeed int64 = 42

// BootstrapOptions controls a bootstrap run.
type BootstrapOptions struct {
	Iterations int
	// Seed < 0 uses a non-deterministic source.
	Seed int64
}

// BootstrapMeanCI computes a percentile bootstrap confidence interval of the
// mean with a fixed seed. confidenceLevel should be in (0, 1), e.g. 0.95.
func BootstrapMeanCI(scores []float64, confidenceLevel float64) ConfidenceInterval {
	return Bootstrap(scores, confidenceLevel, BootstrapOptions{Seed: DefaultSeed})
}

// Bootstrap resamples scores with replacement and returns the percentile
// interval of the resampled means. Fewer than 2 data points yield a
// degenerate interval at the mean with zero resamples.
func Bootstrap(scores []float64, confidenceLevel float64, opts BootstrapOptions) ConfidenceInterval {
	n := len(scores)
	m := mean(scores)
	if n < 2 {
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
		}
	}

	iters := opts.Iterations
	if iters <= 0 {
		iters = DefaultBootstrapIterations
	}
	seed := opts.Seed
	if seed < 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	bootMeans := make([]float64, iters)
	sample := make([]float64, n)
	for i := range bootMeans {
		for j := range sample {
			sample[j] = scores[rng.Intn(n)]
		}
		bootMeans[i] = mean(sample)
	}
	sort.Float64s(bootMeans)

	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(iters)))
	if hiIdx >= iters {
		hiIdx = iters - 1
	}

	return ConfidenceInterval{
		Lower:           bootMeans[loIdx],
		Upper:           bootMeans[hiIdx],
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
