package metrics

import (
	"math"
	"slices"
)

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance computes the population variance of a float64 slice.
// Returns 0 for empty input.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sumSquaredDeviations(values) / float64(len(values))
}

// SampleVariance computes the variance with Bessel's correction.
// Returns 0 when fewer than 2 values are available.
func SampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return sumSquaredDeviations(values) / float64(len(values)-1)
}

// StdDev computes the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// SampleStdDev computes the sample standard deviation.
func SampleStdDev(values []float64) float64 {
	return math.Sqrt(SampleVariance(values))
}

func sumSquaredDeviations(values []float64) float64 {
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return sumSq
}

// Median returns the middle value, averaging the two central values for
// even-length input. Returns 0 for empty input. The input is not modified.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Pearson returns the Pearson correlation coefficient of two equal-length
// series. ok is false when the series differ in length, are empty, or
// either one is constant.
func Pearson(xs, ys []float64) (r float64, ok bool) {
	if len(xs) != len(ys) || len(xs) == 0 {
		return 0, false
	}
	mx, my := Mean(xs), Mean(ys)
	var num, dx, dy float64
	for i := range xs {
		a, b := xs[i]-mx, ys[i]-my
		num += a * b
		dx += a * a
		dy += b * b
	}
	if dx == 0 || dy == 0 {
		return 0, false
	}
	return num / math.Sqrt(dx*dy), true
}

// MeanAbsoluteError averages |a-b| over paired values.
// Returns 0 for empty or mismatched input.
func MeanAbsoluteError(as, bs []float64) float64 {
	if len(as) != len(bs) || len(as) == 0 {
		return 0
	}
	sum := 0.0
	for i := range as {
		sum += math.Abs(as[i] - bs[i])
	}
	return sum / float64(len(as))
}

// Round rounds v to the given number of decimal places. Exact halves go
// to the even neighbour, so Round(3.125, 2) is 3.12.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}

// Percent converts a fraction to a percentage rounded to one decimal.
func Percent(fraction float64) float64 {
	return Round(fraction*100, 1)
}
