package analytics

import "math"

// Mean returns the arithmetic mean of xs, or 0 for an empty slice. The
// zero-on-empty convention keeps downstream aggregation free of error
// plumbing: an empty history is a normal state, not a failure.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs (divisor N, not
// N-1). These are descriptive statistics over the full observed window, not
// estimates from a sample.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// LinearTrendRatio fits an ordinary-least-squares line to xs against the
// index 0..N-1 and returns the slope divided by the series mean: a unitless
// growth-rate proxy. Returns 0 when N < 2 or the mean is 0, so flat or empty
// series never produce division artifacts.
func LinearTrendRatio(xs []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	mean := Mean(xs)
	if mean == 0 {
		return 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range xs {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (n*sumXY - sumX*sumY) / denom
	return slope / mean
}
