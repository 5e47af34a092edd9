package grid

import "math"

// GuardedDiv divides num by den, returning onZero when the denominator
// is zero instead of raising ±Inf or NaN into the pipeline. The metric
// engine uses it wherever a ratio over counts can degenerate.
func GuardedDiv(num, den, onZero float64) float64 {
	if den == 0 {
		return onZero
	}
	return num / den
}

// NaNSum returns the sum of xs ignoring NaN entries. An all-NaN (or
// empty) slice sums to zero; callers that must distinguish "all missing"
// from "zero" pair this with AllNaN.
func NaNSum(xs []float64) float64 {
	var s float64
	for _, v := range xs {
		if !math.IsNaN(v) {
			s += v
		}
	}
	return s
}

// AllNaN reports whether every entry of xs is NaN. An empty slice is
// vacuously all-NaN.
func AllNaN(xs []float64) bool {
	for _, v := range xs {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Reverse returns a reversed copy of xs.
func Reverse(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[len(xs)-1-i] = v
	}
	return out
}

// Fill sets every element of xs to v.
func Fill(xs []float64, v float64) {
	for i := range xs {
		xs[i] = v
	}
}
