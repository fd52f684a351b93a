package util

import (
	"math"
	"slices"
)

func SafeDiv(n, d float64) float64 {
	const eps = 1e-12
	if d > eps || d < -eps {
		return n / d
	}
	return 0
}

// Clamp limits x to [lo, hi]. NaN maps to lo.
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Clamp01(x float64) float64 { return Clamp(x, 0, 1) }

// ClampAll returns a copy of values with every element clamped to [lo, hi].
func ClampAll(values []float64, lo, hi float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = Clamp(v, lo, hi)
	}
	return out
}

// UniqueSorted returns the distinct values in ascending order.
// NaNs are dropped.
func UniqueSorted(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// AllFinite reports whether no value is NaN or ±Inf.
func AllFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
