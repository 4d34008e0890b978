package optimization

import "math"

// Search describes a monotone one-dimensional root search.
type Search struct {
	Lower         float64
	Upper         float64
	Tolerance     float64
	MaxIterations int
}

// SearchResult is the outcome of a Search.
type SearchResult struct {
	Value      float64
	Iterations int
	Converged  bool
}

// Bisect finds x in [Lower, Upper] where f(x) crosses target, assuming f is
// non-decreasing in x. f may return NaN where it has no value; NaN counts as
// below target. When target is not reached even at Upper the search reports
// Upper and Converged is false. Converged is true once the bracket is
// narrower than Tolerance.
func (s Search) Bisect(f func(x float64) float64, target float64) SearchResult {
	below := func(x float64) bool {
		v := f(x)
		return math.IsNaN(v) || v < target
	}

	low, high := s.Lower, s.Upper
	if !below(low) {
		return SearchResult{Value: low, Converged: true}
	}
	if below(high) {
		return SearchResult{Value: high, Converged: false}
	}

	iterations := 0
	for iterations < s.MaxIterations && high-low > s.Tolerance {
		iterations++
		mid := (low + high) / 2
		if below(mid) {
			low = mid
		} else {
			high = mid
		}
	}

	return SearchResult{
		Value:      high,
		Iterations: iterations,
		Converged:  high-low <= s.Tolerance,
	}
}
