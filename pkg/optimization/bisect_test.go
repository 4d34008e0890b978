package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchBisect(t *testing.T) {
	search := Search{Lower: 0, Upper: 100, Tolerance: 1e-6, MaxIterations: 200}

	tests := []struct {
		name      string
		f         func(float64) float64
		target    float64
		expected  float64
		converged bool
	}{
		{name: "Linear", f: func(x float64) float64 { return 2 * x }, target: 50, expected: 25, converged: true},
		{name: "Square root", f: math.Sqrt, target: 3, expected: 9, converged: true},
		{name: "Already above at lower bound", f: func(x float64) float64 { return x + 10 }, target: 5, expected: 0, converged: true},
		{name: "Unreachable", f: func(x float64) float64 { return x / 1000 }, target: 1, expected: 100, converged: false},
		{
			name: "NaN below threshold",
			f: func(x float64) float64 {
				if x < 40 {
					return math.NaN()
				}
				return x
			},
			target:    60,
			expected:  60,
			converged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := search.Bisect(tt.f, tt.target)
			assert.InDelta(t, tt.expected, result.Value, 1e-5)
			assert.Equal(t, tt.converged, result.Converged)
		})
	}
}

func TestSearchBisectIterationCap(t *testing.T) {
	search := Search{Lower: 0, Upper: 1024, Tolerance: 1e-12, MaxIterations: 5}

	result := search.Bisect(func(x float64) float64 { return x }, 300)

	assert.Equal(t, 5, result.Iterations)
	assert.False(t, result.Converged)
	assert.InDelta(t, 300, result.Value, 1024.0/32)
}
