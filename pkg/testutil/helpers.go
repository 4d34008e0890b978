// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/project-finance/internal/forecast"
)

// FindComponent finds a component by name in a forecast.
// Returns a pointer to the component forecast if found, nil otherwise.
func FindComponent(f *forecast.Forecast, name string) *forecast.ComponentForecast {
	if f == nil {
		return nil
	}
	for i := range f.Components {
		if f.Components[i].Name == name {
			return &f.Components[i]
		}
	}
	return nil
}

// ApproxEqual reports whether a and b differ by at most tolerance. Two NaN
// values are equal.
func ApproxEqual(a, b, tolerance float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= tolerance
}
