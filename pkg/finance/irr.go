// Package finance provides the investment calculations behind a component
// projection: discounting, IRR root finding, cash-flow projection and
// portfolio aggregation.
package finance

import (
	"math"

	"github.com/iwvelando/project-finance/pkg/constants"
)

// NotConvertible is returned in place of a metric that has no solution, such
// as an IRR for a series without a sign change or a payback that never
// occurs. It is NaN, so always test for it with IsNotConvertible.
var NotConvertible = math.NaN()

// IsNotConvertible reports whether v is the NotConvertible sentinel.
func IsNotConvertible(v float64) bool {
	return math.IsNaN(v)
}

// IRRSolver finds the internal rate of return of a yearly cash-flow series by
// bisection over a fixed bracket.
type IRRSolver struct {
	Lower         float64
	Upper         float64
	MaxIterations int
	Tolerance     float64
}

// DefaultIRRSolver returns a solver searching [-0.95, 5] for up to 200 steps.
func DefaultIRRSolver() IRRSolver {
	return IRRSolver{
		Lower:         constants.IRRLowerBound,
		Upper:         constants.IRRUpperBound,
		MaxIterations: constants.IRRMaxIterations,
		Tolerance:     constants.IRRTolerance,
	}
}

// IRR solves cashFlows with the default solver.
func IRR(cashFlows []float64) float64 {
	return DefaultIRRSolver().Solve(cashFlows)
}

// Solve returns the rate at which the NPV of cashFlows is zero, where
// cashFlows[0] is the flow at year 0. NotConvertible is returned when the NPV
// has the same sign at both ends of the bracket.
func (s IRRSolver) Solve(cashFlows []float64) float64 {
	if !hasSignChange(cashFlows) {
		return NotConvertible
	}

	low, high := s.Lower, s.Upper
	fLow, fHigh := NPV(low, cashFlows), NPV(high, cashFlows)
	if math.IsNaN(fLow) || math.IsNaN(fHigh) {
		return NotConvertible
	}
	if fLow == 0 {
		return low
	}
	if fHigh == 0 {
		return high
	}
	if (fLow > 0) == (fHigh > 0) {
		return NotConvertible
	}

	for i := 0; i < s.MaxIterations; i++ {
		mid := (low + high) / 2
		fMid := NPV(mid, cashFlows)
		if math.Abs(fMid) < s.Tolerance {
			return mid
		}
		// Keep the half whose endpoints still straddle the root.
		if (fLow > 0) != (fMid > 0) {
			high = mid
		} else {
			low, fLow = mid, fMid
		}
	}
	return (low + high) / 2
}

func hasSignChange(cashFlows []float64) bool {
	positive, negative := false, false
	for _, cf := range cashFlows {
		if cf > 0 {
			positive = true
		} else if cf < 0 {
			negative = true
		}
		if positive && negative {
			return true
		}
	}
	return false
}
