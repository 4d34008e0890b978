package finance

import "math"

// NPV discounts cashFlows at rate, treating index t as year t. The caller
// guarantees rate > -1.
func NPV(rate float64, cashFlows []float64) float64 {
	total := 0.0
	for t, cf := range cashFlows {
		total += cf / math.Pow(1+rate, float64(t))
	}
	return total
}

// Payback returns the number of years until the cumulative sum of cashFlows
// turns non-negative, interpolating within the crossing year as if its flow
// arrived evenly. It returns 0 when cashFlows[0] is already non-negative and
// NotConvertible when the cumulative sum never recovers.
func Payback(cashFlows []float64) float64 {
	if len(cashFlows) == 0 {
		return NotConvertible
	}

	cumulative := cashFlows[0]
	if cumulative >= 0 {
		return 0
	}
	for t := 1; t < len(cashFlows); t++ {
		shortfall := -cumulative
		cumulative += cashFlows[t]
		if cumulative >= 0 {
			// A crossing from below implies cashFlows[t] > 0.
			return float64(t-1) + shortfall/cashFlows[t]
		}
	}
	return NotConvertible
}

// ReturnOnInvestment is the undiscounted (inflows - capex) / capex ratio, or
// NotConvertible when there is no capital to return on.
func ReturnOnInvestment(totalInflows, capex float64) float64 {
	if capex == 0 {
		return NotConvertible
	}
	return (totalInflows - capex) / capex
}
