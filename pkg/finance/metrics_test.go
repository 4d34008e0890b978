package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNPV(t *testing.T) {
	tests := []struct {
		name      string
		rate      float64
		cashFlows []float64
		expected  float64
	}{
		{name: "Zero rate is the sum", rate: 0, cashFlows: []float64{-100, 40, 40, 40}, expected: 20},
		{name: "Ten percent", rate: 0.10, cashFlows: []float64{-100, 110}, expected: 0},
		{name: "Year zero undiscounted", rate: 0.5, cashFlows: []float64{-100}, expected: -100},
		{name: "Empty series", rate: 0.1, cashFlows: nil, expected: 0},
		{name: "Two years at ten percent", rate: 0.10, cashFlows: []float64{0, 0, 121}, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NPV(tt.rate, tt.cashFlows), 1e-9)
		})
	}
}

func TestNPVAtZeroEqualsSum(t *testing.T) {
	series := [][]float64{
		{-18_000_000, 3_100_000, 3_040_000, 2_977_600},
		{5, -3, 2.5, -1.25},
		{0},
	}
	for _, cf := range series {
		sum := 0.0
		for _, v := range cf {
			sum += v
		}
		assert.InDelta(t, sum, NPV(0, cf), 1e-9)
	}
}

func TestPayback(t *testing.T) {
	tests := []struct {
		name      string
		cashFlows []float64
		expected  float64
	}{
		{name: "Crosses mid year three", cashFlows: []float64{-100, 40, 40, 40}, expected: 2.5},
		{name: "Exactly at year end", cashFlows: []float64{-100, 50, 50}, expected: 2},
		{name: "Within first year", cashFlows: []float64{-100, 200}, expected: 0.5},
		{name: "Recovered at year zero", cashFlows: []float64{10, -5}, expected: 0},
		{name: "Zero outlay", cashFlows: []float64{0, 10}, expected: 0},
		{name: "Dip before recovery", cashFlows: []float64{-100, -20, 60, 120}, expected: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Payback(tt.cashFlows), 1e-9)
		})
	}
}

func TestPaybackNotConvertible(t *testing.T) {
	assert.True(t, IsNotConvertible(Payback(nil)))
	assert.True(t, IsNotConvertible(Payback([]float64{-100, 30, 30, 30})))
	assert.True(t, IsNotConvertible(Payback([]float64{-100})))
}

func TestReturnOnInvestment(t *testing.T) {
	assert.InDelta(t, 0.5, ReturnOnInvestment(150, 100), 1e-12)
	assert.InDelta(t, -0.25, ReturnOnInvestment(75, 100), 1e-12)
	assert.True(t, IsNotConvertible(ReturnOnInvestment(75, 0)))
}
