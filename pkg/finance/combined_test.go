package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatAssumptions(tenor int) AssumptionSet {
	a := sampleAssumptions()
	a.TenorYears = tenor
	a.EscalationRate = 0
	return a
}

func TestAggregateUnequalTenors(t *testing.T) {
	results := []ComponentResult{
		Project(flatAssumptions(10), 5_000_000),
		Project(flatAssumptions(10), 5_000_000),
		Project(flatAssumptions(15), 5_000_000),
	}

	combined := Aggregate(results)

	require.Equal(t, 15, combined.Horizon)
	require.Len(t, combined.TotalCFADSBeforeDebt, 15)
	require.Len(t, combined.ProjectCashFlows, 16)

	for t0 := 0; t0 < 10; t0++ {
		assert.InDelta(t, 3*results[2].CFADSBeforeDebt[t0], combined.TotalCFADSBeforeDebt[t0], 1e-6)
	}
	for t0 := 10; t0 < 15; t0++ {
		assert.Equal(t, results[2].CFADSBeforeDebt[t0], combined.TotalCFADSBeforeDebt[t0])
		assert.Equal(t, results[2].CFADSAfterDebt[t0], combined.TotalCFADSAfterDebt[t0])
		assert.Equal(t, results[2].Revenue, combined.TotalRevenue[t0])
	}

	assert.InDelta(t, 54_000_000, combined.TotalCapex, 1e-6)
	assert.InDelta(t, 16_200_000, combined.TotalEquity, 1e-6)
	assert.InDelta(t, -54_000_000, combined.ProjectCashFlows[0], 1e-6)
	assert.InDelta(t, -16_200_000, combined.EquityCashFlows[0], 1e-6)
	assert.False(t, IsNotConvertible(combined.ProjectIRR))
	assert.False(t, IsNotConvertible(combined.EquityIRR))
}

func TestAggregateTotals(t *testing.T) {
	results := []ComponentResult{
		Project(sampleAssumptions(), 5_000_000),
		Project(flatAssumptions(15), 4_000_000),
	}

	combined := Aggregate(results)

	for t0 := 0; t0 < combined.Horizon; t0++ {
		year := t0 + 1
		assert.InDelta(t, results[0].DebtService(year)+results[1].DebtService(year), combined.TotalDebtService[t0], 1e-6)
		assert.InDelta(t,
			combined.TotalCFADSBeforeDebt[t0]-combined.TotalDebtService[t0],
			combined.TotalCFADSAfterDebt[t0], 1e-6)
	}
	assert.InDelta(t, 0, combined.TotalRemainingDebt[14], 1e-6)
	assert.Greater(t, combined.TotalRemainingDebt[0], 0.0)

	cfadsTotal := 0.0
	for _, v := range combined.TotalCFADSBeforeDebt {
		cfadsTotal += v
	}
	assert.InDelta(t, (cfadsTotal-36_000_000)/36_000_000, combined.ReturnOnInvestment, 1e-12)
	assert.InDelta(t, NPV(0.10, combined.ProjectCashFlows), combined.ProjectNPV(0.10), 1e-9)
	assert.InDelta(t, NPV(0.10, combined.EquityCashFlows), combined.EquityNPV(0.10), 1e-9)
	assert.InDelta(t, Payback(combined.ProjectCashFlows), combined.ProjectPayback(), 1e-12)
}

func TestAggregateExplicitWeights(t *testing.T) {
	results := []ComponentResult{
		Project(sampleAssumptions(), 5_000_000),
		Project(sampleAssumptions(), 5_000_000),
	}

	combined := NewCombinedAggregator(nil).Aggregate(results, []float64{18_000_000, 18_000_000}, []float64{0.5})

	assert.InDelta(t, 36_000_000, combined.TotalCapex, 1e-6)
	assert.InDelta(t, 9_000_000, combined.TotalEquity, 1e-6)
}

func TestAggregateDegenerate(t *testing.T) {
	t.Run("No components", func(t *testing.T) {
		combined := Aggregate(nil)

		assert.Equal(t, 0, combined.Horizon)
		assert.True(t, IsNotConvertible(combined.ProjectIRR))
		assert.True(t, IsNotConvertible(combined.EquityIRR))
		assert.True(t, IsNotConvertible(combined.ReturnOnInvestment))
	})

	t.Run("No equity", func(t *testing.T) {
		a := sampleAssumptions()
		a.EquityFraction = 0

		combined := Aggregate([]ComponentResult{Project(a, 5_000_000)})

		assert.Equal(t, 0.0, combined.TotalEquity)
		assert.True(t, IsNotConvertible(combined.EquityIRR))
		assert.False(t, IsNotConvertible(combined.ProjectIRR))
	})
}
