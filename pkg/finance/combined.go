package finance

import (
	"github.com/iwvelando/project-finance/pkg/mathutil"
	"go.uber.org/zap"
)

// CombinedResult is the portfolio view across components of possibly
// different tenors. Yearly series have length Horizon; index t is year t+1.
type CombinedResult struct {
	TotalCapex  float64
	TotalEquity float64
	Horizon     int

	TotalRevenue         []float64
	TotalOperatingCost   []float64
	TotalDebtService     []float64
	TotalRemainingDebt   []float64
	TotalCFADSBeforeDebt []float64
	TotalCFADSAfterDebt  []float64

	ProjectCashFlows []float64
	EquityCashFlows  []float64

	ProjectIRR         float64
	EquityIRR          float64
	ReturnOnInvestment float64
}

// ProjectNPV discounts the combined unlevered flows at rate.
func (r CombinedResult) ProjectNPV(rate float64) float64 {
	return NPV(rate, r.ProjectCashFlows)
}

// EquityNPV discounts the combined levered flows at rate.
func (r CombinedResult) EquityNPV(rate float64) float64 {
	return NPV(rate, r.EquityCashFlows)
}

// ProjectPayback is the simple payback of the combined unlevered flows.
func (r CombinedResult) ProjectPayback() float64 {
	return Payback(r.ProjectCashFlows)
}

// CombinedAggregator merges component results into a CombinedResult.
type CombinedAggregator struct {
	logger *zap.Logger
	solver IRRSolver
}

// NewCombinedAggregator creates an aggregator with the default IRR solver.
func NewCombinedAggregator(logger *zap.Logger) *CombinedAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CombinedAggregator{logger: logger, solver: DefaultIRRSolver()}
}

// Aggregate combines results using the capex and equity fraction recorded on
// each result.
func Aggregate(results []ComponentResult) CombinedResult {
	return NewCombinedAggregator(nil).AggregateResults(results)
}

// AggregateResults is Aggregate with the capex and equity fraction taken
// from each result.
func (a *CombinedAggregator) AggregateResults(results []ComponentResult) CombinedResult {
	capex := make([]float64, len(results))
	equityFractions := make([]float64, len(results))
	for i, r := range results {
		capex[i] = r.Capex
		equityFractions[i] = r.EquityFraction
	}
	return a.Aggregate(results, capex, equityFractions)
}

// Aggregate sums the yearly series of results over the longest tenor among
// them. A year beyond a component's own tenor contributes zero. capex and
// equityFractions are indexed like results; missing entries count as zero.
func (a *CombinedAggregator) Aggregate(results []ComponentResult, capex, equityFractions []float64) CombinedResult {
	horizon := 0
	for _, r := range results {
		if r.Tenor() > horizon {
			horizon = r.Tenor()
		}
	}

	combined := CombinedResult{
		Horizon:              horizon,
		TotalRevenue:         make([]float64, horizon),
		TotalOperatingCost:   make([]float64, horizon),
		TotalDebtService:     make([]float64, horizon),
		TotalRemainingDebt:   make([]float64, horizon),
		TotalCFADSBeforeDebt: make([]float64, horizon),
		TotalCFADSAfterDebt:  make([]float64, horizon),
	}

	for i, r := range results {
		c := mathutil.At(capex, i)
		combined.TotalCapex += c
		combined.TotalEquity += c * mathutil.At(equityFractions, i)

		for t := 0; t < r.Tenor(); t++ {
			combined.TotalRevenue[t] += r.Revenue
			combined.TotalOperatingCost[t] += mathutil.At(r.OperatingCost, t)
			combined.TotalDebtService[t] += r.DebtService(t + 1)
			if t < len(r.Schedule) {
				combined.TotalRemainingDebt[t] += r.Schedule[t].RemainingBalance
			}
			combined.TotalCFADSBeforeDebt[t] += r.CFADSBeforeDebt[t]
			combined.TotalCFADSAfterDebt[t] += mathutil.At(r.CFADSAfterDebt, t)
		}
	}

	combined.ProjectCashFlows = prepend(-combined.TotalCapex, combined.TotalCFADSBeforeDebt)
	combined.EquityCashFlows = prepend(-combined.TotalEquity, combined.TotalCFADSAfterDebt)

	combined.ProjectIRR = a.solver.Solve(combined.ProjectCashFlows)
	combined.EquityIRR = NotConvertible
	if combined.TotalEquity > 0 {
		combined.EquityIRR = a.solver.Solve(combined.EquityCashFlows)
	}
	combined.ReturnOnInvestment = ReturnOnInvestment(mathutil.Sum(combined.TotalCFADSBeforeDebt), combined.TotalCapex)

	a.logger.Debug("aggregated components",
		zap.String("op", "finance.Aggregate"),
		zap.Int("components", len(results)),
		zap.Int("horizon", horizon),
		zap.Float64("totalCapex", combined.TotalCapex),
		zap.Float64("totalEquity", combined.TotalEquity),
	)

	return combined
}
