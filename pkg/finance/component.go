package finance

import (
	"math"

	"github.com/iwvelando/project-finance/pkg/loans"
	"github.com/iwvelando/project-finance/pkg/mathutil"
	"go.uber.org/zap"
)

// AssumptionSet holds the financial assumptions of one component. It is
// treated as immutable for a computation pass.
type AssumptionSet struct {
	CapitalExpenditure float64 `json:"capitalExpenditure" yaml:"capitalExpenditure" mapstructure:"capitalExpenditure"`
	EquityFraction     float64 `json:"equityFraction" yaml:"equityFraction" mapstructure:"equityFraction"`
	InterestRate       float64 `json:"interestRate" yaml:"interestRate" mapstructure:"interestRate"`
	TenorYears         int     `json:"tenorYears" yaml:"tenorYears" mapstructure:"tenorYears"`
	GraceYears         int     `json:"graceYears" yaml:"graceYears" mapstructure:"graceYears"`
	OperatingCostBase  float64 `json:"operatingCostBase" yaml:"operatingCostBase" mapstructure:"operatingCostBase"`
	EscalationRate     float64 `json:"escalationRate" yaml:"escalationRate" mapstructure:"escalationRate"`
	DepreciationYears  int     `json:"depreciationYears" yaml:"depreciationYears" mapstructure:"depreciationYears"`
	TaxRate            float64 `json:"taxRate" yaml:"taxRate" mapstructure:"taxRate"`
}

// Component pairs a named set of assumptions with its revenue driver.
type Component struct {
	Name        string
	Assumptions AssumptionSet
	Revenue     RevenueDriver
}

// ComponentResult holds the year-by-year series and return metrics of one
// component. Index t of a yearly series is year t+1; the cash-flow series
// carry the year 0 outlay at index 0.
type ComponentResult struct {
	Name           string
	Capex          float64
	EquityFraction float64
	Equity         float64
	Debt           float64
	Revenue        float64

	Schedule        []loans.ScheduleRow
	OperatingCost   []float64
	Depreciation    []float64
	CFADSBeforeDebt []float64
	CFADSAfterDebt  []float64
	Tax             []float64

	ProjectCashFlows       []float64
	EquityCashFlowsPreTax  []float64
	EquityCashFlowsPostTax []float64

	ProjectIRR       float64
	EquityIRRPreTax  float64
	EquityIRRPostTax float64
}

// Tenor is the number of operating years in the projection.
func (r ComponentResult) Tenor() int {
	return len(r.CFADSBeforeDebt)
}

// DebtService returns the debt service due in year (1-based).
func (r ComponentResult) DebtService(year int) float64 {
	return loans.TotalService(r.Schedule, year)
}

// ProjectNPV discounts the unlevered project cash flows at rate.
func (r ComponentResult) ProjectNPV(rate float64) float64 {
	return NPV(rate, r.ProjectCashFlows)
}

// ProjectPayback is the simple payback of the unlevered project cash flows.
func (r ComponentResult) ProjectPayback() float64 {
	return Payback(r.ProjectCashFlows)
}

// ComponentProjector turns assumptions and revenue into a ComponentResult.
type ComponentProjector struct {
	logger    *zap.Logger
	schedules *loans.AmortizationScheduleGenerator
	solver    IRRSolver
}

// NewComponentProjector creates a projector with the default IRR solver.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewComponentProjector(logger *zap.Logger) *ComponentProjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComponentProjector{
		logger:    logger,
		schedules: loans.NewAmortizationScheduleGenerator(logger),
		solver:    DefaultIRRSolver(),
	}
}

// Project projects a component with a no-op logger.
func Project(a AssumptionSet, revenue float64) ComponentResult {
	return NewComponentProjector(nil).Project(a, revenue)
}

// ProjectComponent projects c using the revenue of its driver.
func (p *ComponentProjector) ProjectComponent(c Component) ComponentResult {
	revenue := 0.0
	if c.Revenue != nil {
		revenue = c.Revenue.AnnualRevenue()
	}
	result := p.Project(c.Assumptions, revenue)
	result.Name = c.Name
	return result
}

// Project builds the debt schedule, escalated operating cost, depreciation
// and tax lines for the assumptions and derives the unlevered and levered
// cash flows and their IRRs. Revenue is flat over the tenor.
func (p *ComponentProjector) Project(a AssumptionSet, revenue float64) ComponentResult {
	n := a.TenorYears
	if n < 1 {
		n = 1
	}

	equity := a.CapitalExpenditure * a.EquityFraction
	debt := a.CapitalExpenditure - equity
	schedule := p.schedules.GenerateSchedule(debt, a.InterestRate, n, a.GraceYears)

	result := ComponentResult{
		Capex:           a.CapitalExpenditure,
		EquityFraction:  a.EquityFraction,
		Equity:          equity,
		Debt:            debt,
		Revenue:         revenue,
		Schedule:        schedule,
		OperatingCost:   make([]float64, n),
		Depreciation:    make([]float64, n),
		CFADSBeforeDebt: make([]float64, n),
		CFADSAfterDebt:  make([]float64, n),
		Tax:             make([]float64, n),
	}

	annualDepreciation := 0.0
	if a.DepreciationYears > 0 {
		annualDepreciation = a.CapitalExpenditure / float64(a.DepreciationYears)
	}

	cashToEquity := make([]float64, n)
	for t := 0; t < n; t++ {
		year := t + 1
		row := schedule[t]

		operatingCost := a.OperatingCostBase * math.Pow(1+a.EscalationRate, float64(t))
		cfads := revenue - operatingCost

		depreciation := 0.0
		if year <= a.DepreciationYears {
			depreciation = annualDepreciation
		}
		ebit := cfads - depreciation
		ebt := ebit - row.Interest
		// Losses carry no tax benefit.
		tax := math.Max(0, ebt) * a.TaxRate
		netIncome := ebt - tax

		result.OperatingCost[t] = operatingCost
		result.Depreciation[t] = depreciation
		result.CFADSBeforeDebt[t] = cfads
		result.CFADSAfterDebt[t] = cfads - row.TotalService
		result.Tax[t] = tax
		cashToEquity[t] = netIncome + depreciation - row.PrincipalRepaid
	}

	result.ProjectCashFlows = prepend(-a.CapitalExpenditure, result.CFADSBeforeDebt)
	result.EquityCashFlowsPreTax = prepend(-equity, result.CFADSAfterDebt)
	result.EquityCashFlowsPostTax = prepend(-equity, cashToEquity)

	result.ProjectIRR = p.solver.Solve(result.ProjectCashFlows)
	result.EquityIRRPreTax = NotConvertible
	result.EquityIRRPostTax = NotConvertible
	if equity > 0 {
		result.EquityIRRPreTax = p.solver.Solve(result.EquityCashFlowsPreTax)
		result.EquityIRRPostTax = p.solver.Solve(result.EquityCashFlowsPostTax)
	} else {
		p.logger.Debug("skipping equity IRR for component without equity",
			zap.String("op", "finance.Project"),
			zap.Float64("capex", a.CapitalExpenditure),
			zap.Float64("equityFraction", a.EquityFraction),
		)
	}

	if IsNotConvertible(result.ProjectIRR) {
		p.logger.Debug("project IRR did not converge",
			zap.String("op", "finance.Project"),
			zap.Float64("capex", a.CapitalExpenditure),
			zap.Float64("cfadsTotal", mathutil.Sum(result.CFADSBeforeDebt)),
		)
	}

	return result
}

func prepend(first float64, series []float64) []float64 {
	out := make([]float64, 0, len(series)+1)
	out = append(out, first)
	return append(out, series...)
}
