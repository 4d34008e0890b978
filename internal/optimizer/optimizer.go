// Package optimizer solves the break-even directives of a configuration.
package optimizer

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/pkg/adapters"
	"github.com/iwvelando/project-finance/pkg/finance"
	"github.com/iwvelando/project-finance/pkg/mathutil"
	"github.com/iwvelando/project-finance/pkg/optimization"
	"go.uber.org/zap"
)

// Runner evaluates break-even directives against a configuration. The
// configuration is never modified.
type Runner struct {
	logger    *zap.Logger
	conf      *config.Configuration
	projector *finance.ComponentProjector
}

type breakEvenTarget struct {
	name        string
	metric      string
	assumptions finance.AssumptionSet
	driver      finance.RevenueDriver
	original    float64
	target      float64
	upper       float64
	tolerance   float64
	iterations  int
}

// Result holds the summaries of every directive in configuration order.
type Result struct {
	Summaries []optimization.Summary
}

// Empty indicates whether any break-even summaries were produced.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// ForComponent returns the summaries that target the named component.
func (r Result) ForComponent(name string) []optimization.Summary {
	var out []optimization.Summary
	for _, s := range r.Summaries {
		if strings.EqualFold(s.Component, name) {
			out = append(out, s)
		}
	}
	return out
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, conf: conf, projector: finance.NewComponentProjector(logger)}, nil
}

// Run solves every break-even directive in the configuration.
func (r *Runner) Run() (*Result, error) {
	result := &Result{}
	for i := range r.conf.BreakEven {
		summary, err := r.Solve(r.conf.BreakEven[i])
		if err != nil {
			return nil, fmt.Errorf("break-even directive %d: %w", i+1, err)
		}
		result.Summaries = append(result.Summaries, summary)
	}
	return result, nil
}

// Solve finds the annual revenue of one component at which the selected IRR
// equals the directive's target.
func (r *Runner) Solve(directive config.BreakEvenConfig) (optimization.Summary, error) {
	target, err := r.resolve(directive)
	if err != nil {
		return optimization.Summary{}, err
	}

	search := optimization.Search{
		Lower:         0,
		Upper:         target.upper,
		Tolerance:     target.tolerance,
		MaxIterations: target.iterations,
	}
	found := search.Bisect(target.metricAt(r.projector), target.target)

	summary := optimization.Summary{
		Component:  target.name,
		Metric:     target.metric,
		Target:     target.target,
		Original:   target.original,
		Value:      mathutil.Round(found.Value),
		Iterations: found.Iterations,
		Converged:  found.Converged,
	}
	summary.Headroom = mathutil.Round(summary.Original - summary.Value)
	summary.OriginalUnitTariff, summary.Unit = adapters.UnitTariff(target.driver, target.original)
	summary.UnitTariff, _ = adapters.UnitTariff(target.driver, found.Value)

	switch {
	case found.Value == search.Upper && !found.Converged:
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"target IRR %.2f%% not reached below annual revenue %.2f", target.target*100, search.Upper))
	case !found.Converged:
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"stopped after %d iterations before reaching tolerance %.4f", found.Iterations, search.Tolerance))
	case found.Iterations == 0 && found.Value == search.Lower:
		summary.Notes = append(summary.Notes, "target met with zero revenue")
	}

	r.logger.Info("solved break-even revenue",
		zap.String("op", "optimizer.Solve"),
		zap.String("component", summary.Component),
		zap.String("metric", summary.Metric),
		zap.Float64("target", summary.Target),
		zap.Float64("original", summary.Original),
		zap.Float64("value", summary.Value),
		zap.Float64("headroom", summary.Headroom),
		zap.Float64("unitTariff", summary.UnitTariff),
		zap.String("unit", summary.Unit),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)

	return summary, nil
}

func (r *Runner) resolve(directive config.BreakEvenConfig) (breakEvenTarget, error) {
	if err := directive.Validate(); err != nil {
		return breakEvenTarget{}, err
	}

	component, err := r.conf.Component(directive.Component)
	if err != nil {
		return breakEvenTarget{}, err
	}
	driver, err := adapters.RevenueDriver(r.conf.Common, component.Revenue)
	if err != nil {
		return breakEvenTarget{}, fmt.Errorf("component %s: %w", component.Name, err)
	}

	a := component.Assumptions
	if directive.Metric != config.BreakEvenMetricProject && a.CapitalExpenditure*a.EquityFraction <= 0 {
		return breakEvenTarget{}, fmt.Errorf("component %s has no equity for metric %s", component.Name, directive.Metric)
	}
	t := breakEvenTarget{
		name:        component.Name,
		metric:      directive.Metric,
		assumptions: a,
		driver:      driver,
		original:    driver.AnnualRevenue(),
		target:      r.conf.Common.DiscountRate,
		upper:       defaultUpper(a),
		tolerance:   directive.Tolerance,
		iterations:  directive.MaxIterations,
	}
	if directive.Target != nil {
		t.target = *directive.Target
	}
	if directive.Max != nil {
		t.upper = *directive.Max
	}
	return t, nil
}

// defaultUpper is ten times the capital and first-year operating cost, or
// one when both are zero.
func defaultUpper(a finance.AssumptionSet) float64 {
	upper := 10 * (a.CapitalExpenditure + a.OperatingCostBase)
	if upper <= 0 {
		return 1
	}
	return upper
}

// metricAt projects the component at a given revenue and reads the selected
// IRR. An IRR beyond the solver bracket reads as +Inf when the undiscounted
// flows are positive and -Inf otherwise, so the search stays monotone.
func (t breakEvenTarget) metricAt(projector *finance.ComponentProjector) func(float64) float64 {
	return func(revenue float64) float64 {
		result := projector.Project(t.assumptions, revenue)

		var irr float64
		var flows []float64
		switch t.metric {
		case config.BreakEvenMetricEquityPreTax:
			irr, flows = result.EquityIRRPreTax, result.EquityCashFlowsPreTax
		case config.BreakEvenMetricEquityPostTax:
			irr, flows = result.EquityIRRPostTax, result.EquityCashFlowsPostTax
		default:
			irr, flows = result.ProjectIRR, result.ProjectCashFlows
		}

		if !finance.IsNotConvertible(irr) {
			return irr
		}
		if mathutil.Sum(flows) > 0 {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
}
