// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"
	"strconv"

	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/pkg/adapters"
	"github.com/iwvelando/project-finance/pkg/finance"
	"go.uber.org/zap"
)

// Forecast holds the projection of every component and the combined view.
type Forecast struct {
	DiscountRate float64
	StartYear    int
	Components   []ComponentForecast
	Combined     CombinedForecast
}

// ComponentForecast holds the result and KPIs of one component.
type ComponentForecast struct {
	Name        string
	Description string
	RevenueKind finance.RevenueKind
	Driver      finance.RevenueDriver
	Result      finance.ComponentResult
	NPV         float64
	Payback     float64
	// ReferenceRevenue is set for tariff drivers that carry a reference tariff.
	ReferenceRevenue *float64
}

// CombinedForecast holds the aggregated result and its KPIs.
type CombinedForecast struct {
	Result    finance.CombinedResult
	NPV       float64
	EquityNPV float64
	Payback   float64
}

// Horizon is the number of operating years in the combined view.
func (f Forecast) Horizon() int {
	return f.Combined.Result.Horizon
}

// YearLabel names year t, where 0 is the construction year.
func (f Forecast) YearLabel(t int) string {
	if f.StartYear > 0 {
		return strconv.Itoa(f.StartYear + t)
	}
	return strconv.Itoa(t)
}

// Component returns the forecast for the named component.
func (f Forecast) Component(name string) (ComponentForecast, bool) {
	for _, c := range f.Components {
		if c.Name == name {
			return c, true
		}
	}
	return ComponentForecast{}, false
}

// GetForecast projects every configured component and aggregates them. The
// configuration is expected to be clamped already.
func GetForecast(logger *zap.Logger, conf config.Configuration) (Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	components, err := adapters.ComponentsFromConfig(conf)
	if err != nil {
		return Forecast{}, err
	}
	if len(components) == 0 {
		return Forecast{}, fmt.Errorf("%w: no components configured", config.ErrInvalidComponent)
	}

	projector := finance.NewComponentProjector(logger)
	aggregator := finance.NewCombinedAggregator(logger)

	result := Forecast{
		DiscountRate: conf.Common.DiscountRate,
		StartYear:    conf.Common.StartYear,
		Components:   make([]ComponentForecast, 0, len(components)),
	}

	results := make([]finance.ComponentResult, 0, len(components))
	for i, component := range components {
		projected := projector.ProjectComponent(component)
		results = append(results, projected)

		cf := ComponentForecast{
			Name:        component.Name,
			Description: conf.Components[i].Description,
			RevenueKind: component.Revenue.Kind(),
			Driver:      component.Revenue,
			Result:      projected,
			NPV:         projected.ProjectNPV(conf.Common.DiscountRate),
			Payback:     projected.ProjectPayback(),
		}
		if water, ok := component.Revenue.(finance.WastewaterTariffDriver); ok && water.ReferenceTariffPerM3 > 0 {
			reference := water.ReferenceRevenue()
			cf.ReferenceRevenue = &reference
		}
		result.Components = append(result.Components, cf)

		logger.Debug(fmt.Sprintf("projected component %s", component.Name),
			zap.String("op", "forecast.GetForecast"),
			zap.Float64("revenue", projected.Revenue),
			zap.Float64("projectIRR", projected.ProjectIRR),
			zap.Float64("npv", cf.NPV),
		)
	}

	combined := aggregator.AggregateResults(results)
	result.Combined = CombinedForecast{
		Result:    combined,
		NPV:       combined.ProjectNPV(conf.Common.DiscountRate),
		EquityNPV: combined.EquityNPV(conf.Common.DiscountRate),
		Payback:   combined.ProjectPayback(),
	}

	return result, nil
}
