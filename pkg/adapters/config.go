// Package adapters provides adapter implementations between different package interfaces.
package adapters

import (
	"fmt"

	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/pkg/finance"
)

// ConfigComponentAdapter wraps config.Component to produce engine input
type ConfigComponentAdapter struct {
	Component config.Component
	Common    config.Common
}

// GetName returns the component name
func (w ConfigComponentAdapter) GetName() string {
	return w.Component.Name
}

// GetAssumptions returns the component assumptions
func (w ConfigComponentAdapter) GetAssumptions() finance.AssumptionSet {
	return w.Component.Assumptions
}

// GetRevenueDriver builds the revenue driver named by the component's revenue kind
func (w ConfigComponentAdapter) GetRevenueDriver() (finance.RevenueDriver, error) {
	return RevenueDriver(w.Common, w.Component.Revenue)
}

// ToFinanceComponent converts the wrapped component into a finance.Component
func (w ConfigComponentAdapter) ToFinanceComponent() (finance.Component, error) {
	driver, err := w.GetRevenueDriver()
	if err != nil {
		return finance.Component{}, fmt.Errorf("component %q: %w", w.Component.Name, err)
	}
	return finance.Component{
		Name:        w.Component.Name,
		Assumptions: w.Component.Assumptions,
		Revenue:     driver,
	}, nil
}

// ComponentsFromConfig converts every configured component to a finance.Component
func ComponentsFromConfig(conf config.Configuration) ([]finance.Component, error) {
	if conf.Components == nil {
		return nil, nil
	}

	components := make([]finance.Component, 0, len(conf.Components))
	for _, component := range conf.Components {
		c, err := ConfigComponentAdapter{Component: component, Common: conf.Common}.ToFinanceComponent()
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, nil
}
