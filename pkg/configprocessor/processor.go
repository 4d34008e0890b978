// Package configprocessor provides shared configuration processing utilities.
package configprocessor

import (
	"fmt"
	"strings"

	"github.com/iwvelando/project-finance/pkg/finance"
	"github.com/iwvelando/project-finance/pkg/mathutil"
)

// ComponentInfo represents component configuration information
type ComponentInfo struct {
	Name        string
	RevenueKind string
	RoomShare   float64
	TenorYears  int
	GraceYears  int
	Capex       float64
}

// Processor handles configuration processing and validation
type Processor struct{}

// NewProcessor creates a new configuration processor
func NewProcessor() *Processor {
	return &Processor{}
}

// ClampAssumptions bounds a to the domain the engine trusts: fractions in
// [0,1], non-negative rates and money, tenor and depreciation of at least one
// year and grace within the tenor. Each adjustment yields a warning.
func (p *Processor) ClampAssumptions(name string, a finance.AssumptionSet) (finance.AssumptionSet, []string) {
	var warnings []string
	clamp := func(field string, value *float64, lo, hi float64) {
		clamped := mathutil.Clamp(*value, lo, hi)
		if clamped != *value {
			warnings = append(warnings, fmt.Sprintf("Component '%s' %s %.4f clamped to %.4f", name, field, *value, clamped))
			*value = clamped
		}
	}
	clampInt := func(field string, value *int, lo, hi int) {
		clamped := mathutil.ClampInt(*value, lo, hi)
		if clamped != *value {
			warnings = append(warnings, fmt.Sprintf("Component '%s' %s %d clamped to %d", name, field, *value, clamped))
			*value = clamped
		}
	}

	maxFloat := 1e300
	clamp("capitalExpenditure", &a.CapitalExpenditure, 0, maxFloat)
	clamp("equityFraction", &a.EquityFraction, 0, 1)
	clamp("interestRate", &a.InterestRate, 0, maxFloat)
	clamp("operatingCostBase", &a.OperatingCostBase, 0, maxFloat)
	clamp("escalationRate", &a.EscalationRate, -0.99, maxFloat)
	clamp("taxRate", &a.TaxRate, 0, 1)

	maxInt := int(^uint(0) >> 1)
	clampInt("tenorYears", &a.TenorYears, 1, maxInt)
	clampInt("graceYears", &a.GraceYears, 0, a.TenorYears)
	clampInt("depreciationYears", &a.DepreciationYears, 1, maxInt)

	return a, warnings
}

// ValidateConfiguration validates the configuration and returns warnings
func (p *Processor) ValidateConfiguration(discountRate float64, components []ComponentInfo) []string {
	var warnings []string

	if len(components) == 0 {
		return []string{"No components configured"}
	}
	if discountRate < 0 {
		warnings = append(warnings, fmt.Sprintf("Discount rate %.4f is negative", discountRate))
	}

	seen := make(map[string]bool)
	shareTotal := 0.0
	sharedPool := false
	for _, component := range components {
		name := strings.TrimSpace(component.Name)
		if name == "" {
			warnings = append(warnings, "Component without a name")
		}
		key := strings.ToLower(name)
		if seen[key] {
			warnings = append(warnings, "Component '"+component.Name+"' is defined more than once")
		}
		seen[key] = true

		switch finance.RevenueKind(component.RevenueKind) {
		case finance.RevenueRoomFee, finance.RevenuePowerSale:
			sharedPool = true
			shareTotal += component.RoomShare
		case finance.RevenueWastewaterTariff, finance.RevenueFixed:
		default:
			warnings = append(warnings, "Component '"+component.Name+"' has unknown revenue kind '"+component.RevenueKind+"'")
		}

		if component.Capex == 0 {
			warnings = append(warnings, "Component '"+component.Name+"' has no capital expenditure, its IRRs will not be computed")
		}
		if component.TenorYears > 0 && component.GraceYears >= component.TenorYears {
			warnings = append(warnings, fmt.Sprintf("Component '%s' grace period of %d years covers the whole tenor, principal is never repaid", component.Name, component.GraceYears))
		}
	}

	if sharedPool && !mathutil.WithinTolerance(shareTotal, 1, 1e-9) {
		warnings = append(warnings, fmt.Sprintf("Room fee shares add up to %.4f instead of 1", shareTotal))
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}
