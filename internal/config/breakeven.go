package config

import (
	"fmt"
	"strings"
)

const (
	BreakEvenMetricProject       = "project"
	BreakEvenMetricEquityPreTax  = "equityPreTax"
	BreakEvenMetricEquityPostTax = "equityPostTax"

	defaultBreakEvenTolerance     = 0.01
	defaultBreakEvenMaxIterations = 100
)

// BreakEvenConfig asks for the annual revenue of one component at which the
// selected IRR equals Target. Target defaults to the discount rate and Max to
// ten times the component's capital expenditure plus base operating cost.
type BreakEvenConfig struct {
	Component     string   `yaml:"component" json:"component" mapstructure:"component"`
	Metric        string   `yaml:"metric,omitempty" json:"metric,omitempty" mapstructure:"metric"`
	Target        *float64 `yaml:"target,omitempty" json:"target,omitempty" mapstructure:"target"`
	Max           *float64 `yaml:"max,omitempty" json:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `yaml:"tolerance,omitempty" json:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalBreakEvenMetric returns the canonical identifier for a metric name.
func CanonicalBreakEvenMetric(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return BreakEvenMetricProject
	}
	switch strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(trimmed)) {
	case "project", "projectirr":
		return BreakEvenMetricProject
	case "equitypretax", "equity", "equityirr":
		return BreakEvenMetricEquityPreTax
	case "equityposttax", "posttax":
		return BreakEvenMetricEquityPostTax
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (b *BreakEvenConfig) Normalize() {
	if b == nil {
		return
	}
	b.Component = strings.TrimSpace(b.Component)
	b.Metric = CanonicalBreakEvenMetric(b.Metric)
	if b.Tolerance <= 0 {
		b.Tolerance = defaultBreakEvenTolerance
	}
	if b.MaxIterations <= 0 {
		b.MaxIterations = defaultBreakEvenMaxIterations
	}
}

// Validate returns an error when the break-even configuration is unsupported.
func (b *BreakEvenConfig) Validate() error {
	if b == nil {
		return fmt.Errorf("break-even configuration cannot be nil")
	}

	b.Normalize()

	if b.Component == "" {
		return fmt.Errorf("break-even requires a component")
	}
	switch b.Metric {
	case BreakEvenMetricProject, BreakEvenMetricEquityPreTax, BreakEvenMetricEquityPostTax:
		// supported metrics
	default:
		return fmt.Errorf("break-even metric %q is not supported", b.Metric)
	}
	if b.Target != nil && *b.Target <= -1 {
		return fmt.Errorf("break-even target %.4f must be greater than -1", *b.Target)
	}
	if b.Max != nil && *b.Max <= 0 {
		return fmt.Errorf("break-even maximum %.2f must be positive", *b.Max)
	}

	return nil
}
