package config

import "testing"

func TestCanonicalBreakEvenMetric(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty defaults to project", input: "", expected: BreakEvenMetricProject},
		{name: "project casing", input: "Project", expected: BreakEvenMetricProject},
		{name: "equity alias", input: "equity", expected: BreakEvenMetricEquityPreTax},
		{name: "pre tax variations", input: "equity_pre_tax", expected: BreakEvenMetricEquityPreTax},
		{name: "post tax variations", input: "EQUITY-POST-TAX", expected: BreakEvenMetricEquityPostTax},
		{name: "unknown lowered", input: "Custom", expected: "custom"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := CanonicalBreakEvenMetric(tc.input)
			if actual != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, actual)
			}
		})
	}
}

func TestBreakEvenConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     *BreakEvenConfig
		wantErr bool
	}{
		{name: "nil", cfg: nil, wantErr: true},
		{name: "missing component", cfg: &BreakEvenConfig{}, wantErr: true},
		{name: "defaults", cfg: &BreakEvenConfig{Component: "C"}},
		{name: "unsupported metric", cfg: &BreakEvenConfig{Component: "C", Metric: "npv"}, wantErr: true},
		{name: "target below -1", cfg: &BreakEvenConfig{Component: "C", Target: floatPtr(-1.5)}, wantErr: true},
		{name: "non-positive max", cfg: &BreakEvenConfig{Component: "C", Max: floatPtr(0)}, wantErr: true},
		{name: "explicit bounds", cfg: &BreakEvenConfig{Component: "A", Metric: "equityPostTax", Target: floatPtr(0.15), Max: floatPtr(5e7)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBreakEvenConfigNormalizeDefaults(t *testing.T) {
	cfg := &BreakEvenConfig{Component: "  C "}
	cfg.Normalize()

	if cfg.Component != "C" {
		t.Fatalf("expected trimmed component, got %q", cfg.Component)
	}
	if cfg.Metric != BreakEvenMetricProject {
		t.Fatalf("expected project metric, got %q", cfg.Metric)
	}
	if cfg.Tolerance != defaultBreakEvenTolerance {
		t.Fatalf("expected tolerance %.2f, got %.2f", defaultBreakEvenTolerance, cfg.Tolerance)
	}
	if cfg.MaxIterations != defaultBreakEvenMaxIterations {
		t.Fatalf("expected %d iterations, got %d", defaultBreakEvenMaxIterations, cfg.MaxIterations)
	}
}

func floatPtr(value float64) *float64 {
	return &value
}
