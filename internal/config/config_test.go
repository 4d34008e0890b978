package config

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test configuration",
			configPath: "../../test/test_config.yaml",
			wantError:  false,
		},
		{
			name:       "Example configuration",
			configPath: "../../config.yaml.example",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Common.DiscountRate != 0.10 {
		t.Errorf("Expected DiscountRate = 0.10, got %v", config.Common.DiscountRate)
	}
	if config.Common.StartYear != 2025 {
		t.Errorf("Expected StartYear = 2025, got %v", config.Common.StartYear)
	}

	expectedComponents := []string{"A", "B", "C"}
	names := config.ComponentNames()
	if len(names) != len(expectedComponents) {
		t.Fatalf("Expected %d components, got %d", len(expectedComponents), len(names))
	}
	for i, expectedName := range expectedComponents {
		if names[i] != expectedName {
			t.Errorf("Expected component name %s, got %s", expectedName, names[i])
		}
	}

	c := config.Components[2]
	if c.Assumptions.TenorYears != 15 {
		t.Errorf("Expected C tenor 15, got %d", c.Assumptions.TenorYears)
	}
	if c.Assumptions.GraceYears != 2 {
		t.Errorf("Expected C grace 2, got %d", c.Assumptions.GraceYears)
	}
	if c.Revenue.Kind != RevenueKindWastewaterTariff {
		t.Errorf("Expected C revenue kind %s, got %s", RevenueKindWastewaterTariff, c.Revenue.Kind)
	}
	if c.Revenue.ReferenceTariffPerM3 != 0.083 {
		t.Errorf("Expected C reference tariff 0.083, got %v", c.Revenue.ReferenceTariffPerM3)
	}

	if len(config.BreakEven) != 1 || config.BreakEven[0].Component != "C" {
		t.Errorf("Expected one break-even directive for C, got %+v", config.BreakEven)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected logging level 'warn', got '%s'", config.Logging.Level)
	}
	if config.Snapshots.Directory != "snapshots" {
		t.Errorf("Expected default snapshot directory, got '%s'", config.Snapshots.Directory)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantError    bool
		components   int
		discountRate float64
	}{
		{
			name:         "Empty body uses baseline",
			body:         "",
			components:   3,
			discountRate: 0.10,
		},
		{
			name:         "Common override only",
			body:         "common:\n  discountRate: 0.08\n",
			components:   3,
			discountRate: 0.08,
		},
		{
			name: "Single component",
			body: `common:
  discountRate: 0.12
components:
  - name: Solo
    assumptions:
      capitalExpenditure: 1000
      equityFraction: 1
      tenorYears: 5
      depreciationYears: 5
    revenue:
      kind: fixed
      annual: 400
`,
			components:   1,
			discountRate: 0.12,
		},
		{
			name:      "Malformed YAML",
			body:      "common: [unterminated",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfigurationFromReader(strings.NewReader(tt.body))
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfigurationFromReader() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfigurationFromReader() error = %v", err)
			}
			if len(config.Components) != tt.components {
				t.Errorf("Expected %d components, got %d", tt.components, len(config.Components))
			}
			if config.Common.DiscountRate != tt.discountRate {
				t.Errorf("Expected discount rate %v, got %v", tt.discountRate, config.Common.DiscountRate)
			}
		})
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("PROJECT_FINANCE_COMMON_DISCOUNTRATE", "0.07")

	config, err := LoadConfigurationFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if config.Common.DiscountRate != 0.07 {
		t.Errorf("Expected discount rate from environment 0.07, got %v", config.Common.DiscountRate)
	}
}

func TestBaseline(t *testing.T) {
	base := Baseline()

	tests := []struct {
		name   string
		capex  float64
		opex   float64
		depYrs int
		kind   string
	}{
		{name: "A", capex: 18_000_000, opex: 1_500_000, depYrs: 10, kind: RevenueKindRoomFee},
		{name: "B", capex: 22_000_000, opex: 1_800_000, depYrs: 10, kind: RevenueKindPowerSale},
		{name: "C", capex: 54_444_444, opex: 3_333_333, depYrs: 15, kind: RevenueKindWastewaterTariff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			component, err := base.Component(tt.name)
			if err != nil {
				t.Fatalf("Component(%q) error = %v", tt.name, err)
			}
			a := component.Assumptions
			if a.CapitalExpenditure != tt.capex {
				t.Errorf("capex = %.2f, expected %.2f", a.CapitalExpenditure, tt.capex)
			}
			if a.OperatingCostBase != tt.opex {
				t.Errorf("opex = %.2f, expected %.2f", a.OperatingCostBase, tt.opex)
			}
			if a.DepreciationYears != tt.depYrs {
				t.Errorf("depreciation years = %d, expected %d", a.DepreciationYears, tt.depYrs)
			}
			if a.EquityFraction != 0.30 || a.InterestRate != 0.12 || a.TenorYears != 10 || a.TaxRate != 0.25 {
				t.Errorf("unexpected financing assumptions %+v", a)
			}
			if component.Revenue.Kind != tt.kind {
				t.Errorf("revenue kind = %s, expected %s", component.Revenue.Kind, tt.kind)
			}
		})
	}

	if warnings := base.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("Baseline().ValidateConfiguration() = %v, expected no warnings", warnings)
	}
}

func TestComponentLookup(t *testing.T) {
	base := Baseline()

	component, err := base.Component("b")
	if err != nil {
		t.Fatalf("Component() error = %v", err)
	}
	if component.Name != "B" {
		t.Errorf("Component(\"b\") = %s, expected B", component.Name)
	}

	component.Assumptions.TaxRate = 0.3
	if base.Components[1].Assumptions.TaxRate != 0.3 {
		t.Errorf("Component() should return a pointer into the configuration")
	}

	if _, err := base.Component("missing"); !errors.Is(err, ErrInvalidComponent) {
		t.Errorf("Component(\"missing\") error = %v, expected ErrInvalidComponent", err)
	}
}

func TestClampAssumptions(t *testing.T) {
	config := Baseline()
	config.Common.FXRate = 0
	config.Components[0].Assumptions.TenorYears = 0
	config.Components[1].Assumptions.EquityFraction = 1.2

	warnings := config.ClampAssumptions()

	if len(warnings) != 3 {
		t.Errorf("ClampAssumptions() returned %d warnings, expected 3: %v", len(warnings), warnings)
	}
	if config.Common.FXRate != 18.0 {
		t.Errorf("FX rate = %.2f, expected 18.00", config.Common.FXRate)
	}
	if config.Components[0].Assumptions.TenorYears != 1 {
		t.Errorf("tenor = %d, expected 1", config.Components[0].Assumptions.TenorYears)
	}
	if config.Components[1].Assumptions.EquityFraction != 1 {
		t.Errorf("equity fraction = %.2f, expected 1", config.Components[1].Assumptions.EquityFraction)
	}

	baseline := Baseline()
	if warnings := baseline.ClampAssumptions(); warnings != nil {
		t.Errorf("ClampAssumptions() on baseline = %v, expected nil", warnings)
	}
}

func TestLoggingConfiguration(t *testing.T) {
	config := Configuration{
		Logging: LoggingConfig{
			Level:  "debug",
			Format: "console",
		},
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected logging level 'debug', got '%s'", config.Logging.Level)
	}
	if config.Logging.Format != "console" {
		t.Errorf("Expected logging format 'console', got '%s'", config.Logging.Format)
	}

	loaded, err := LoadConfigurationFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if loaded.Logging.Level != "info" || loaded.Logging.Format != "console" {
		t.Errorf("Expected default logging info/console, got %s/%s", loaded.Logging.Level, loaded.Logging.Format)
	}
}
