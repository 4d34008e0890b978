// Package config defines the data structures related to configuration and
// includes functions for loading, clamping and validating the assumptions.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/project-finance/pkg/configprocessor"
	"github.com/iwvelando/project-finance/pkg/constants"
	"github.com/iwvelando/project-finance/pkg/finance"
	"github.com/iwvelando/project-finance/pkg/validation"
	"github.com/spf13/viper"
)

// ErrInvalidComponent is returned when a component cannot be turned into
// engine input, e.g. an unknown revenue kind.
var ErrInvalidComponent = errors.New("invalid component")

// Configuration holds all configuration for project-finance.
type Configuration struct {
	Common     Common            `yaml:"common" json:"common" mapstructure:"common"`
	Components []Component       `yaml:"components" json:"components" mapstructure:"components"`
	BreakEven  []BreakEvenConfig `yaml:"breakEven,omitempty" json:"breakEven,omitempty" mapstructure:"breakEven"`
	Logging    LoggingConfig     `yaml:"logging,omitempty" json:"logging,omitempty" mapstructure:"logging"`
	Output     OutputConfig      `yaml:"output,omitempty" json:"output,omitempty" mapstructure:"output"`
	Snapshots  SnapshotConfig    `yaml:"snapshots,omitempty" json:"snapshots,omitempty" mapstructure:"snapshots"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" json:"level,omitempty" mapstructure:"level"`                // debug, info, warn, error
	Format     string `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format"`             // json, console
	OutputFile string `yaml:"outputFile,omitempty" json:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format"`       // pretty, csv, json
	Currency string `yaml:"currency,omitempty" json:"currency,omitempty" mapstructure:"currency"` // USD, MXN
}

// SnapshotConfig selects where named snapshots are persisted.
type SnapshotConfig struct {
	Backend     string `yaml:"backend,omitempty" json:"backend,omitempty" mapstructure:"backend"` // file, postgres
	Directory   string `yaml:"directory,omitempty" json:"directory,omitempty" mapstructure:"directory"`
	DatabaseURL string `yaml:"databaseURL,omitempty" json:"databaseURL,omitempty" mapstructure:"databaseURL"`
}

// Common holds the parameters shared by every component.
type Common struct {
	DiscountRate   float64 `yaml:"discountRate" json:"discountRate" mapstructure:"discountRate"`
	FXRate         float64 `yaml:"fxRate" json:"fxRate" mapstructure:"fxRate"` // MXN per USD
	StartYear      int     `yaml:"startYear,omitempty" json:"startYear,omitempty" mapstructure:"startYear"`
	OccupiedRooms  float64 `yaml:"occupiedRooms" json:"occupiedRooms" mapstructure:"occupiedRooms"`
	RatePerRoomDay float64 `yaml:"ratePerRoomDay" json:"ratePerRoomDay" mapstructure:"ratePerRoomDay"`
}

// Component is one independently financed sub-project.
type Component struct {
	Name        string                `yaml:"name" json:"name" mapstructure:"name"`
	Description string                `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`
	Assumptions finance.AssumptionSet `yaml:"assumptions" json:"assumptions" mapstructure:"assumptions"`
	Revenue     Revenue               `yaml:"revenue" json:"revenue" mapstructure:"revenue"`
}

// Revenue describes the driver behind a component's annual revenue. Only the
// fields relevant to Kind are read.
type Revenue struct {
	Kind                 string  `yaml:"kind" json:"kind" mapstructure:"kind"` // room_fee, power_sale, wastewater_tariff, fixed
	RoomShare            float64 `yaml:"roomShare,omitempty" json:"roomShare,omitempty" mapstructure:"roomShare"`
	CapacityMW           float64 `yaml:"capacityMW,omitempty" json:"capacityMW,omitempty" mapstructure:"capacityMW"`
	TariffPerKWh         float64 `yaml:"tariffPerKWh,omitempty" json:"tariffPerKWh,omitempty" mapstructure:"tariffPerKWh"`
	FlowM3PerDay         float64 `yaml:"flowM3PerDay,omitempty" json:"flowM3PerDay,omitempty" mapstructure:"flowM3PerDay"`
	TariffPerM3          float64 `yaml:"tariffPerM3,omitempty" json:"tariffPerM3,omitempty" mapstructure:"tariffPerM3"`
	ReferenceTariffPerM3 float64 `yaml:"referenceTariffPerM3,omitempty" json:"referenceTariffPerM3,omitempty" mapstructure:"referenceTariffPerM3"`
	Annual               float64 `yaml:"annual,omitempty" json:"annual,omitempty" mapstructure:"annual"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Values missing from the file fall back to the
// baseline and may be overridden by PROJECT_FINANCE_* environment variables.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML configuration from r, e.g. an
// HTTP request body.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	v := newViper()
	v.SetConfigType("yml")
	if len(bytes.TrimSpace(data)) > 0 {
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("error parsing config, %s", err)
		}
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	base := Baseline()
	v.SetDefault("common.discountRate", base.Common.DiscountRate)
	v.SetDefault("common.fxRate", base.Common.FXRate)
	v.SetDefault("common.startYear", base.Common.StartYear)
	v.SetDefault("common.occupiedRooms", base.Common.OccupiedRooms)
	v.SetDefault("common.ratePerRoomDay", base.Common.RatePerRoomDay)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.currency", constants.CurrencyUSD)
	v.SetDefault("snapshots.backend", "file")
	v.SetDefault("snapshots.directory", constants.DefaultSnapshotDir)
	v.SetDefault("snapshots.databaseURL", "")
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	// An empty component list means the baseline sub-projects.
	if len(configuration.Components) == 0 {
		configuration.Components = Baseline().Components
	}

	return &configuration, nil
}

// Component returns the component with the given name, compared case
// insensitively.
func (c *Configuration) Component(name string) (*Component, error) {
	for i := range c.Components {
		if strings.EqualFold(c.Components[i].Name, name) {
			return &c.Components[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no component named %q", ErrInvalidComponent, name)
}

// ComponentNames lists the component names in configuration order.
func (c *Configuration) ComponentNames() []string {
	names := make([]string, 0, len(c.Components))
	for _, component := range c.Components {
		names = append(names, component.Name)
	}
	return names
}

// ClampAssumptions bounds every component's assumptions to the range the
// engine accepts and returns one warning per adjusted value.
func (c *Configuration) ClampAssumptions() []string {
	processor := configprocessor.NewProcessor()

	var warnings []string
	if c.Common.DiscountRate <= -1 {
		warnings = append(warnings, fmt.Sprintf("Discount rate %.4f raised to 0", c.Common.DiscountRate))
		c.Common.DiscountRate = 0
	}
	if c.Common.FXRate <= 0 {
		warnings = append(warnings, fmt.Sprintf("FX rate %.4f replaced by %.2f", c.Common.FXRate, constants.DefaultFXRate))
		c.Common.FXRate = constants.DefaultFXRate
	}

	for i := range c.Components {
		clamped, componentWarnings := processor.ClampAssumptions(c.Components[i].Name, c.Components[i].Assumptions)
		c.Components[i].Assumptions = clamped
		warnings = append(warnings, componentWarnings...)
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	// Convert config structs to configprocessor format
	var components []configprocessor.ComponentInfo
	for _, component := range c.Components {
		components = append(components, configprocessor.ComponentInfo{
			Name:        component.Name,
			RevenueKind: component.Revenue.Kind,
			RoomShare:   component.Revenue.RoomShare,
			TenorYears:  component.Assumptions.TenorYears,
			GraceYears:  component.Assumptions.GraceYears,
			Capex:       component.Assumptions.CapitalExpenditure,
		})
	}

	// Use the configprocessor for validation
	processor := configprocessor.NewProcessor()
	warnings := processor.ValidateConfiguration(c.Common.DiscountRate, components)

	validator := validation.ConfigValidator{}
	for _, component := range c.Components {
		validator.Components = append(validator.Components, validation.ComponentConfig{
			Name:        component.Name,
			TenorYears:  component.Assumptions.TenorYears,
			Description: component.Description,
		})
	}
	for _, directive := range c.BreakEven {
		validator.BreakEven = append(validator.BreakEven, validation.BreakEvenConfig{
			Component: directive.Component,
			Metric:    CanonicalBreakEvenMetric(directive.Metric),
		})
	}
	return append(warnings, validator.ValidateAll()...)
}
