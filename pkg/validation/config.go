// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"
)

// MaxSnapshotNameLength bounds the length of a snapshot name.
const MaxSnapshotNameLength = 64

// ValidateSnapshotName checks that name can key a stored snapshot. Letters,
// digits, '-', '_' and '.' are allowed; the name may not start with '.'.
func ValidateSnapshotName(name string) error {
	if name == "" {
		return fmt.Errorf("snapshot name cannot be empty")
	}
	if len(name) > MaxSnapshotNameLength {
		return fmt.Errorf("snapshot name exceeds %d characters", MaxSnapshotNameLength)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("snapshot name %q cannot start with '.'", name)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return fmt.Errorf("snapshot name %q contains invalid character %q", name, r)
		}
	}
	return nil
}

// ValidateBreakEvenTarget checks that a break-even directive names a
// configured component. Component names compare case-insensitively.
func ValidateBreakEvenTarget(component string, componentNames []string) (string, error) {
	for _, name := range componentNames {
		if strings.EqualFold(name, component) {
			return "", nil
		}
	}
	if component == "" {
		return "", fmt.Errorf("break-even directive is missing a component")
	}
	return fmt.Sprintf("Break-even directive targets unknown component '%s' (known: %s)",
		component, strings.Join(componentNames, ", ")), nil
}

// ConfigValidator validates the parts of a configuration that span
// components and directives.
type ConfigValidator struct {
	Components []ComponentConfig
	BreakEven  []BreakEvenConfig
}

// ComponentConfig is the part of a component the validator inspects.
type ComponentConfig struct {
	Name        string
	TenorYears  int
	Description string
}

// BreakEvenConfig is the part of a break-even directive the validator inspects.
type BreakEvenConfig struct {
	Component string
	Metric    string
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	names := make([]string, 0, len(cv.Components))
	for _, component := range cv.Components {
		names = append(names, component.Name)
	}

	// Check break-even directives point at real components
	seen := make(map[string]bool)
	for i, directive := range cv.BreakEven {
		warning, err := ValidateBreakEvenTarget(directive.Component, names)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Break-even directive %d: %v", i+1, err))
			continue
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}

		key := strings.ToLower(directive.Component) + "/" + directive.Metric
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("Break-even directive for '%s' %s is repeated",
				directive.Component, directive.Metric))
		}
		seen[key] = true
	}

	// Check mixed horizons so the combined view is read correctly
	horizon := 0
	for _, component := range cv.Components {
		if component.TenorYears > horizon {
			horizon = component.TenorYears
		}
	}
	for _, component := range cv.Components {
		if component.TenorYears > 0 && component.TenorYears < horizon {
			warnings = append(warnings, fmt.Sprintf("Component '%s' ends after %d years; the combined view runs %d years and counts it as zero afterwards",
				component.Name, component.TenorYears, horizon))
		}
	}

	return warnings
}
