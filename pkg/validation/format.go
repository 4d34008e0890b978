// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/project-finance/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateCurrency checks that currency is a supported display currency. An
// empty value means USD.
func ValidateCurrency(currency string) error {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "", constants.CurrencyUSD, constants.CurrencyMXN:
		return nil
	}
	return fmt.Errorf("expected currency of %s or %s, got %s",
		constants.CurrencyUSD, constants.CurrencyMXN, currency)
}
