// Package format renders money, rates and years for display.
package format

import (
	"math"
	"strings"

	"github.com/iwvelando/project-finance/pkg/constants"
	"github.com/shopspring/decimal"
)

// Placeholder is shown in place of a value that has no solution.
const Placeholder = "—"

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	return Money(amount, "$")
}

// Money formats amount with the given symbol, thousands separators and two decimals.
func Money(amount float64, symbol string) string {
	if isNotFinite(amount) {
		return Placeholder
	}
	d := decimal.NewFromFloat(amount)
	formatted := formatPositive(d.Abs(), 2)
	if d.Round(2).IsNegative() {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return Money(amount, "")
}

// Thousands renders amount in whole thousands with a k suffix (e.g., "-$1,235k").
func Thousands(amount float64, symbol string) string {
	if isNotFinite(amount) {
		return Placeholder
	}
	d := decimal.NewFromFloat(amount).Div(decimal.NewFromInt(1000))
	formatted := formatPositive(d.Abs(), 0)
	if d.Round(0).IsNegative() {
		return "-" + symbol + formatted + "k"
	}
	return symbol + formatted + "k"
}

// Percent renders a decimal rate as a percentage with places decimals, or the
// placeholder when the rate has no solution.
func Percent(rate float64, places int32) string {
	if isNotFinite(rate) {
		return Placeholder
	}
	return decimal.NewFromFloat(rate).Mul(decimal.NewFromFloat(constants.PercentageMultiplier)).StringFixed(places) + "%"
}

// Years renders a payback period in years, or the placeholder when it never occurs.
func Years(years float64) string {
	if isNotFinite(years) {
		return Placeholder
	}
	return decimal.NewFromFloat(years).StringFixed(1) + " yrs"
}

func formatPositive(value decimal.Decimal, places int32) string {
	formatted := value.StringFixed(places)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}

func isNotFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
