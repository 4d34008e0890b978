package format

import (
	"fmt"
	"strings"

	"github.com/iwvelando/project-finance/pkg/constants"
	"github.com/shopspring/decimal"
)

// FXPresenter converts base-currency (USD) amounts into the display currency.
// It only affects rendering; converted values never feed back into a
// computation.
type FXPresenter struct {
	currency string
	rate     decimal.Decimal
}

// NewFXPresenter returns a presenter for currency. mxnPerUSD is only read
// when currency is MXN and must then be positive.
func NewFXPresenter(currency string, mxnPerUSD float64) (FXPresenter, error) {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "", constants.CurrencyUSD:
		return FXPresenter{currency: constants.CurrencyUSD, rate: decimal.NewFromInt(1)}, nil
	case constants.CurrencyMXN:
		if mxnPerUSD <= 0 {
			return FXPresenter{}, fmt.Errorf("fx rate must be positive, got %.4f", mxnPerUSD)
		}
		return FXPresenter{currency: constants.CurrencyMXN, rate: decimal.NewFromFloat(mxnPerUSD)}, nil
	default:
		return FXPresenter{}, fmt.Errorf("unsupported display currency %q", currency)
	}
}

// Currency is the ISO code of the display currency.
func (p FXPresenter) Currency() string {
	if p.currency == "" {
		return constants.CurrencyUSD
	}
	return p.currency
}

// Rate is the number of display units per USD.
func (p FXPresenter) Rate() float64 {
	if p.rate.IsZero() {
		return 1
	}
	return p.rate.InexactFloat64()
}

// Convert multiplies a USD amount by the rate, rounded to cents.
func (p FXPresenter) Convert(usd float64) float64 {
	if isNotFinite(usd) {
		return usd
	}
	return p.convert(usd).Round(2).InexactFloat64()
}

// Money renders a USD amount in the display currency.
func (p FXPresenter) Money(usd float64) string {
	if isNotFinite(usd) {
		return Placeholder
	}
	return Money(p.convert(usd).InexactFloat64(), p.symbol())
}

// Thousands renders a USD amount in the display currency in thousands.
func (p FXPresenter) Thousands(usd float64) string {
	if isNotFinite(usd) {
		return Placeholder
	}
	return Thousands(p.convert(usd).InexactFloat64(), p.symbol())
}

func (p FXPresenter) convert(usd float64) decimal.Decimal {
	if p.rate.IsZero() {
		return decimal.NewFromFloat(usd)
	}
	return decimal.NewFromFloat(usd).Mul(p.rate)
}

func (p FXPresenter) symbol() string {
	if p.Currency() == constants.CurrencyMXN {
		return "MX$"
	}
	return "$"
}
