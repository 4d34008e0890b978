// Package loans provides debt amortization utilities.
package loans

import (
	"math"

	"github.com/iwvelando/project-finance/pkg/mathutil"
	"go.uber.org/zap"
)

// ScheduleRow holds the debt service for a given year of the loan.
type ScheduleRow struct {
	Year             int     `json:"year"`
	Interest         float64 `json:"interest"`
	PrincipalRepaid  float64 `json:"principalRepaid"`
	RemainingBalance float64 `json:"remainingBalance"`
	TotalService     float64 `json:"totalService"`
	InterestOnly     bool    `json:"interestOnly,omitempty"`
}

// CalculateAnnualPayment calculates the level annual payment that retires
// principal over years at the given annual rate using the standard
// amortization formula.
func CalculateAnnualPayment(principal, annualRate float64, years int) float64 {
	if years <= 0 || principal <= 0 {
		return 0
	}
	if annualRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(years)
	}

	power := math.Pow(1+annualRate, float64(years))
	return principal * annualRate * power / (power - 1)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualRate float64) float64 {
	return remainingPrincipal * annualRate
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// BuildSchedule creates a year-indexed schedule with a no-op logger.
func BuildSchedule(principal, annualRate float64, tenorYears, graceYears int) []ScheduleRow {
	return NewAmortizationScheduleGenerator(nil).GenerateSchedule(principal, annualRate, tenorYears, graceYears)
}

// GenerateSchedule creates a complete amortization schedule of tenorYears rows.
// The first graceYears rows pay interest only; the balance entering the
// amortizing period is then retired with a level annual payment.
func (g *AmortizationScheduleGenerator) GenerateSchedule(principal, annualRate float64, tenorYears, graceYears int) []ScheduleRow {
	if tenorYears < 1 {
		return nil
	}
	graceYears = mathutil.ClampInt(graceYears, 0, tenorYears)

	schedule := make([]ScheduleRow, 0, tenorYears)
	if principal <= 0 {
		for year := 1; year <= tenorYears; year++ {
			schedule = append(schedule, ScheduleRow{Year: year})
		}
		return schedule
	}

	balance := principal
	for year := 1; year <= graceYears; year++ {
		interest := CalculateInterestPayment(balance, annualRate)
		schedule = append(schedule, ScheduleRow{
			Year:             year,
			Interest:         interest,
			RemainingBalance: balance,
			TotalService:     interest,
			InterestOnly:     true,
		})
	}

	amortizingYears := tenorYears - graceYears
	if amortizingYears == 0 {
		g.logger.Debug("grace period covers the whole tenor, principal is not repaid inside the schedule",
			zap.String("op", "loans.GenerateSchedule"),
			zap.Float64("principal", principal),
			zap.Int("tenorYears", tenorYears),
		)
		return schedule
	}

	payment := CalculateAnnualPayment(balance, annualRate, amortizingYears)
	for year := graceYears + 1; year <= tenorYears; year++ {
		interest := CalculateInterestPayment(balance, annualRate)
		principalRepaid := math.Max(0, payment-interest)

		if year == tenorYears && mathutil.IsZero(balance-principalRepaid) {
			// We will get machine error otherwise so retire the residual exactly.
			principalRepaid = balance
		}
		balance = math.Max(0, balance-principalRepaid)

		schedule = append(schedule, ScheduleRow{
			Year:             year,
			Interest:         interest,
			PrincipalRepaid:  principalRepaid,
			RemainingBalance: balance,
			TotalService:     interest + principalRepaid,
		})
	}

	g.logger.Debug("generated amortization schedule",
		zap.String("op", "loans.GenerateSchedule"),
		zap.Float64("principal", principal),
		zap.Float64("annualPayment", payment),
		zap.Int("graceYears", graceYears),
		zap.Int("amortizingYears", amortizingYears),
	)

	return schedule
}

// TotalService returns the debt service due in year (1-based), or 0 outside
// the schedule.
func TotalService(schedule []ScheduleRow, year int) float64 {
	if year < 1 || year > len(schedule) {
		return 0
	}
	return schedule[year-1].TotalService
}

// RemainingBalance returns the balance outstanding after year (1-based), or 0
// outside the schedule.
func RemainingBalance(schedule []ScheduleRow, year int) float64 {
	if year < 1 || year > len(schedule) {
		return 0
	}
	return schedule[year-1].RemainingBalance
}
