// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/iwvelando/project-finance/internal/forecast"
	"github.com/iwvelando/project-finance/pkg/finance"
	"github.com/iwvelando/project-finance/pkg/format"
	"github.com/iwvelando/project-finance/pkg/optimization"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CombinedName labels the portfolio view in tables and exports.
const CombinedName = "combined"

// KPI holds the headline metrics of a component or of the combined view.
// Money is in the display currency. Rates that have no solution are nil.
type KPI struct {
	Name               string   `json:"name"`
	Revenue            float64  `json:"revenue"`
	ReferenceRevenue   *float64 `json:"referenceRevenue,omitempty"`
	Capex              float64  `json:"capex"`
	Equity             float64  `json:"equity"`
	Debt               float64  `json:"debt"`
	ProjectIRR         *float64 `json:"projectIrr"`
	EquityIRRPreTax    *float64 `json:"equityIrrPreTax"`
	EquityIRRPostTax   *float64 `json:"equityIrrPostTax,omitempty"`
	NPV                float64  `json:"npv"`
	EquityNPV          *float64 `json:"equityNpv,omitempty"`
	Payback            *float64 `json:"payback"`
	ReturnOnInvestment *float64 `json:"returnOnInvestment,omitempty"`
}

// Report is the JSON export of a forecast.
type Report struct {
	Currency     string                 `json:"currency"`
	FXRate       float64                `json:"fxRate"`
	DiscountRate float64                `json:"discountRate"`
	Components   []KPI                  `json:"components"`
	Combined     KPI                    `json:"combined"`
	Schedule     []Row                  `json:"schedule"`
	BreakEven    []optimization.Summary `json:"breakEven,omitempty"`
}

// Row is one line of a flattened schedule. Keys keeps the column order.
type Row struct {
	Keys   []string          `json:"-"`
	Values map[string]string `json:"-"`
}

// MarshalJSON writes the row as an object of its values.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Values)
}

func (r *Row) set(key, value string) {
	if r.Values == nil {
		r.Values = make(map[string]string)
	}
	if _, ok := r.Values[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Values[key] = value
}

// Optional returns nil for a value with no solution.
func Optional(v float64) *float64 {
	if finance.IsNotConvertible(v) {
		return nil
	}
	return &v
}

// KPIs returns the component KPIs followed by the combined KPI.
func KPIs(f forecast.Forecast, fx format.FXPresenter) ([]KPI, KPI) {
	components := make([]KPI, 0, len(f.Components))
	for _, c := range f.Components {
		r := c.Result
		kpi := KPI{
			Name:             c.Name,
			Revenue:          fx.Convert(r.Revenue),
			Capex:            fx.Convert(r.Capex),
			Equity:           fx.Convert(r.Equity),
			Debt:             fx.Convert(r.Debt),
			ProjectIRR:       Optional(r.ProjectIRR),
			EquityIRRPreTax:  Optional(r.EquityIRRPreTax),
			EquityIRRPostTax: Optional(r.EquityIRRPostTax),
			NPV:              fx.Convert(c.NPV),
			Payback:          Optional(c.Payback),
		}
		if c.ReferenceRevenue != nil {
			reference := fx.Convert(*c.ReferenceRevenue)
			kpi.ReferenceRevenue = &reference
		}
		components = append(components, kpi)
	}

	r := f.Combined.Result
	revenue := 0.0
	if len(r.TotalRevenue) > 0 {
		revenue = r.TotalRevenue[0]
	}
	combined := KPI{
		Name:               CombinedName,
		Revenue:            fx.Convert(revenue),
		Capex:              fx.Convert(r.TotalCapex),
		Equity:             fx.Convert(r.TotalEquity),
		Debt:               fx.Convert(r.TotalCapex - r.TotalEquity),
		ProjectIRR:         Optional(r.ProjectIRR),
		EquityIRRPreTax:    Optional(r.EquityIRR),
		NPV:                fx.Convert(f.Combined.NPV),
		EquityNPV:          Optional(fx.Convert(f.Combined.EquityNPV)),
		Payback:            Optional(f.Combined.Payback),
		ReturnOnInvestment: Optional(r.ReturnOnInvestment),
	}

	return components, combined
}

// ScheduleRows flattens every component and the combined view into one row
// per operating year.
func ScheduleRows(f forecast.Forecast, fx format.FXPresenter) []Row {
	money := func(v float64) string {
		return strconv.FormatFloat(fx.Convert(v), 'f', 2, 64)
	}

	var rows []Row
	for _, c := range f.Components {
		r := c.Result
		for t := 0; t < r.Tenor(); t++ {
			year := t + 1
			var row Row
			row.set("component", c.Name)
			row.set("year", f.YearLabel(year))
			row.set("revenue", money(r.Revenue))
			row.set("opex", money(r.OperatingCost[t]))
			row.set("cfads", money(r.CFADSBeforeDebt[t]))
			interest, principal, remaining := 0.0, 0.0, 0.0
			if t < len(r.Schedule) {
				interest = r.Schedule[t].Interest
				principal = r.Schedule[t].PrincipalRepaid
				remaining = r.Schedule[t].RemainingBalance
			}
			row.set("interest", money(interest))
			row.set("principal", money(principal))
			row.set("debtService", money(r.DebtService(year)))
			row.set("cfadsAfterDebt", money(r.CFADSAfterDebt[t]))
			row.set("tax", money(r.Tax[t]))
			row.set("remainingDebt", money(remaining))
			rows = append(rows, row)
		}
	}

	r := f.Combined.Result
	for t := 0; t < r.Horizon; t++ {
		var row Row
		row.set("component", CombinedName)
		row.set("year", f.YearLabel(t+1))
		row.set("revenue", money(r.TotalRevenue[t]))
		row.set("opex", money(r.TotalOperatingCost[t]))
		row.set("cfads", money(r.TotalCFADSBeforeDebt[t]))
		row.set("debtService", money(r.TotalDebtService[t]))
		row.set("cfadsAfterDebt", money(r.TotalCFADSAfterDebt[t]))
		row.set("remainingDebt", money(r.TotalRemainingDebt[t]))
		rows = append(rows, row)
	}

	return rows
}

// CsvString renders rows as CSV. The header is the union of row keys in the
// order they are first seen; a missing key is written as an empty cell.
func CsvString(rows []Row) (string, error) {
	var header []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, key := range row.Keys {
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, row := range rows {
		record := make([]string, len(header))
		for i, key := range header {
			record[i] = row.Values[key]
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.String(), nil
}

// CsvFormat outputs the flattened schedule in comma-separated value format.
func CsvFormat(f forecast.Forecast, fx format.FXPresenter) error {
	return WriteCSV(os.Stdout, f, fx)
}

// WriteCSV writes the flattened schedule to w.
func WriteCSV(w io.Writer, f forecast.Forecast, fx format.FXPresenter) error {
	s, err := CsvString(ScheduleRows(f, fx))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, s)
	return err
}

// NewReport assembles the JSON export of a forecast.
func NewReport(f forecast.Forecast, fx format.FXPresenter, summaries []optimization.Summary) Report {
	components, combined := KPIs(f, fx)
	return Report{
		Currency:     fx.Currency(),
		FXRate:       fx.Rate(),
		DiscountRate: f.DiscountRate,
		Components:   components,
		Combined:     combined,
		Schedule:     ScheduleRows(f, fx),
		BreakEven:    summaries,
	}
}

// JSONFormat outputs the forecast report as indented JSON.
func JSONFormat(f forecast.Forecast, fx format.FXPresenter, summaries []optimization.Summary) error {
	return WriteJSON(os.Stdout, f, fx, summaries)
}

// WriteJSON writes the forecast report to w.
func WriteJSON(w io.Writer, f forecast.Forecast, fx format.FXPresenter, summaries []optimization.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReport(f, fx, summaries))
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(f forecast.Forecast, fx format.FXPresenter, summaries []optimization.Summary) {
	WritePretty(os.Stdout, f, fx, summaries)
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			MarginRight(1)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// WritePretty writes the KPI cards, the per-year tables and any break-even
// summaries to w.
func WritePretty(w io.Writer, f forecast.Forecast, fx format.FXPresenter, summaries []optimization.Summary) {
	p := message.NewPrinter(language.English)

	cards := make([]string, 0, len(f.Components)+1)
	for _, c := range f.Components {
		r := c.Result
		lines := titleStyle.Render(c.Name) + "\n" +
			fmt.Sprintf("Revenue    %s\n", fx.Thousands(r.Revenue))
		if c.ReferenceRevenue != nil {
			lines += fmt.Sprintf("Reference  %s\n", fx.Thousands(*c.ReferenceRevenue))
		}
		lines += fmt.Sprintf("Capex      %s\n", fx.Thousands(r.Capex)) +
			fmt.Sprintf("Project    %s\n", format.Percent(r.ProjectIRR, 1)) +
			fmt.Sprintf("Equity     %s\n", format.Percent(r.EquityIRRPreTax, 1)) +
			fmt.Sprintf("Equity AT  %s\n", format.Percent(r.EquityIRRPostTax, 1)) +
			fmt.Sprintf("NPV        %s\n", fx.Thousands(c.NPV)) +
			fmt.Sprintf("Payback    %s", format.Years(c.Payback))
		cards = append(cards, cardStyle.Render(lines))
	}
	cr := f.Combined.Result
	combinedLines := titleStyle.Render("Combined") + "\n" +
		fmt.Sprintf("Capex      %s\n", fx.Thousands(cr.TotalCapex)) +
		fmt.Sprintf("Equity     %s\n", fx.Thousands(cr.TotalEquity)) +
		fmt.Sprintf("Project    %s\n", format.Percent(cr.ProjectIRR, 1)) +
		fmt.Sprintf("Equity IRR %s\n", format.Percent(cr.EquityIRR, 1)) +
		fmt.Sprintf("NPV        %s\n", fx.Thousands(f.Combined.NPV)) +
		fmt.Sprintf("Payback    %s\n", format.Years(f.Combined.Payback)) +
		fmt.Sprintf("ROI        %s", format.Percent(cr.ReturnOnInvestment, 1))
	cards = append(cards, cardStyle.Render(combinedLines))

	_, _ = fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	_, _ = fmt.Fprintf(w, "Amounts in %s, discount rate %s\n\n", fx.Currency(), format.Percent(f.DiscountRate, 1))

	for _, c := range f.Components {
		r := c.Result
		_, _ = fmt.Fprintf(w, "--- Results for component %s ---\n", c.Name)
		_, _ = fmt.Fprintf(w, "Year | Revenue | OPEX | CFADS | Debt Service | After Debt | Tax\n")
		_, _ = fmt.Fprintf(w, "____ | _______ | ____ | _____ | ____________ | __________ | ___\n")
		for t := 0; t < r.Tenor(); t++ {
			_, _ = p.Fprintf(w, "%s | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f\n",
				f.YearLabel(t+1),
				fx.Convert(r.Revenue),
				fx.Convert(r.OperatingCost[t]),
				fx.Convert(r.CFADSBeforeDebt[t]),
				fx.Convert(r.DebtService(t+1)),
				fx.Convert(r.CFADSAfterDebt[t]),
				fx.Convert(r.Tax[t]),
			)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "--- Results for combined view ---\n")
	_, _ = fmt.Fprintf(w, "Year | Revenue | CFADS | Debt Service | After Debt | Remaining Debt\n")
	_, _ = fmt.Fprintf(w, "____ | _______ | _____ | ____________ | __________ | ______________\n")
	for t := 0; t < cr.Horizon; t++ {
		_, _ = p.Fprintf(w, "%s | %.2f | %.2f | %.2f | %.2f | %.2f\n",
			f.YearLabel(t+1),
			fx.Convert(cr.TotalRevenue[t]),
			fx.Convert(cr.TotalCFADSBeforeDebt[t]),
			fx.Convert(cr.TotalDebtService[t]),
			fx.Convert(cr.TotalCFADSAfterDebt[t]),
			fx.Convert(cr.TotalRemainingDebt[t]),
		)
	}

	if len(summaries) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	WriteBreakEven(w, fx, summaries)
}

// WriteBreakEven writes one line per break-even summary, followed by its notes.
func WriteBreakEven(w io.Writer, fx format.FXPresenter, summaries []optimization.Summary) {
	_, _ = fmt.Fprintf(w, "--- Break-even revenue ---\n")
	for _, s := range summaries {
		status := "converged"
		if !s.Converged {
			status = "not converged"
		}
		_, _ = fmt.Fprintf(w, "%s %s IRR %s: revenue %s (current %s, headroom %s), tariff %s per %s, %d iterations, %s\n",
			s.Component, s.Metric, format.Percent(s.Target, 2),
			fx.Money(s.Value), fx.Money(s.Original), fx.Money(s.Headroom),
			fx.Money(s.UnitTariff), s.Unit, s.Iterations, status)
		for _, note := range s.Notes {
			_, _ = fmt.Fprintf(w, "  %s\n", note)
		}
	}
}
