// Package charts turns projected series into plotting-friendly rows, one row
// per year starting with the construction year 0.
package charts

import (
	"github.com/iwvelando/project-finance/internal/forecast"
	"github.com/iwvelando/project-finance/pkg/mathutil"
)

// BurnRow shows where operating cash goes each year.
type BurnRow struct {
	Year        int     `json:"year"`
	OPEX        float64 `json:"OPEX"`
	DebtService float64 `json:"DebtService"`
	CFADS       float64 `json:"CFADS"`
}

// RevNetRow compares revenue with what is left after debt service.
type RevNetRow struct {
	Year         int     `json:"year"`
	Revenue      float64 `json:"Revenue"`
	NetAfterDebt float64 `json:"NetAfterDebt"`
}

// CashFlowRow splits the yearly cash flow into its statement sections.
type CashFlowRow struct {
	Year      int     `json:"year"`
	Operating float64 `json:"Operating"`
	Investing float64 `json:"Investing"`
	Financing float64 `json:"Financing"`
	Net       float64 `json:"Net"`
}

// ExpenseRow holds the yearly outflows as negative values.
type ExpenseRow struct {
	Year        int     `json:"year"`
	OPEX        float64 `json:"OPEX"`
	DebtService float64 `json:"DebtService"`
}

// DebtRow holds the balance outstanding at the end of each year.
type DebtRow struct {
	Year      int     `json:"year"`
	Remaining float64 `json:"Remaining"`
}

// Datasets groups the chart series of one component or of the combined view.
type Datasets struct {
	Burn     []BurnRow     `json:"burn"`
	RevNet   []RevNetRow   `json:"revNet"`
	CashFlow []CashFlowRow `json:"cashFlow"`
	Expense  []ExpenseRow  `json:"expense"`
	Debt     []DebtRow     `json:"debt"`
}

// series is the yearly input shared by component and combined datasets.
// Each slice is indexed by year-1.
type series struct {
	capex         float64
	revenue       []float64
	opex          []float64
	debtService   []float64
	remainingDebt []float64
	cfads         []float64
}

// PartDatasets builds the datasets of one component.
func PartDatasets(c forecast.ComponentForecast) Datasets {
	r := c.Result
	n := r.Tenor()
	s := series{
		capex:         r.Capex,
		revenue:       make([]float64, n),
		opex:          r.OperatingCost,
		debtService:   make([]float64, n),
		remainingDebt: make([]float64, n),
		cfads:         r.CFADSBeforeDebt,
	}
	for t := 0; t < n; t++ {
		s.revenue[t] = r.Revenue
		s.debtService[t] = r.DebtService(t + 1)
		if t < len(r.Schedule) {
			s.remainingDebt[t] = r.Schedule[t].RemainingBalance
		}
	}
	return build(n, s)
}

// CombinedDatasets builds the datasets of the combined view.
func CombinedDatasets(c forecast.CombinedForecast) Datasets {
	r := c.Result
	return build(r.Horizon, series{
		capex:         r.TotalCapex,
		revenue:       r.TotalRevenue,
		opex:          r.TotalOperatingCost,
		debtService:   r.TotalDebtService,
		remainingDebt: r.TotalRemainingDebt,
		cfads:         r.TotalCFADSBeforeDebt,
	})
}

// All returns the combined datasets keyed "combined" plus one entry per
// component keyed by its name.
func All(f forecast.Forecast) map[string]Datasets {
	all := make(map[string]Datasets, len(f.Components)+1)
	for _, c := range f.Components {
		all[c.Name] = PartDatasets(c)
	}
	all["combined"] = CombinedDatasets(f.Combined)
	return all
}

func build(n int, s series) Datasets {
	capex := mathutil.Finite(s.capex)
	d := Datasets{
		Burn:     make([]BurnRow, 0, n+1),
		RevNet:   make([]RevNetRow, 0, n+1),
		CashFlow: make([]CashFlowRow, 0, n+1),
		Expense:  make([]ExpenseRow, 0, n+1),
		Debt:     make([]DebtRow, 0, n+1),
	}

	d.Burn = append(d.Burn, BurnRow{Year: 0, CFADS: -capex})
	d.RevNet = append(d.RevNet, RevNetRow{Year: 0, NetAfterDebt: -capex})
	d.CashFlow = append(d.CashFlow, CashFlowRow{Year: 0, Investing: -capex, Net: -capex})
	d.Expense = append(d.Expense, ExpenseRow{Year: 0})
	d.Debt = append(d.Debt, DebtRow{Year: 0})

	for t := 1; t <= n; t++ {
		revenue := mathutil.Finite(mathutil.At(s.revenue, t-1))
		opex := mathutil.Finite(mathutil.At(s.opex, t-1))
		service := mathutil.Finite(mathutil.At(s.debtService, t-1))
		cfads := mathutil.Finite(mathutil.At(s.cfads, t-1))

		d.Burn = append(d.Burn, BurnRow{Year: t, OPEX: -opex, DebtService: -service, CFADS: cfads})
		d.RevNet = append(d.RevNet, RevNetRow{Year: t, Revenue: revenue, NetAfterDebt: cfads - service})
		d.CashFlow = append(d.CashFlow, CashFlowRow{Year: t, Operating: cfads, Financing: -service, Net: cfads - service})
		d.Expense = append(d.Expense, ExpenseRow{Year: t, OPEX: -opex, DebtService: -service})
		d.Debt = append(d.Debt, DebtRow{Year: t, Remaining: mathutil.Finite(mathutil.At(s.remainingDebt, t-1))})
	}

	return d
}

// Convert returns a copy of d with every amount passed through convert, for
// rendering in a display currency.
func (d Datasets) Convert(convert func(float64) float64) Datasets {
	out := Datasets{
		Burn:     make([]BurnRow, len(d.Burn)),
		RevNet:   make([]RevNetRow, len(d.RevNet)),
		CashFlow: make([]CashFlowRow, len(d.CashFlow)),
		Expense:  make([]ExpenseRow, len(d.Expense)),
		Debt:     make([]DebtRow, len(d.Debt)),
	}
	for i, r := range d.Burn {
		out.Burn[i] = BurnRow{Year: r.Year, OPEX: convert(r.OPEX), DebtService: convert(r.DebtService), CFADS: convert(r.CFADS)}
	}
	for i, r := range d.RevNet {
		out.RevNet[i] = RevNetRow{Year: r.Year, Revenue: convert(r.Revenue), NetAfterDebt: convert(r.NetAfterDebt)}
	}
	for i, r := range d.CashFlow {
		out.CashFlow[i] = CashFlowRow{Year: r.Year, Operating: convert(r.Operating), Investing: convert(r.Investing), Financing: convert(r.Financing), Net: convert(r.Net)}
	}
	for i, r := range d.Expense {
		out.Expense[i] = ExpenseRow{Year: r.Year, OPEX: convert(r.OPEX), DebtService: convert(r.DebtService)}
	}
	for i, r := range d.Debt {
		out.Debt[i] = DebtRow{Year: r.Year, Remaining: convert(r.Remaining)}
	}
	return out
}
