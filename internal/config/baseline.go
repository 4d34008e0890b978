package config

import (
	"github.com/iwvelando/project-finance/pkg/constants"
	"github.com/iwvelando/project-finance/pkg/finance"
)

// Revenue kinds accepted in Revenue.Kind.
const (
	RevenueKindRoomFee          = string(finance.RevenueRoomFee)
	RevenueKindPowerSale        = string(finance.RevenuePowerSale)
	RevenueKindWastewaterTariff = string(finance.RevenueWastewaterTariff)
	RevenueKindFixed            = string(finance.RevenueFixed)
)

// Baseline returns the reference assumptions for the three sub-projects: A
// is funded from its share of the room fee, B from the remaining share plus
// power sales and C from a wastewater tariff.
func Baseline() Configuration {
	base := func(capex, opex float64, depreciationYears int) finance.AssumptionSet {
		return finance.AssumptionSet{
			CapitalExpenditure: capex,
			EquityFraction:     0.30,
			InterestRate:       0.12,
			TenorYears:         10,
			GraceYears:         0,
			OperatingCostBase:  opex,
			EscalationRate:     0.04,
			DepreciationYears:  depreciationYears,
			TaxRate:            0.25,
		}
	}

	return Configuration{
		Common: Common{
			DiscountRate:   0.10,
			FXRate:         constants.DefaultFXRate,
			OccupiedRooms:  25000,
			RatePerRoomDay: 5.7,
		},
		Components: []Component{
			{
				Name:        "A",
				Description: "Room-fee funded works",
				Assumptions: base(18_000_000, 1_500_000, 10),
				Revenue:     Revenue{Kind: RevenueKindRoomFee, RoomShare: 0.55},
			},
			{
				Name:        "B",
				Description: "Power generation",
				Assumptions: base(22_000_000, 1_800_000, 10),
				Revenue: Revenue{
					Kind:         RevenueKindPowerSale,
					RoomShare:    0.45,
					CapacityMW:   6,
					TariffPerKWh: 0.12,
				},
			},
			{
				Name:        "C",
				Description: "Wastewater treatment",
				Assumptions: base(54_444_444, 3_333_333, 15),
				Revenue: Revenue{
					Kind:                 RevenueKindWastewaterTariff,
					FlowM3PerDay:         47000,
					TariffPerM3:          0.80,
					ReferenceTariffPerM3: 0.083,
				},
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Output:  OutputConfig{Format: constants.OutputFormatPretty, Currency: constants.CurrencyUSD},
		Snapshots: SnapshotConfig{
			Backend:   "file",
			Directory: constants.DefaultSnapshotDir,
		},
	}
}
