package adapters

import (
	"fmt"
	"strings"

	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/pkg/finance"
)

// RevenueDriver builds the finance.RevenueDriver described by revenue. Room
// fee drivers draw on the shared room pool in common.
func RevenueDriver(common config.Common, revenue config.Revenue) (finance.RevenueDriver, error) {
	rooms := finance.RoomFeeDriver{
		OccupiedRooms:  common.OccupiedRooms,
		RatePerRoomDay: common.RatePerRoomDay,
		Share:          revenue.RoomShare,
	}

	switch finance.RevenueKind(strings.TrimSpace(revenue.Kind)) {
	case finance.RevenueRoomFee:
		return rooms, nil
	case finance.RevenuePowerSale:
		return finance.PowerSaleDriver{
			RoomFee:      rooms,
			CapacityMW:   revenue.CapacityMW,
			TariffPerKWh: revenue.TariffPerKWh,
		}, nil
	case finance.RevenueWastewaterTariff:
		return finance.WastewaterTariffDriver{
			FlowM3PerDay:         revenue.FlowM3PerDay,
			TariffPerM3:          revenue.TariffPerM3,
			ReferenceTariffPerM3: revenue.ReferenceTariffPerM3,
		}, nil
	case finance.RevenueFixed:
		return finance.FixedRevenue(revenue.Annual), nil
	default:
		return nil, fmt.Errorf("%w: unknown revenue kind %q", config.ErrInvalidComponent, revenue.Kind)
	}
}

// UnitTariff converts an annual revenue for driver into the equivalent
// price per unit it sells: per room-day, per kWh or per m3. The room-fee part
// of a power sale is held fixed. The second result is the unit label.
func UnitTariff(driver finance.RevenueDriver, annualRevenue float64) (float64, string) {
	switch d := driver.(type) {
	case finance.RoomFeeDriver:
		if roomDays := d.RoomDays(); roomDays > 0 {
			return annualRevenue / roomDays, "room-day"
		}
		return 0, "room-day"
	case finance.PowerSaleDriver:
		if energy := d.EnergyKWh(); energy > 0 {
			return (annualRevenue - d.RoomFee.AnnualRevenue()) / energy, "kWh"
		}
		return 0, "kWh"
	case finance.WastewaterTariffDriver:
		if volume := d.AnnualVolumeM3(); volume > 0 {
			return annualRevenue / volume, "m3"
		}
		return 0, "m3"
	default:
		return annualRevenue, "year"
	}
}
