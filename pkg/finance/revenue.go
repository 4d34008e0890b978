package finance

import "github.com/iwvelando/project-finance/pkg/constants"

// RevenueKind tags the driver that produces a component's revenue.
type RevenueKind string

const (
	// RevenueRoomFee is a share of the per-room-night fee pool.
	RevenueRoomFee RevenueKind = "room_fee"
	// RevenuePowerSale is a room-fee share plus electricity sales.
	RevenuePowerSale RevenueKind = "power_sale"
	// RevenueWastewaterTariff is a volumetric wastewater tariff.
	RevenueWastewaterTariff RevenueKind = "wastewater_tariff"
	// RevenueFixed is an annual figure supplied directly by the caller.
	RevenueFixed RevenueKind = "fixed"
)

// RevenueDriver computes the flat annual revenue of one component. Revenue is
// fixed for the whole projection and does not escalate.
type RevenueDriver interface {
	Kind() RevenueKind
	AnnualRevenue() float64
}

// RoomFeeDriver allocates a share of the fee collected per occupied room per day.
type RoomFeeDriver struct {
	OccupiedRooms  float64 `json:"occupiedRooms" yaml:"occupiedRooms"`
	RatePerRoomDay float64 `json:"ratePerRoomDay" yaml:"ratePerRoomDay"`
	Share          float64 `json:"share" yaml:"share"`
	DaysPerYear    int     `json:"daysPerYear,omitempty" yaml:"daysPerYear,omitempty"`
}

// Kind implements RevenueDriver.
func (d RoomFeeDriver) Kind() RevenueKind { return RevenueRoomFee }

// GrossPool is the fee collected across all rooms in a year before the split.
func (d RoomFeeDriver) GrossPool() float64 {
	return d.OccupiedRooms * d.RatePerRoomDay * float64(daysOrDefault(d.DaysPerYear))
}

// RoomDays is the number of occupied room-days attributed to this share.
func (d RoomFeeDriver) RoomDays() float64 {
	return d.OccupiedRooms * float64(daysOrDefault(d.DaysPerYear)) * d.Share
}

// AnnualRevenue implements RevenueDriver.
func (d RoomFeeDriver) AnnualRevenue() float64 {
	return d.GrossPool() * d.Share
}

// PowerSaleDriver combines a room-fee share with electricity sold at a flat
// tariff from the installed capacity running all year.
type PowerSaleDriver struct {
	RoomFee      RoomFeeDriver `json:"roomFee" yaml:"roomFee"`
	CapacityMW   float64       `json:"capacityMW" yaml:"capacityMW"`
	TariffPerKWh float64       `json:"tariffPerKWh" yaml:"tariffPerKWh"`
	HoursPerYear int           `json:"hoursPerYear,omitempty" yaml:"hoursPerYear,omitempty"`
}

// Kind implements RevenueDriver.
func (d PowerSaleDriver) Kind() RevenueKind { return RevenuePowerSale }

// EnergyKWh is the electricity sold in a year.
func (d PowerSaleDriver) EnergyKWh() float64 {
	hours := d.HoursPerYear
	if hours <= 0 {
		hours = constants.HoursPerYear
	}
	return d.CapacityMW * constants.KWPerMW * float64(hours)
}

// PowerRevenue is the electricity part of the revenue.
func (d PowerSaleDriver) PowerRevenue() float64 {
	return d.EnergyKWh() * d.TariffPerKWh
}

// AnnualRevenue implements RevenueDriver.
func (d PowerSaleDriver) AnnualRevenue() float64 {
	return d.RoomFee.AnnualRevenue() + d.PowerRevenue()
}

// WastewaterTariffDriver charges a tariff per cubic metre of treated flow.
// ReferenceTariffPerM3 is the tariff in force today and is reported for
// comparison only.
type WastewaterTariffDriver struct {
	FlowM3PerDay         float64 `json:"flowM3PerDay" yaml:"flowM3PerDay"`
	TariffPerM3          float64 `json:"tariffPerM3" yaml:"tariffPerM3"`
	ReferenceTariffPerM3 float64 `json:"referenceTariffPerM3,omitempty" yaml:"referenceTariffPerM3,omitempty"`
	DaysPerYear          int     `json:"daysPerYear,omitempty" yaml:"daysPerYear,omitempty"`
}

// Kind implements RevenueDriver.
func (d WastewaterTariffDriver) Kind() RevenueKind { return RevenueWastewaterTariff }

// AnnualVolumeM3 is the treated volume in a year.
func (d WastewaterTariffDriver) AnnualVolumeM3() float64 {
	return d.FlowM3PerDay * float64(daysOrDefault(d.DaysPerYear))
}

// AnnualRevenue implements RevenueDriver.
func (d WastewaterTariffDriver) AnnualRevenue() float64 {
	return d.AnnualVolumeM3() * d.TariffPerM3
}

// ReferenceRevenue is the revenue the reference tariff would raise.
func (d WastewaterTariffDriver) ReferenceRevenue() float64 {
	return d.AnnualVolumeM3() * d.ReferenceTariffPerM3
}

// FixedRevenue is a driver for a revenue figure supplied directly.
type FixedRevenue float64

// Kind implements RevenueDriver.
func (f FixedRevenue) Kind() RevenueKind { return RevenueFixed }

// AnnualRevenue implements RevenueDriver.
func (f FixedRevenue) AnnualRevenue() float64 { return float64(f) }

func daysOrDefault(days int) int {
	if days <= 0 {
		return constants.DaysPerYear
	}
	return days
}
