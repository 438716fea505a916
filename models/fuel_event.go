// File: /models/fuel_event.go
package models

import (
	"time"
)

type FuelEventSource string

const (
	SourceFuelLog     FuelEventSource = "fuel_log"
	SourceMaintenance FuelEventSource = "maintenance"
)

// Rank orders sources for events sharing a timestamp: fuel logs first.
func (s FuelEventSource) Rank() int {
	if s == SourceFuelLog {
		return 0
	}
	return 1
}

// UnifiedFuelEvent is one refuel from either source. Exactly one of FuelLog or
// Maintenance is set, matching Source. It is built per request and never stored.
type UnifiedFuelEvent struct {
	ID            string          `json:"id"`
	Source        FuelEventSource `json:"source"`
	Date          time.Time       `json:"date"`
	Liters        float64         `json:"liters"`
	PricePerLiter float64         `json:"price_per_liter"`
	TotalCost     float64         `json:"total_cost"`
	MotorcycleID  string          `json:"motorcycle_id"`
	Location      string          `json:"location,omitempty"`
	Distance      *float64        `json:"distance,omitempty"`

	FuelLog     *FuelLog           `json:"-"`
	Maintenance *MaintenanceRecord `json:"-"`
}

// EventFromFuelLog normalizes a dedicated fuel log.
func EventFromFuelLog(l *FuelLog) UnifiedFuelEvent {
	return UnifiedFuelEvent{
		ID:            l.ID,
		Source:        SourceFuelLog,
		Date:          l.Date,
		Liters:        l.Liters,
		PricePerLiter: l.PricePerLiter,
		TotalCost:     l.TotalCost,
		MotorcycleID:  l.MotorcycleID,
		Location:      l.Location,
		Distance:      l.Distance,
		FuelLog:       l,
	}
}

// EventFromMaintenance normalizes a maintenance refuel. The price per liter is
// derived from cost and quantity since maintenance records only carry a total.
func EventFromMaintenance(m *MaintenanceRecord) UnifiedFuelEvent {
	var liters, price float64
	if m.Quantity != nil {
		liters = *m.Quantity
	}
	if liters > 0 {
		price = m.Cost / liters
	}
	return UnifiedFuelEvent{
		ID:            m.ID,
		Source:        SourceMaintenance,
		Date:          m.Date,
		Liters:        liters,
		PricePerLiter: price,
		TotalCost:     m.Cost,
		MotorcycleID:  m.MotorcycleID,
		Location:      m.Location,
		Distance:      m.Distance,
		Maintenance:   m,
	}
}
