// File: /models/fuel.go
package models

import (
	"time"
)

// FuelLog is a dedicated fuel-purchase entry.
type FuelLog struct {
	ID            string   `json:"id" gorm:"primaryKey;size:191"`
	UserID        string   `json:"user_id" gorm:"not null;size:191;index:idx_fuel_logs_user_date"`
	MotorcycleID  string   `json:"motorcycle_id" gorm:"not null;size:191;index"`
	Liters        float64  `json:"liters" gorm:"not null"`
	PricePerLiter float64  `json:"price_per_liter" gorm:"not null"`
	TotalCost     float64  `json:"total_cost" gorm:"not null"`
	Odometer      *float64 `json:"odometer"` // in km
	// Distance is the km ridden since the previous fill, when known.
	Distance  *float64  `json:"distance"`
	Location  string    `json:"location" gorm:"size:255"`
	Notes     string    `json:"notes" gorm:"type:text"`
	Date      time.Time `json:"date" gorm:"not null;index:idx_fuel_logs_user_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CostTolerance is how far total_cost may drift from liters x price_per_liter.
const CostTolerance = 0.01
