// File: /models/motorcycle.go
package models

import (
	"time"
)

type Motorcycle struct {
	ID       string `json:"id" gorm:"primaryKey;size:191"`
	UserID   string `json:"user_id" gorm:"not null;size:191;index"`
	Brand    string `json:"brand" gorm:"not null;size:100"`
	Model    string `json:"model" gorm:"not null;size:100"`
	Year     string `json:"year" gorm:"not null;size:4"`
	ImageURL string `json:"image_url" gorm:"size:500"`

	// TankCapacity is in liters; nil means the configured default applies.
	TankCapacity       *float64   `json:"tank_capacity"`
	CurrentFuelLevel   float64    `json:"current_fuel_level" gorm:"default:0"` // percent
	TotalTrips         int        `json:"total_trips" gorm:"default:0"`
	TotalDistance      float64    `json:"total_distance" gorm:"default:0"` // in km
	LastTripDate       *time.Time `json:"last_trip_date"`
	AnalyticsUpdatedAt *time.Time `json:"analytics_updated_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
