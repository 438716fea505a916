// File: /models/trip.go
package models

import (
	"time"
)

type TripStatus string

const (
	TripStatusPlanned    TripStatus = "planned"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
	TripStatusFailed     TripStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s TripStatus) IsTerminal() bool {
	switch s {
	case TripStatusCompleted, TripStatusCancelled, TripStatusFailed:
		return true
	default:
		return false
	}
}

func (s TripStatus) IsValid() bool {
	switch s {
	case TripStatusPlanned, TripStatusInProgress, TripStatusCompleted, TripStatusCancelled, TripStatusFailed:
		return true
	default:
		return false
	}
}

type TripRecord struct {
	ID           string  `json:"id" gorm:"primaryKey;size:191"`
	UserID       string  `json:"user_id" gorm:"not null;size:191;index:idx_trips_user_status"`
	MotorcycleID *string `json:"motorcycle_id" gorm:"size:191;index"`
	Destination  string  `json:"destination" gorm:"not null;size:255"`

	// Planned
	EstimatedDistance float64    `json:"estimated_distance"` // in km
	EstimatedFuelMin  float64    `json:"estimated_fuel_min"` // in liters
	EstimatedFuelMax  float64    `json:"estimated_fuel_max"`
	ETA               *time.Time `json:"eta"`
	PlannedRoute      string     `json:"planned_route" gorm:"type:text"`

	// Actual
	ActualDistance float64 `json:"actual_distance"` // in km
	ActualFuelMin  float64 `json:"actual_fuel_min"`
	ActualFuelMax  float64 `json:"actual_fuel_max"`
	ActualRoute    string  `json:"actual_route" gorm:"type:text"`
	Duration       int     `json:"duration"`      // in minutes
	AverageSpeed   float64 `json:"average_speed"` // in km/h
	MaxSpeed       float64 `json:"max_speed"`     // in km/h
	WasRerouted    bool    `json:"was_rerouted" gorm:"default:false"`
	RerouteCount   int     `json:"reroute_count" gorm:"default:0"`

	StartLatitude  *float64 `json:"start_latitude"`
	StartLongitude *float64 `json:"start_longitude"`
	StartAddress   string   `json:"start_address" gorm:"size:500"`
	EndLatitude    *float64 `json:"end_latitude"`
	EndLongitude   *float64 `json:"end_longitude"`
	EndAddress     string   `json:"end_address" gorm:"size:500"`

	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	Status        TripStatus `json:"status" gorm:"not null;size:20;default:'planned';index:idx_trips_user_status"`
	FailureReason string     `json:"failure_reason,omitempty" gorm:"size:500"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	RoutePoints []TripRoutePoint `json:"route_points,omitempty" gorm:"foreignKey:TripID"`
	Expenses    []TripExpense    `json:"expenses,omitempty" gorm:"foreignKey:TripID"`
}

func (TripRecord) TableName() string {
	return "trips"
}

type TripRoutePoint struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TripID    string    `json:"trip_id" gorm:"not null;size:191;index"`
	Latitude  float64   `json:"latitude" gorm:"not null"`
	Longitude float64   `json:"longitude" gorm:"not null"`
	Altitude  *float64  `json:"altitude"`
	Speed     *float64  `json:"speed"`
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
}

type TripExpense struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TripID      string    `json:"trip_id" gorm:"not null;size:191;index"`
	Type        string    `json:"type" gorm:"not null;size:50"` // "fuel", "toll", "parking", "food", "other"
	Amount      float64   `json:"amount" gorm:"not null"`
	Description string    `json:"description" gorm:"size:500"`
	Location    string    `json:"location" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
}

// FinalStats carries the optional actual values reported when a trip is completed.
// Nil fields leave the stored value untouched.
type FinalStats struct {
	ActualDistance *float64 `json:"actual_distance"`
	ActualFuelMin  *float64 `json:"actual_fuel_min"`
	ActualFuelMax  *float64 `json:"actual_fuel_max"`
	ActualRoute    *string  `json:"actual_route"`
	AverageSpeed   *float64 `json:"average_speed"`
	MaxSpeed       *float64 `json:"max_speed"`
	EndLatitude    *float64 `json:"end_latitude"`
	EndLongitude   *float64 `json:"end_longitude"`
	EndAddress     *string  `json:"end_address"`
}
