// File: /models/user.go
package models

import (
	"time"
)

// User is the owning aggregate for trips and motorcycles. Only the counters are
// written by this service; profile fields are managed elsewhere.
type User struct {
	ID            string    `json:"id" gorm:"primaryKey;size:191"`
	Name          string    `json:"name" gorm:"not null;size:255"`
	Handle        string    `json:"handle" gorm:"uniqueIndex;not null;size:50"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	IsAdmin       bool      `json:"is_admin" gorm:"default:false"`
	TotalTrips    int       `json:"total_trips" gorm:"default:0"`
	TotalDistance float64   `json:"total_distance" gorm:"default:0"` // in km
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Motorcycles []Motorcycle `json:"motorcycles,omitempty" gorm:"foreignKey:UserID"`
}
