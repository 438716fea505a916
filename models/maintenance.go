// File: /models/maintenance.go
package models

import (
	"time"
)

type MaintenanceType string

const (
	MaintenanceRefuel     MaintenanceType = "refuel"
	MaintenanceOilChange  MaintenanceType = "oil_change"
	MaintenanceTire       MaintenanceType = "tire"
	MaintenanceBrake      MaintenanceType = "brake"
	MaintenanceChain      MaintenanceType = "chain"
	MaintenanceInspection MaintenanceType = "inspection"
	MaintenanceOther      MaintenanceType = "other"
)

func (t MaintenanceType) IsValid() bool {
	switch t {
	case MaintenanceRefuel, MaintenanceOilChange, MaintenanceTire, MaintenanceBrake,
		MaintenanceChain, MaintenanceInspection, MaintenanceOther:
		return true
	default:
		return false
	}
}

type MaintenanceRecord struct {
	ID           string          `json:"id" gorm:"primaryKey;size:191"`
	UserID       string          `json:"user_id" gorm:"not null;size:191;index:idx_maintenance_user_type_date"`
	MotorcycleID string          `json:"motorcycle_id" gorm:"not null;size:191;index"`
	Type         MaintenanceType `json:"type" gorm:"not null;size:30;index:idx_maintenance_user_type_date"`
	Quantity     *float64        `json:"quantity"` // liters, refuel only
	Cost         float64         `json:"cost" gorm:"not null"`
	Odometer     *float64        `json:"odometer"`
	Distance     *float64        `json:"distance"`
	Location     string          `json:"location" gorm:"size:255"`
	Notes        string          `json:"notes" gorm:"type:text"`
	Date         time.Time       `json:"date" gorm:"not null;index:idx_maintenance_user_type_date"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (MaintenanceRecord) TableName() string {
	return "maintenance_records"
}
