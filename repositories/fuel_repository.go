// File: /repositories/fuel_repository.go
package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"motofuel-api/models"
)

// FuelQuery selects refuels for one user inside [From, To]. An empty MotorcycleID
// matches every motorcycle the user owns.
type FuelQuery struct {
	UserID       string
	MotorcycleID string
	From         time.Time
	To           time.Time
}

// FuelRepository reads and writes both refuel sources: dedicated fuel logs and
// maintenance records of type refuel.
type FuelRepository struct {
	db *gorm.DB
}

func NewFuelRepository(db *gorm.DB) *FuelRepository {
	return &FuelRepository{db: db}
}

func (r *FuelRepository) CreateFuelLog(ctx context.Context, log *models.FuelLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *FuelRepository) CreateMaintenance(ctx context.Context, record *models.MaintenanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *FuelRepository) FindFuelLogs(ctx context.Context, q FuelQuery) ([]models.FuelLog, error) {
	var logs []models.FuelLog
	err := r.scope(ctx, q).Order("date DESC").Find(&logs).Error
	return logs, err
}

func (r *FuelRepository) FindMaintenanceRefuels(ctx context.Context, q FuelQuery) ([]models.MaintenanceRecord, error) {
	var records []models.MaintenanceRecord
	err := r.scope(ctx, q).
		Where("type = ?", models.MaintenanceRefuel).
		Order("date DESC").
		Find(&records).Error
	return records, err
}

func (r *FuelRepository) scope(ctx context.Context, q FuelQuery) *gorm.DB {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", q.UserID).
		Where("date BETWEEN ? AND ?", q.From, q.To)
	if q.MotorcycleID != "" {
		query = query.Where("motorcycle_id = ?", q.MotorcycleID)
	}
	return query
}
