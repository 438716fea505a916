// File: /repositories/motorcycle_repository.go
package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"motofuel-api/models"
)

type MotorcycleRepository struct {
	db *gorm.DB
}

func NewMotorcycleRepository(db *gorm.DB) *MotorcycleRepository {
	return &MotorcycleRepository{db: db}
}

func (r *MotorcycleRepository) FindByID(ctx context.Context, id string) (*models.Motorcycle, error) {
	var motorcycle models.Motorcycle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&motorcycle).Error; err != nil {
		return nil, err
	}
	return &motorcycle, nil
}

func (r *MotorcycleRepository) UpdateFuelLevel(ctx context.Context, id string, level float64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Motorcycle{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_fuel_level":   level,
			"analytics_updated_at": at,
		}).Error
}

// IncrementTripCounters adds one trip and distance km to the motorcycle in a
// single UPDATE.
func (r *MotorcycleRepository) IncrementTripCounters(ctx context.Context, id string, distance float64, lastTrip time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Motorcycle{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_trips":          gorm.Expr("total_trips + ?", 1),
			"total_distance":       gorm.Expr("total_distance + ?", distance),
			"last_trip_date":       lastTrip,
			"analytics_updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
