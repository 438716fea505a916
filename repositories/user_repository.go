// File: /repositories/user_repository.go
package repositories

import (
	"context"

	"gorm.io/gorm"
	"motofuel-api/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// IncrementTripCounters adds one trip and distance km to the user in a single UPDATE.
func (r *UserRepository) IncrementTripCounters(ctx context.Context, id string, distance float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_trips":    gorm.Expr("total_trips + ?", 1),
			"total_distance": gorm.Expr("total_distance + ?", distance),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
