// File: /repositories/trip_repository.go
package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"motofuel-api/models"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, trip *models.TripRecord) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

// FindByID loads a trip with its route points (oldest first) and expenses.
func (r *TripRepository) FindByID(ctx context.Context, id string) (*models.TripRecord, error) {
	var trip models.TripRecord
	err := r.db.WithContext(ctx).
		Preload("RoutePoints", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC, id ASC")
		}).
		Preload("Expenses", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// ListByUser returns a user's trips, newest first, optionally filtered by status.
func (r *TripRepository) ListByUser(ctx context.Context, userID string, status models.TripStatus) ([]models.TripRecord, error) {
	var trips []models.TripRecord
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&trips).Error
	return trips, err
}

// Transition applies updates only while the trip is still in one of the from
// states. It reports false when no row matched, which means another request
// moved the trip first.
func (r *TripRepository) Transition(ctx context.Context, id string, from []models.TripStatus, updates map[string]interface{}) (bool, error) {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.TripRecord{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementReroute bumps reroute_count in place for an in-progress trip.
func (r *TripRepository) IncrementReroute(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TripRecord{}).
		Where("id = ? AND status = ?", id, models.TripStatusInProgress).
		Updates(map[string]interface{}{
			"was_rerouted":  true,
			"reroute_count": gorm.Expr("reroute_count + ?", 1),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AddRoutePoint inserts point only while its trip is in progress.
func (r *TripRepository) AddRoutePoint(ctx context.Context, point *models.TripRoutePoint) (bool, error) {
	return r.insertWhile(ctx, point.TripID, []models.TripStatus{models.TripStatusInProgress}, point)
}

// AddExpense inserts expense only while its trip is planned or in progress.
func (r *TripRepository) AddExpense(ctx context.Context, expense *models.TripExpense) (bool, error) {
	return r.insertWhile(ctx, expense.TripID, []models.TripStatus{models.TripStatusPlanned, models.TripStatusInProgress}, expense)
}

// insertWhile locks the trip row and creates row only if the trip is still in
// one of the allowed states. Transition waits on the same lock.
func (r *TripRepository) insertWhile(ctx context.Context, tripID string, allowed []models.TripStatus, row interface{}) (bool, error) {
	inserted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trip models.TripRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			Where("id = ? AND status IN ?", tripID, allowed).
			Take(&trip).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		inserted = true
		return nil
	})
	return inserted, err
}
