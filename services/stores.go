// File: /services/stores.go
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"motofuel-api/models"
	"motofuel-api/repositories"
	"motofuel-api/utils"
)

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// CanAccess reports whether the actor owns ownerID's data or is an admin.
func (a Actor) CanAccess(ownerID string) bool {
	return a.IsAdmin || (a.UserID != "" && a.UserID == ownerID)
}

type TripStore interface {
	Create(ctx context.Context, trip *models.TripRecord) error
	FindByID(ctx context.Context, id string) (*models.TripRecord, error)
	ListByUser(ctx context.Context, userID string, status models.TripStatus) ([]models.TripRecord, error)
	Transition(ctx context.Context, id string, from []models.TripStatus, updates map[string]interface{}) (bool, error)
	IncrementReroute(ctx context.Context, id string) (bool, error)
	// AddRoutePoint and AddExpense report false when the trip is no longer in a
	// state that accepts the row.
	AddRoutePoint(ctx context.Context, point *models.TripRoutePoint) (bool, error)
	AddExpense(ctx context.Context, expense *models.TripExpense) (bool, error)
}

type MotorcycleStore interface {
	FindByID(ctx context.Context, id string) (*models.Motorcycle, error)
	UpdateFuelLevel(ctx context.Context, id string, level float64, at time.Time) error
	IncrementTripCounters(ctx context.Context, id string, distance float64, lastTrip time.Time) error
}

type UserCounterStore interface {
	IncrementTripCounters(ctx context.Context, id string, distance float64) error
}

type FuelEventStore interface {
	FindFuelLogs(ctx context.Context, q repositories.FuelQuery) ([]models.FuelLog, error)
	FindMaintenanceRefuels(ctx context.Context, q repositories.FuelQuery) ([]models.MaintenanceRecord, error)
}

type FuelRecordStore interface {
	CreateFuelLog(ctx context.Context, log *models.FuelLog) error
	CreateMaintenance(ctx context.Context, record *models.MaintenanceRecord) error
}

// lookupError turns a repository read error into NotFoundError or PersistenceError.
func lookupError(resource, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFoundError(resource, id)
	}
	return utils.Persistence("find "+resource, err)
}

// findOwnedMotorcycle loads a motorcycle and checks it belongs to ownerID.
func findOwnedMotorcycle(ctx context.Context, store MotorcycleStore, id, ownerID string) (*models.Motorcycle, error) {
	motorcycle, err := store.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("motorcycle", id, err)
	}
	if motorcycle.UserID != ownerID {
		return nil, utils.NewForbiddenError("motorcycle does not belong to this user")
	}
	return motorcycle, nil
}
