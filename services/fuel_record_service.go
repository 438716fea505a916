// File: /services/fuel_record_service.go
package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"motofuel-api/cache"
	"motofuel-api/models"
	"motofuel-api/utils"
)

type CreateFuelLogInput struct {
	MotorcycleID  string     `json:"motorcycle_id" binding:"required"`
	Liters        float64    `json:"liters" binding:"required"`
	PricePerLiter *float64   `json:"price_per_liter"`
	TotalCost     *float64   `json:"total_cost"`
	Odometer      *float64   `json:"odometer"`
	Distance      *float64   `json:"distance"`
	Location      string     `json:"location"`
	Notes         string     `json:"notes"`
	Date          *time.Time `json:"date"`
}

type CreateMaintenanceInput struct {
	MotorcycleID string                 `json:"motorcycle_id" binding:"required"`
	Type         models.MaintenanceType `json:"type" binding:"required"`
	Quantity     *float64               `json:"quantity"`
	Cost         float64                `json:"cost"`
	Odometer     *float64               `json:"odometer"`
	Distance     *float64               `json:"distance"`
	Location     string                 `json:"location"`
	Notes        string                 `json:"notes"`
	Date         *time.Time             `json:"date"`
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

type RefuelApplier interface {
	ApplyRefuel(ctx context.Context, motorcycleID string, liters float64)
}

// FuelRecordService writes both refuel sources and fires their side effects.
// Only maintenance refuels move the motorcycle's fuel level; dedicated fuel logs
// leave it alone.
type FuelRecordService struct {
	records     FuelRecordStore
	motorcycles MotorcycleStore
	analytics   CacheInvalidator
	fuelLevel   RefuelApplier
	clock       cache.Clock
}

func NewFuelRecordService(records FuelRecordStore, motorcycles MotorcycleStore, analytics CacheInvalidator, fuelLevel RefuelApplier, clock cache.Clock) *FuelRecordService {
	if clock == nil {
		clock = cache.SystemClock()
	}
	return &FuelRecordService{
		records:     records,
		motorcycles: motorcycles,
		analytics:   analytics,
		fuelLevel:   fuelLevel,
		clock:       clock,
	}
}

func (s *FuelRecordService) CreateFuelLog(ctx context.Context, actor Actor, in CreateFuelLogInput) (*models.FuelLog, error) {
	if math.IsNaN(in.Liters) || in.Liters <= 0 {
		return nil, utils.NewValidationError("liters", "must be greater than 0")
	}
	price, total, err := reconcileCost(in.Liters, in.PricePerLiter, in.TotalCost)
	if err != nil {
		return nil, err
	}
	if err := validateOptionalDistances(in.Odometer, in.Distance); err != nil {
		return nil, err
	}

	motorcycle, err := s.accessibleMotorcycle(ctx, actor, in.MotorcycleID)
	if err != nil {
		return nil, err
	}

	entry := &models.FuelLog{
		ID:            uuid.New().String(),
		UserID:        motorcycle.UserID,
		MotorcycleID:  motorcycle.ID,
		Liters:        in.Liters,
		PricePerLiter: price,
		TotalCost:     total,
		Odometer:      in.Odometer,
		Distance:      in.Distance,
		Location:      in.Location,
		Notes:         in.Notes,
		Date:          s.dateOrNow(in.Date),
	}
	if err := s.records.CreateFuelLog(ctx, entry); err != nil {
		return nil, utils.Persistence("create fuel log", err)
	}

	s.invalidate(ctx, entry.UserID)
	log.WithFields(log.Fields{
		"fuel_log_id":   entry.ID,
		"motorcycle_id": entry.MotorcycleID,
		"liters":        entry.Liters,
	}).Info("Fuel log created")
	return entry, nil
}

func (s *FuelRecordService) CreateMaintenance(ctx context.Context, actor Actor, in CreateMaintenanceInput) (*models.MaintenanceRecord, error) {
	if !in.Type.IsValid() {
		return nil, utils.NewValidationError("type", "unknown maintenance type")
	}
	if err := utils.NonNegative("cost", in.Cost); err != nil {
		return nil, err
	}
	if in.Type == models.MaintenanceRefuel {
		if in.Quantity == nil || math.IsNaN(*in.Quantity) || *in.Quantity <= 0 {
			return nil, utils.NewValidationError("quantity", "must be greater than 0 for a refuel")
		}
	} else if in.Quantity != nil {
		if err := utils.NonNegative("quantity", *in.Quantity); err != nil {
			return nil, err
		}
	}
	if err := validateOptionalDistances(in.Odometer, in.Distance); err != nil {
		return nil, err
	}

	motorcycle, err := s.accessibleMotorcycle(ctx, actor, in.MotorcycleID)
	if err != nil {
		return nil, err
	}

	record := &models.MaintenanceRecord{
		ID:           uuid.New().String(),
		UserID:       motorcycle.UserID,
		MotorcycleID: motorcycle.ID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		Cost:         in.Cost,
		Odometer:     in.Odometer,
		Distance:     in.Distance,
		Location:     in.Location,
		Notes:        strings.TrimSpace(in.Notes),
		Date:         s.dateOrNow(in.Date),
	}
	if err := s.records.CreateMaintenance(ctx, record); err != nil {
		return nil, utils.Persistence("create maintenance record", err)
	}

	if record.Type == models.MaintenanceRefuel {
		s.invalidate(ctx, record.UserID)
		s.fuelLevel.ApplyRefuel(ctx, record.MotorcycleID, *record.Quantity)
	}

	log.WithFields(log.Fields{
		"maintenance_id": record.ID,
		"motorcycle_id":  record.MotorcycleID,
		"type":           record.Type,
	}).Info("Maintenance record created")
	return record, nil
}

func (s *FuelRecordService) accessibleMotorcycle(ctx context.Context, actor Actor, motorcycleID string) (*models.Motorcycle, error) {
	if strings.TrimSpace(motorcycleID) == "" {
		return nil, utils.NewValidationError("motorcycle_id", "is required")
	}
	motorcycle, err := s.motorcycles.FindByID(ctx, motorcycleID)
	if err != nil {
		return nil, lookupError("motorcycle", motorcycleID, err)
	}
	if !actor.CanAccess(motorcycle.UserID) {
		return nil, utils.NewForbiddenError("motorcycle does not belong to this user")
	}
	return motorcycle, nil
}

func (s *FuelRecordService) invalidate(ctx context.Context, userID string) {
	if s.analytics == nil {
		return
	}
	if err := s.analytics.Invalidate(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate fuel analytics cache")
	}
}

func (s *FuelRecordService) dateOrNow(date *time.Time) time.Time {
	if date != nil && !date.IsZero() {
		return *date
	}
	return s.clock.Now()
}

// reconcileCost fills in whichever of price and total is missing and rejects a
// pair that disagrees by more than models.CostTolerance.
func reconcileCost(liters float64, price, total *float64) (float64, float64, error) {
	switch {
	case price == nil && total == nil:
		return 0, 0, utils.NewValidationError("price_per_liter", "price_per_liter or total_cost is required")
	case price != nil && total != nil:
		if err := utils.NonNegative("price_per_liter", *price); err != nil {
			return 0, 0, err
		}
		if err := utils.NonNegative("total_cost", *total); err != nil {
			return 0, 0, err
		}
		if math.Abs(liters*(*price)-*total) > models.CostTolerance {
			return 0, 0, utils.NewValidationError("total_cost", "does not match liters x price_per_liter")
		}
		return *price, *total, nil
	case price != nil:
		if err := utils.NonNegative("price_per_liter", *price); err != nil {
			return 0, 0, err
		}
		return *price, utils.RoundTo(liters*(*price), 2), nil
	default:
		if err := utils.NonNegative("total_cost", *total); err != nil {
			return 0, 0, err
		}
		return utils.RoundTo(*total/liters, 3), *total, nil
	}
}

func validateOptionalDistances(odometer, distance *float64) error {
	if odometer != nil {
		if err := utils.NonNegative("odometer", *odometer); err != nil {
			return err
		}
	}
	if distance != nil {
		if err := utils.NonNegative("distance", *distance); err != nil {
			return err
		}
	}
	return nil
}
