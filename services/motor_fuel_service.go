// File: /services/motor_fuel_service.go
package services

import (
	"context"
	"math"

	log "github.com/sirupsen/logrus"
	"motofuel-api/cache"
	"motofuel-api/metrics"
)

// MotorFuelService keeps a motorcycle's fuel-level estimate in step with
// maintenance refuels.
type MotorFuelService struct {
	motorcycles         MotorcycleStore
	defaultTankCapacity float64
	clock               cache.Clock
}

func NewMotorFuelService(motorcycles MotorcycleStore, defaultTankCapacity float64, clock cache.Clock) *MotorFuelService {
	if clock == nil {
		clock = cache.SystemClock()
	}
	return &MotorFuelService{
		motorcycles:         motorcycles,
		defaultTankCapacity: defaultTankCapacity,
		clock:               clock,
	}
}

// ApplyRefuel adds liters to the motorcycle's tank estimate. It runs as a side
// effect of record creation, so every failure is logged and swallowed.
func (s *MotorFuelService) ApplyRefuel(ctx context.Context, motorcycleID string, liters float64) {
	logger := log.WithFields(log.Fields{
		"motorcycle_id": motorcycleID,
		"liters":        liters,
	})

	motorcycle, err := s.motorcycles.FindByID(ctx, motorcycleID)
	if err != nil {
		metrics.SideEffectFailures.WithLabelValues("fuel_level").Inc()
		logger.WithError(err).Warn("Skipping fuel level update, motorcycle not loaded")
		return
	}

	capacity := s.defaultTankCapacity
	if motorcycle.TankCapacity != nil && *motorcycle.TankCapacity > 0 {
		capacity = *motorcycle.TankCapacity
	}
	level := NextFuelLevel(motorcycle.CurrentFuelLevel, capacity, liters)

	if err := s.motorcycles.UpdateFuelLevel(ctx, motorcycle.ID, level, s.clock.Now()); err != nil {
		metrics.SideEffectFailures.WithLabelValues("fuel_level").Inc()
		logger.WithError(err).Warn("Failed to update fuel level")
		return
	}
	logger.WithField("fuel_level", level).Debug("Fuel level updated")
}

// NextFuelLevel returns the tank percentage after adding liters to a tank of
// capacity liters currently at currentLevel percent, clamped to [0, 100].
func NextFuelLevel(currentLevel, capacity, liters float64) float64 {
	if capacity <= 0 {
		return clampPercent(currentLevel)
	}
	current := clampPercent(currentLevel) / 100 * capacity
	return clampPercent((current + liters) / capacity * 100)
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
