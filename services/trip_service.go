// File: /services/trip_service.go
package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"motofuel-api/cache"
	"motofuel-api/metrics"
	"motofuel-api/models"
	"motofuel-api/utils"
)

type CreateTripInput struct {
	MotorcycleID      *string    `json:"motorcycle_id"`
	Destination       string     `json:"destination" binding:"required"`
	EstimatedDistance float64    `json:"estimated_distance"`
	EstimatedFuelMin  float64    `json:"estimated_fuel_min"`
	EstimatedFuelMax  float64    `json:"estimated_fuel_max"`
	ETA               *time.Time `json:"eta"`
	PlannedRoute      string     `json:"planned_route"`
	StartLatitude     *float64   `json:"start_latitude"`
	StartLongitude    *float64   `json:"start_longitude"`
	StartAddress      string     `json:"start_address"`
	EndLatitude       *float64   `json:"end_latitude"`
	EndLongitude      *float64   `json:"end_longitude"`
	EndAddress        string     `json:"end_address"`
	StartTime         *time.Time `json:"start_time"`
}

type RoutePointInput struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Altitude  *float64   `json:"altitude"`
	Speed     *float64   `json:"speed"`
	Timestamp *time.Time `json:"timestamp"`
}

type ExpenseInput struct {
	Type        string  `json:"type" binding:"required"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
}

type CompleteTripInput struct {
	EndTime *time.Time         `json:"end_time"`
	Stats   *models.FinalStats `json:"final_stats"`
}

// TripService owns the trip state machine:
//
//	planned -> in_progress -> completed | cancelled | failed
//	planned -> cancelled
//
// Terminal states absorb every further transition.
type TripService struct {
	trips       TripStore
	motorcycles MotorcycleStore
	users       UserCounterStore
	clock       cache.Clock
}

func NewTripService(trips TripStore, motorcycles MotorcycleStore, users UserCounterStore, clock cache.Clock) *TripService {
	if clock == nil {
		clock = cache.SystemClock()
	}
	return &TripService{
		trips:       trips,
		motorcycles: motorcycles,
		users:       users,
		clock:       clock,
	}
}

func (s *TripService) CreatePlanned(ctx context.Context, actor Actor, in CreateTripInput) (*models.TripRecord, error) {
	if strings.TrimSpace(in.Destination) == "" {
		return nil, utils.NewValidationError("destination", "is required")
	}
	for field, v := range map[string]float64{
		"estimated_distance": in.EstimatedDistance,
		"estimated_fuel_min": in.EstimatedFuelMin,
		"estimated_fuel_max": in.EstimatedFuelMax,
	} {
		if err := utils.NonNegative(field, v); err != nil {
			return nil, err
		}
	}
	if in.EstimatedFuelMax < in.EstimatedFuelMin {
		return nil, utils.NewValidationError("estimated_fuel_max", "must not be less than estimated_fuel_min")
	}
	if err := validateOptionalPoint(in.StartLatitude, in.StartLongitude); err != nil {
		return nil, err
	}
	if err := validateOptionalPoint(in.EndLatitude, in.EndLongitude); err != nil {
		return nil, err
	}

	var motorcycleID *string
	if in.MotorcycleID != nil && *in.MotorcycleID != "" {
		if _, err := findOwnedMotorcycle(ctx, s.motorcycles, *in.MotorcycleID, actor.UserID); err != nil {
			return nil, err
		}
		motorcycleID = in.MotorcycleID
	}

	trip := &models.TripRecord{
		ID:                uuid.New().String(),
		UserID:            actor.UserID,
		MotorcycleID:      motorcycleID,
		Destination:       strings.TrimSpace(in.Destination),
		EstimatedDistance: in.EstimatedDistance,
		EstimatedFuelMin:  in.EstimatedFuelMin,
		EstimatedFuelMax:  in.EstimatedFuelMax,
		ETA:               in.ETA,
		PlannedRoute:      in.PlannedRoute,
		StartLatitude:     in.StartLatitude,
		StartLongitude:    in.StartLongitude,
		StartAddress:      in.StartAddress,
		EndLatitude:       in.EndLatitude,
		EndLongitude:      in.EndLongitude,
		EndAddress:        in.EndAddress,
		Status:            models.TripStatusPlanned,
	}
	if in.StartTime != nil {
		start := *in.StartTime
		trip.StartTime = &start
		trip.Status = models.TripStatusInProgress
	}

	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, utils.Persistence("create trip", err)
	}

	metrics.TripTransitions.WithLabelValues(string(trip.Status)).Inc()
	log.WithFields(log.Fields{
		"trip_id": trip.ID,
		"user_id": trip.UserID,
		"status":  trip.Status,
	}).Info("Trip created")
	return trip, nil
}

// Start moves a planned trip into progress. A nil startTime means now.
func (s *TripService) Start(ctx context.Context, actor Actor, tripID string, startTime *time.Time) (*models.TripRecord, error) {
	trip, err := s.loadOwned(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripStatusPlanned {
		return nil, utils.NewInvalidStateError(string(trip.Status), "start")
	}

	start := s.clock.Now()
	if startTime != nil {
		start = *startTime
	}
	if err := s.transition(ctx, trip, "start", []models.TripStatus{models.TripStatusPlanned}, map[string]interface{}{
		"status":     models.TripStatusInProgress,
		"start_time": start,
	}); err != nil {
		return nil, err
	}

	trip.Status = models.TripStatusInProgress
	trip.StartTime = &start
	return trip, nil
}

func (s *TripService) AddRoutePoint(ctx context.Context, actor Actor, tripID string, in RoutePointInput) (*models.TripRoutePoint, error) {
	trip, err := s.loadOwned(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}
	if in.Speed != nil {
		if err := utils.NonNegative("speed", *in.Speed); err != nil {
			return nil, err
		}
	}
	if trip.Status != models.TripStatusInProgress {
		return nil, utils.NewInvalidStateError(string(trip.Status), "add a route point to")
	}

	ts := s.clock.Now()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}
	point := &models.TripRoutePoint{
		TripID:    trip.ID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Altitude:  in.Altitude,
		Speed:     in.Speed,
		Timestamp: ts,
	}
	ok, err := s.trips.AddRoutePoint(ctx, point)
	if err != nil {
		return nil, utils.Persistence("add route point", err)
	}
	if !ok {
		return nil, s.lostRace(ctx, trip.ID, "add a route point to")
	}
	return point, nil
}

func (s *TripService) AddReroute(ctx context.Context, actor Actor, tripID string) (*models.TripRecord, error) {
	trip, err := s.loadOwned(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripStatusInProgress {
		return nil, utils.NewInvalidStateError(string(trip.Status), "reroute")
	}

	ok, err := s.trips.IncrementReroute(ctx, trip.ID)
	if err != nil {
		return nil, utils.Persistence("increment reroute", err)
	}
	if !ok {
		return nil, s.lostRace(ctx, trip.ID, "reroute")
	}

	log.WithFields(log.Fields{"trip_id": trip.ID}).Info("Trip rerouted")
	return s.load(ctx, trip.ID)
}

func (s *TripService) AddExpense(ctx context.Context, actor Actor, tripID string, in ExpenseInput) (*models.TripExpense, error) {
	trip, err := s.loadOwned(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Type) == "" {
		return nil, utils.NewValidationError("type", "is required")
	}
	if err := utils.NonNegative("amount", in.Amount); err != nil {
		return nil, err
	}
	if trip.Status.IsTerminal() {
		return nil, utils.NewInvalidStateError(string(trip.Status), "add an expense to")
	}

	expense := &models.TripExpense{
		TripID:      trip.ID,
		Type:        strings.TrimSpace(in.Type),
		Amount:      in.Amount,
		Description: in.Description,
		Location:    in.Location,
		CreatedAt:   s.clock.Now(),
	}
	ok, err := s.trips.AddExpense(ctx, expense)
	if err != nil {
		return nil, utils.Persistence("add expense", err)
	}
	if !ok {
		return nil, s.lostRace(ctx, trip.ID, "add an expense to")
	}
	return expense, nil
}

// Complete closes an in-progress trip exactly once and then propagates the
// trip count and distance to the owning user and motorcycle.
func (s *TripService) Complete(ctx context.Context, actor Actor, tripID string, in CompleteTripInput) (*models.TripRecord, error) {
	trip, err := s.loadOwned(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripStatusInProgress {
		return nil, utils.NewInvalidStateError(string(trip.Status), "complete")
	}
	if trip.StartTime == nil {
		return nil, utils.NewValidationError("start_time", "trip has no start time")
	}

	end := s.clock.Now()
	if in.EndTime != nil {
		end = *in.EndTime
	}
	if end.Before(*trip.StartTime) {
		return nil, utils.NewValidationError("end_time", "must not be before start_time")
	}
	if err := validateFinalStats(in.Stats); err != nil {
		return nil, err
	}

	completed := *trip
	completed.Status = models.TripStatusCompleted
	completed.EndTime = &end
	completed.Duration = int(math.Round(end.Sub(*trip.StartTime).Minutes()))
	applyFinalStats(&completed, in.Stats)

	if err := s.transition(ctx, trip, "complete", []models.TripStatus{models.TripStatusInProgress}, map[string]interface{}{
		"status":          completed.Status,
		"end_time":        end,
		"duration":        completed.Duration,
		"actual_distance": completed.ActualDistance,
		"actual_fuel_min": completed.ActualFuelMin,
		"actual_fuel_max": completed.ActualFuelMax,
		"actual_route":    completed.ActualRoute,
		"average_speed":   completed.AverageSpeed,
		"max_speed":       completed.MaxSpeed,
		"end_latitude":    completed.EndLatitude,
		"end_longitude":   completed.EndLongitude,
		"end_address":     completed.EndAddress,
	}); err != nil {
		return nil, err
	}

	s.propagateCounters(ctx, &completed)

	log.WithFields(log.Fields{
		"trip_id":  completed.ID,
		"user_id":  completed.UserID,
		"distance": completed.ActualDistance,
		"duration": completed.Duration,
	}).Info("Trip completed")
	return &completed, nil
}

// Cancel closes a planned or in-progress trip without touching any counters.
func (s *TripService) Cancel(ctx context.Context, actor Actor, tripID string) (*models.TripRecord, error) {
	trip, err := s.loadOwned(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status.IsTerminal() {
		return nil, utils.NewInvalidStateError(string(trip.Status), "cancel")
	}

	end := s.closingTime(trip)
	if err := s.transition(ctx, trip, "cancel",
		[]models.TripStatus{models.TripStatusPlanned, models.TripStatusInProgress},
		map[string]interface{}{
			"status":   models.TripStatusCancelled,
			"end_time": end,
		}); err != nil {
		return nil, err
	}

	trip.Status = models.TripStatusCancelled
	trip.EndTime = &end
	return trip, nil
}

// Fail marks an in-progress trip as failed with a reason.
func (s *TripService) Fail(ctx context.Context, actor Actor, tripID, reason string) (*models.TripRecord, error) {
	trip, err := s.loadOwned(ctx, actor, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripStatusInProgress {
		return nil, utils.NewInvalidStateError(string(trip.Status), "fail")
	}

	end := s.closingTime(trip)
	if err := s.transition(ctx, trip, "fail", []models.TripStatus{models.TripStatusInProgress}, map[string]interface{}{
		"status":         models.TripStatusFailed,
		"end_time":       end,
		"failure_reason": reason,
	}); err != nil {
		return nil, err
	}

	trip.Status = models.TripStatusFailed
	trip.EndTime = &end
	trip.FailureReason = reason
	return trip, nil
}

// closingTime is now, or the trip's start when that lies in the future, so
// the end never precedes the start.
func (s *TripService) closingTime(trip *models.TripRecord) time.Time {
	end := s.clock.Now()
	if trip.StartTime != nil && end.Before(*trip.StartTime) {
		return *trip.StartTime
	}
	return end
}

func (s *TripService) Get(ctx context.Context, actor Actor, tripID string) (*models.TripRecord, error) {
	return s.loadOwned(ctx, actor, tripID)
}

func (s *TripService) List(ctx context.Context, actor Actor, status models.TripStatus) ([]models.TripRecord, error) {
	if status != "" && !status.IsValid() {
		return nil, utils.NewValidationError("status", "unknown trip status")
	}
	trips, err := s.trips.ListByUser(ctx, actor.UserID, status)
	if err != nil {
		return nil, utils.Persistence("list trips", err)
	}
	return trips, nil
}

func (s *TripService) load(ctx context.Context, tripID string) (*models.TripRecord, error) {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return nil, lookupError("trip", tripID, err)
	}
	return trip, nil
}

func (s *TripService) loadOwned(ctx context.Context, actor Actor, tripID string) (*models.TripRecord, error) {
	trip, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(trip.UserID) {
		return nil, utils.NewForbiddenError("you do not have access to this trip")
	}
	return trip, nil
}

func (s *TripService) transition(ctx context.Context, trip *models.TripRecord, action string, from []models.TripStatus, updates map[string]interface{}) error {
	ok, err := s.trips.Transition(ctx, trip.ID, from, updates)
	if err != nil {
		return utils.Persistence(action+" trip", err)
	}
	if !ok {
		return s.lostRace(ctx, trip.ID, action)
	}
	if status, found := updates["status"].(models.TripStatus); found {
		metrics.TripTransitions.WithLabelValues(string(status)).Inc()
	}
	return nil
}

// lostRace reports the status another request left the trip in.
func (s *TripService) lostRace(ctx context.Context, tripID, action string) error {
	current, err := s.load(ctx, tripID)
	if err != nil {
		return err
	}
	return utils.NewInvalidStateError(string(current.Status), action)
}

// propagateCounters applies the user and motorcycle increments independently.
// Failures are logged and never undo the completion.
func (s *TripService) propagateCounters(ctx context.Context, trip *models.TripRecord) {
	if err := s.users.IncrementTripCounters(ctx, trip.UserID, trip.ActualDistance); err != nil {
		metrics.SideEffectFailures.WithLabelValues("user_counters").Inc()
		log.WithError(err).WithFields(log.Fields{
			"trip_id": trip.ID,
			"user_id": trip.UserID,
		}).Warn("Failed to update user trip counters")
	}

	if trip.MotorcycleID == nil || *trip.MotorcycleID == "" {
		return
	}
	if err := s.motorcycles.IncrementTripCounters(ctx, *trip.MotorcycleID, trip.ActualDistance, *trip.EndTime); err != nil {
		metrics.SideEffectFailures.WithLabelValues("motorcycle_counters").Inc()
		log.WithError(err).WithFields(log.Fields{
			"trip_id":       trip.ID,
			"motorcycle_id": *trip.MotorcycleID,
		}).Warn("Failed to update motorcycle trip counters")
	}
}

func validateOptionalPoint(lat, lng *float64) error {
	if lat == nil && lng == nil {
		return nil
	}
	if lat == nil || lng == nil {
		return utils.NewValidationError("coordinates", "latitude and longitude must be given together")
	}
	return utils.ValidateCoordinates(*lat, *lng)
}

func validateFinalStats(stats *models.FinalStats) error {
	if stats == nil {
		return nil
	}
	for field, v := range map[string]*float64{
		"actual_distance": stats.ActualDistance,
		"actual_fuel_min": stats.ActualFuelMin,
		"actual_fuel_max": stats.ActualFuelMax,
		"average_speed":   stats.AverageSpeed,
		"max_speed":       stats.MaxSpeed,
	} {
		if v == nil {
			continue
		}
		if err := utils.NonNegative(field, *v); err != nil {
			return err
		}
	}
	return validateOptionalPoint(stats.EndLatitude, stats.EndLongitude)
}

// applyFinalStats merges reported values into trip. Distance and speeds not
// reported are derived from the recorded route points.
func applyFinalStats(trip *models.TripRecord, stats *models.FinalStats) {
	if stats == nil {
		stats = &models.FinalStats{}
	}

	derived := summarizeRoute(trip.RoutePoints)
	trip.ActualDistance = utils.RoundTo(derived.distance, 3)
	trip.AverageSpeed = utils.RoundTo(derived.averageSpeed, 2)
	trip.MaxSpeed = derived.maxSpeed

	if stats.ActualDistance != nil {
		trip.ActualDistance = *stats.ActualDistance
	}
	if stats.AverageSpeed != nil {
		trip.AverageSpeed = *stats.AverageSpeed
	}
	if stats.MaxSpeed != nil {
		trip.MaxSpeed = *stats.MaxSpeed
	}
	if stats.ActualFuelMin != nil {
		trip.ActualFuelMin = *stats.ActualFuelMin
	}
	if stats.ActualFuelMax != nil {
		trip.ActualFuelMax = *stats.ActualFuelMax
	}
	if stats.ActualRoute != nil {
		trip.ActualRoute = *stats.ActualRoute
	}
	if stats.EndLatitude != nil && stats.EndLongitude != nil {
		trip.EndLatitude = stats.EndLatitude
		trip.EndLongitude = stats.EndLongitude
	} else if n := len(trip.RoutePoints); n > 0 && trip.EndLatitude == nil {
		last := trip.RoutePoints[n-1]
		trip.EndLatitude = &last.Latitude
		trip.EndLongitude = &last.Longitude
	}
	if stats.EndAddress != nil {
		trip.EndAddress = *stats.EndAddress
	}
}

type routeSummary struct {
	distance     float64
	averageSpeed float64
	maxSpeed     float64
}

func summarizeRoute(points []models.TripRoutePoint) routeSummary {
	var (
		summary    routeSummary
		totalSpeed float64
		speedCount int
	)
	for i, point := range points {
		if i > 0 {
			prev := points[i-1]
			summary.distance += utils.HaversineKm(prev.Latitude, prev.Longitude, point.Latitude, point.Longitude)
		}
		if point.Speed != nil {
			if *point.Speed > summary.maxSpeed {
				summary.maxSpeed = *point.Speed
			}
			totalSpeed += *point.Speed
			speedCount++
		}
	}
	if speedCount > 0 {
		summary.averageSpeed = totalSpeed / float64(speedCount)
	}
	return summary
}
