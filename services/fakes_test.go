package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
	"motofuel-api/models"
	"motofuel-api/repositories"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func ptr[T any](v T) *T { return &v }

// memoryTripStore mimics the conditional updates of TripRepository.
type memoryTripStore struct {
	mu    sync.Mutex
	trips map[string]*models.TripRecord
	err   error
	// beforeInsert runs ahead of a child row insert, letting a test move the
	// trip into another state in between.
	beforeInsert func()
}

func newMemoryTripStore() *memoryTripStore {
	return &memoryTripStore{trips: map[string]*models.TripRecord{}}
}

func (m *memoryTripStore) Create(_ context.Context, trip *models.TripRecord) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *trip
	m.trips[trip.ID] = &cp
	return nil
}

func (m *memoryTripStore) FindByID(_ context.Context, id string) (*models.TripRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *trip
	cp.RoutePoints = append([]models.TripRoutePoint(nil), trip.RoutePoints...)
	cp.Expenses = append([]models.TripExpense(nil), trip.Expenses...)
	return &cp, nil
}

func (m *memoryTripStore) ListByUser(_ context.Context, userID string, status models.TripStatus) ([]models.TripRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TripRecord
	for _, trip := range m.trips {
		if trip.UserID == userID && (status == "" || trip.Status == status) {
			out = append(out, *trip)
		}
	}
	return out, nil
}

func (m *memoryTripStore) Transition(_ context.Context, id string, from []models.TripStatus, updates map[string]interface{}) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, s := range from {
		if trip.Status == s {
			allowed = true
		}
	}
	if !allowed {
		return false, nil
	}
	for key, v := range updates {
		switch key {
		case "status":
			trip.Status = v.(models.TripStatus)
		case "start_time":
			t := v.(time.Time)
			trip.StartTime = &t
		case "end_time":
			t := v.(time.Time)
			trip.EndTime = &t
		case "duration":
			trip.Duration = v.(int)
		case "actual_distance":
			trip.ActualDistance = v.(float64)
		case "average_speed":
			trip.AverageSpeed = v.(float64)
		case "max_speed":
			trip.MaxSpeed = v.(float64)
		case "failure_reason":
			trip.FailureReason = v.(string)
		}
	}
	return true, nil
}

func (m *memoryTripStore) IncrementReroute(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok || trip.Status != models.TripStatusInProgress {
		return false, nil
	}
	trip.WasRerouted = true
	trip.RerouteCount++
	return true, nil
}

func (m *memoryTripStore) AddRoutePoint(_ context.Context, point *models.TripRoutePoint) (bool, error) {
	if m.beforeInsert != nil {
		m.beforeInsert()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[point.TripID]
	if !ok || trip.Status != models.TripStatusInProgress {
		return false, nil
	}
	point.ID = uint(len(trip.RoutePoints) + 1)
	trip.RoutePoints = append(trip.RoutePoints, *point)
	return true, nil
}

func (m *memoryTripStore) AddExpense(_ context.Context, expense *models.TripExpense) (bool, error) {
	if m.beforeInsert != nil {
		m.beforeInsert()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[expense.TripID]
	if !ok || trip.Status.IsTerminal() {
		return false, nil
	}
	expense.ID = uint(len(trip.Expenses) + 1)
	trip.Expenses = append(trip.Expenses, *expense)
	return true, nil
}

type memoryMotorcycleStore struct {
	mu          sync.Mutex
	motorcycles map[string]*models.Motorcycle
	updateErr   error
}

func newMemoryMotorcycleStore(motorcycles ...models.Motorcycle) *memoryMotorcycleStore {
	m := &memoryMotorcycleStore{motorcycles: map[string]*models.Motorcycle{}}
	for i := range motorcycles {
		mc := motorcycles[i]
		m.motorcycles[mc.ID] = &mc
	}
	return m
}

func (m *memoryMotorcycleStore) FindByID(_ context.Context, id string) (*models.Motorcycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mc, ok := m.motorcycles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *mc
	return &cp, nil
}

func (m *memoryMotorcycleStore) UpdateFuelLevel(_ context.Context, id string, level float64, at time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mc, ok := m.motorcycles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	mc.CurrentFuelLevel = level
	mc.AnalyticsUpdatedAt = &at
	return nil
}

func (m *memoryMotorcycleStore) IncrementTripCounters(_ context.Context, id string, distance float64, lastTrip time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mc, ok := m.motorcycles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	mc.TotalTrips++
	mc.TotalDistance += distance
	mc.LastTripDate = &lastTrip
	return nil
}

type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error
}

func newMemoryUserStore(ids ...string) *memoryUserStore {
	m := &memoryUserStore{users: map[string]*models.User{}}
	for _, id := range ids {
		m.users[id] = &models.User{ID: id}
	}
	return m
}

func (m *memoryUserStore) IncrementTripCounters(_ context.Context, id string, distance float64) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.TotalTrips++
	user.TotalDistance += distance
	return nil
}

func (m *memoryUserStore) get(id string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[id]
}

// mockFuelStore is a testify mock over both refuel sources.
type mockFuelStore struct {
	mock.Mock
}

func (m *mockFuelStore) FindFuelLogs(ctx context.Context, q repositories.FuelQuery) ([]models.FuelLog, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.([]models.FuelLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFuelStore) FindMaintenanceRefuels(ctx context.Context, q repositories.FuelQuery) ([]models.MaintenanceRecord, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.([]models.MaintenanceRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFuelStore) CreateFuelLog(ctx context.Context, entry *models.FuelLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockFuelStore) CreateMaintenance(ctx context.Context, record *models.MaintenanceRecord) error {
	return m.Called(ctx, record).Error(0)
}

type mockRefuelApplier struct {
	mock.Mock
}

func (m *mockRefuelApplier) ApplyRefuel(ctx context.Context, motorcycleID string, liters float64) {
	m.Called(ctx, motorcycleID, liters)
}

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) Invalidate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
