package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"motofuel-api/cache"
	"motofuel-api/middleware"
	"motofuel-api/models"
	"motofuel-api/services"
)

var testNow = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

// asUser stands in for AuthMiddleware.
func asUser(userID string, admin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextIsAdmin, admin)
		c.Next()
	}
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type mockTripStore struct{ mock.Mock }

func (m *mockTripStore) Create(ctx context.Context, trip *models.TripRecord) error {
	return m.Called(ctx, trip).Error(0)
}

func (m *mockTripStore) FindByID(ctx context.Context, id string) (*models.TripRecord, error) {
	args := m.Called(ctx, id)
	trip, _ := args.Get(0).(*models.TripRecord)
	return trip, args.Error(1)
}

func (m *mockTripStore) ListByUser(ctx context.Context, userID string, status models.TripStatus) ([]models.TripRecord, error) {
	args := m.Called(ctx, userID, status)
	trips, _ := args.Get(0).([]models.TripRecord)
	return trips, args.Error(1)
}

func (m *mockTripStore) Transition(ctx context.Context, id string, from []models.TripStatus, updates map[string]interface{}) (bool, error) {
	args := m.Called(ctx, id, from, updates)
	return args.Bool(0), args.Error(1)
}

func (m *mockTripStore) IncrementReroute(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockTripStore) AddRoutePoint(ctx context.Context, point *models.TripRoutePoint) (bool, error) {
	args := m.Called(ctx, point)
	return args.Bool(0), args.Error(1)
}

func (m *mockTripStore) AddExpense(ctx context.Context, expense *models.TripExpense) (bool, error) {
	args := m.Called(ctx, expense)
	return args.Bool(0), args.Error(1)
}

type stubMotorcycles struct {
	motorcycles map[string]models.Motorcycle
}

func (s *stubMotorcycles) FindByID(_ context.Context, id string) (*models.Motorcycle, error) {
	mc, ok := s.motorcycles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &mc, nil
}

func (s *stubMotorcycles) UpdateFuelLevel(context.Context, string, float64, time.Time) error {
	return nil
}

func (s *stubMotorcycles) IncrementTripCounters(context.Context, string, float64, time.Time) error {
	return nil
}

type stubUsers struct{ calls atomic.Int32 }

func (s *stubUsers) IncrementTripCounters(context.Context, string, float64) error {
	s.calls.Add(1)
	return nil
}

func tripRouter(store *mockTripStore, users *stubUsers, userID string) *gin.Engine {
	svc := services.NewTripService(store, &stubMotorcycles{}, users, cache.ClockFunc(func() time.Time { return testNow }))
	tc := NewTripController(svc)

	r := gin.New()
	trips := r.Group("/trips", asUser(userID, false))
	trips.GET("/:id", tc.GetTrip)
	trips.PUT("/:id", tc.UpdateTripStatus)
	trips.POST("/:id/route-points", tc.AddRoutePoint)
	trips.POST("/:id/complete", tc.CompleteTrip)
	return r
}

func TestTripController_GetTrip(t *testing.T) {
	store := &mockTripStore{}
	store.On("FindByID", mock.Anything, "trip-1").Return(&models.TripRecord{ID: "trip-1", UserID: "user-1", Status: models.TripStatusPlanned}, nil)
	store.On("FindByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	w := doJSON(tripRouter(store, &stubUsers{}, "user-1"), http.MethodGet, "/trips/trip-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(tripRouter(store, &stubUsers{}, "user-1"), http.MethodGet, "/trips/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(tripRouter(store, &stubUsers{}, "user-2"), http.MethodGet, "/trips/trip-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTripController_CompleteWithEmptyBody(t *testing.T) {
	store := &mockTripStore{}
	start := testNow.Add(-45 * time.Minute)
	store.On("FindByID", mock.Anything, "trip-1").Return(&models.TripRecord{
		ID: "trip-1", UserID: "user-1", Status: models.TripStatusInProgress, StartTime: &start,
	}, nil)
	store.On("Transition", mock.Anything, "trip-1", []models.TripStatus{models.TripStatusInProgress}, mock.Anything).Return(true, nil)
	users := &stubUsers{}

	w := doJSON(tripRouter(store, users, "user-1"), http.MethodPost, "/trips/trip-1/complete", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.TripRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.TripStatusCompleted, got.Status)
	assert.Equal(t, 45, got.Duration)
	assert.Equal(t, int32(1), users.calls.Load())
}

func TestTripController_CompletedTripIsConflict(t *testing.T) {
	store := &mockTripStore{}
	store.On("FindByID", mock.Anything, "trip-1").Return(&models.TripRecord{ID: "trip-1", UserID: "user-1", Status: models.TripStatusCompleted}, nil)

	w := doJSON(tripRouter(store, &stubUsers{}, "user-1"), http.MethodPut, "/trips/trip-1", gin.H{"status": "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)
	store.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTripController_UpdateStatusValidation(t *testing.T) {
	store := &mockTripStore{}
	r := tripRouter(store, &stubUsers{}, "user-1")

	w := doJSON(r, http.MethodPut, "/trips/trip-1", gin.H{"status": "paused"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, "/trips/trip-1", gin.H{"status": "planned"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	store.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestTripController_RoutePointRequiresCoordinates(t *testing.T) {
	store := &mockTripStore{}
	r := tripRouter(store, &stubUsers{}, "user-1")

	w := doJSON(r, http.MethodPost, "/trips/trip-1/route-points", gin.H{"longitude": 121.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	store.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// echoLedger returns the query back in the summary and counts calls.
type echoLedger struct{ calls atomic.Int32 }

func (l *echoLedger) Combined(_ context.Context, p services.FuelQueryParams) (*models.CombinedFuelData, error) {
	l.calls.Add(1)
	return &models.CombinedFuelData{
		Data:    []models.UnifiedFuelEvent{},
		Summary: models.FuelSummary{Period: p.Period, MotorcycleID: p.MotorcycleID},
	}, nil
}

func (l *echoLedger) Efficiency(_ context.Context, p services.FuelQueryParams) (*models.EfficiencyData, error) {
	l.calls.Add(1)
	return &models.EfficiencyData{Summary: models.EfficiencySummary{Period: p.Period, MotorcycleID: p.MotorcycleID}}, nil
}

func (l *echoLedger) CostAnalysis(_ context.Context, p services.FuelQueryParams) (*models.CostAnalysisData, error) {
	l.calls.Add(1)
	return &models.CostAnalysisData{Summary: models.CostSummary{Period: p.Period, MotorcycleID: p.MotorcycleID}}, nil
}

func fuelRouter(ledger services.FuelLedger) *gin.Engine {
	clock := cache.ClockFunc(func() time.Time { return testNow })
	analytics := services.NewAnalyticsCache(ledger, cache.NewMemoryStore(clock), clock, services.DefaultCacheTTLs())
	fc := NewFuelController(analytics)

	r := gin.New()
	fuel := r.Group("/fuel", asUser("user-1", false))
	fuel.GET("/combined", fc.GetCombined)
	fuel.GET("/efficiency", fc.GetEfficiency)
	fuel.GET("/cost-analysis", fc.GetCostAnalysis)
	return r
}

func TestFuelController_CombinedIsCached(t *testing.T) {
	ledger := &echoLedger{}
	r := fuelRouter(ledger)

	first := doJSON(r, http.MethodGet, "/fuel/combined?period=7d&motorcycle_id=moto-1", nil)
	second := doJSON(r, http.MethodGet, "/fuel/combined?period=7d&motorcycle_id=moto-1", nil)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), ledger.calls.Load())

	var body struct {
		Summary  models.FuelSummary       `json:"summary"`
		Metadata models.AnalyticsMetadata `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &body))
	assert.Equal(t, "moto-1", body.Summary.MotorcycleID)
	assert.Equal(t, testNow.Add(5*time.Minute), body.Metadata.CacheExpiry.UTC())
}

func TestFuelController_MotorIDFallback(t *testing.T) {
	r := fuelRouter(&echoLedger{})

	w := doJSON(r, http.MethodGet, "/fuel/efficiency?motorId=moto-2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body models.EfficiencyData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "moto-2", body.Summary.MotorcycleID)
}

func TestFuelController_RejectsUnknownPeriod(t *testing.T) {
	ledger := &echoLedger{}
	r := fuelRouter(ledger)

	for _, path := range []string{"/fuel/combined?period=12d", "/fuel/cost-analysis?period=1y"} {
		w := doJSON(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	assert.Zero(t, ledger.calls.Load())
}

type stubRecords struct {
	fuelLogs    []models.FuelLog
	maintenance []models.MaintenanceRecord
}

func (s *stubRecords) CreateFuelLog(_ context.Context, l *models.FuelLog) error {
	s.fuelLogs = append(s.fuelLogs, *l)
	return nil
}

func (s *stubRecords) CreateMaintenance(_ context.Context, r *models.MaintenanceRecord) error {
	s.maintenance = append(s.maintenance, *r)
	return nil
}

type countingRefuels struct{ liters []float64 }

func (c *countingRefuels) ApplyRefuel(_ context.Context, _ string, liters float64) {
	c.liters = append(c.liters, liters)
}

func recordRouter(records *stubRecords, refuels *countingRefuels, userID string) *gin.Engine {
	motorcycles := &stubMotorcycles{motorcycles: map[string]models.Motorcycle{
		"moto-1": {ID: "moto-1", UserID: "user-1"},
	}}
	svc := services.NewFuelRecordService(records, motorcycles, nil, refuels, cache.ClockFunc(func() time.Time { return testNow }))
	rc := NewRecordController(svc)

	r := gin.New()
	api := r.Group("/", asUser(userID, false))
	api.POST("/fuel-logs", rc.CreateFuelLog)
	api.POST("/maintenance", rc.CreateMaintenance)
	return r
}

func TestRecordController_CreateFuelLog(t *testing.T) {
	records := &stubRecords{}
	r := recordRouter(records, &countingRefuels{}, "user-1")

	w := doJSON(r, http.MethodPost, "/fuel-logs", gin.H{"motorcycle_id": "moto-1", "liters": 10, "price_per_liter": 50})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got models.FuelLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 500.0, got.TotalCost)
	assert.Equal(t, "user-1", got.UserID)
	require.Len(t, records.fuelLogs, 1)

	w = doJSON(r, http.MethodPost, "/fuel-logs", gin.H{"motorcycle_id": "moto-1", "price_per_liter": 50})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordController_MaintenanceRefuel(t *testing.T) {
	records := &stubRecords{}
	refuels := &countingRefuels{}
	r := recordRouter(records, refuels, "user-1")

	w := doJSON(r, http.MethodPost, "/maintenance", gin.H{"motorcycle_id": "moto-1", "type": "refuel", "quantity": 5, "cost": 275})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []float64{5}, refuels.liters)

	w = doJSON(r, http.MethodPost, "/maintenance", gin.H{"motorcycle_id": "moto-1", "type": "oil_change", "cost": 900})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, refuels.liters, 1)
}

func TestRecordController_ForeignMotorcycle(t *testing.T) {
	r := recordRouter(&stubRecords{}, &countingRefuels{}, "user-2")

	w := doJSON(r, http.MethodPost, "/fuel-logs", gin.H{"motorcycle_id": "moto-1", "liters": 10, "price_per_liter": 50})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/fuel-logs", gin.H{"motorcycle_id": "moto-9", "liters": 10, "price_per_liter": 50})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
