// File: /services/fuel_ledger_service.go
package services

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"motofuel-api/cache"
	"motofuel-api/models"
	"motofuel-api/repositories"
	"motofuel-api/utils"
)

var ledgerTracer = otel.Tracer("motofuel.fuel_ledger")

// FuelQueryParams identifies one analytics request.
type FuelQueryParams struct {
	UserID       string
	Period       string
	MotorcycleID string
}

// ParsePeriod resolves a period query value to its window. An empty value
// selects the default 30d window.
func ParsePeriod(period string) (string, time.Duration, error) {
	if period == "" {
		period = models.DefaultPeriod
	}
	window, ok := models.PeriodWindows[period]
	if !ok {
		return "", 0, utils.NewValidationError("period", "must be one of 7d, 30d, 90d")
	}
	return period, window, nil
}

// FuelLedgerService reconciles dedicated fuel logs and maintenance refuels into
// one ledger and derives the fuel analytics views from it.
type FuelLedgerService struct {
	store FuelEventStore
	clock cache.Clock
}

func NewFuelLedgerService(store FuelEventStore, clock cache.Clock) *FuelLedgerService {
	if clock == nil {
		clock = cache.SystemClock()
	}
	return &FuelLedgerService{store: store, clock: clock}
}

// Events returns the merged ledger for the window ending now, newest first.
func (s *FuelLedgerService) Events(ctx context.Context, p FuelQueryParams) ([]models.UnifiedFuelEvent, error) {
	_, window, err := ParsePeriod(p.Period)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	q := repositories.FuelQuery{
		UserID:       p.UserID,
		MotorcycleID: p.MotorcycleID,
		From:         now.Add(-window),
		To:           now,
	}

	logs, err := s.store.FindFuelLogs(ctx, q)
	if err != nil {
		return nil, utils.Persistence("find fuel logs", err)
	}
	refuels, err := s.store.FindMaintenanceRefuels(ctx, q)
	if err != nil {
		return nil, utils.Persistence("find maintenance refuels", err)
	}
	return MergeFuelEvents(logs, refuels), nil
}

func (s *FuelLedgerService) Combined(ctx context.Context, p FuelQueryParams) (*models.CombinedFuelData, error) {
	ctx, span := s.startSpan(ctx, "FuelLedger.Combined", p)
	defer span.End()

	period, _, err := ParsePeriod(p.Period)
	if err != nil {
		return nil, spanError(span, err)
	}
	events, err := s.Events(ctx, p)
	if err != nil {
		return nil, spanError(span, err)
	}

	summary := SummarizeFuel(events)
	summary.Period = period
	summary.MotorcycleID = motorcycleScope(p.MotorcycleID)

	span.SetAttributes(attribute.Int("fuel.events", len(events)))
	return &models.CombinedFuelData{Data: events, Summary: summary}, nil
}

func (s *FuelLedgerService) Efficiency(ctx context.Context, p FuelQueryParams) (*models.EfficiencyData, error) {
	ctx, span := s.startSpan(ctx, "FuelLedger.Efficiency", p)
	defer span.End()

	period, _, err := ParsePeriod(p.Period)
	if err != nil {
		return nil, spanError(span, err)
	}
	events, err := s.Events(ctx, p)
	if err != nil {
		return nil, spanError(span, err)
	}

	points, summary := DeriveEfficiency(events)
	summary.Period = period
	summary.MotorcycleID = motorcycleScope(p.MotorcycleID)

	span.SetAttributes(attribute.Int("fuel.data_points", summary.DataPoints))
	return &models.EfficiencyData{Data: points, Summary: summary}, nil
}

func (s *FuelLedgerService) CostAnalysis(ctx context.Context, p FuelQueryParams) (*models.CostAnalysisData, error) {
	ctx, span := s.startSpan(ctx, "FuelLedger.CostAnalysis", p)
	defer span.End()

	period, _, err := ParsePeriod(p.Period)
	if err != nil {
		return nil, spanError(span, err)
	}
	events, err := s.Events(ctx, p)
	if err != nil {
		return nil, spanError(span, err)
	}

	points, summary := DeriveCostAnalysis(events)
	summary.Period = period
	summary.MotorcycleID = motorcycleScope(p.MotorcycleID)

	span.SetAttributes(attribute.Int("fuel.events", len(events)))
	return &models.CostAnalysisData{Data: points, Summary: summary}, nil
}

// motorcycleScope names what a summary covers: one motorcycle or all of them.
func motorcycleScope(motorcycleID string) string {
	if motorcycleID == "" {
		return models.AllMotorcycles
	}
	return motorcycleID
}

func (s *FuelLedgerService) startSpan(ctx context.Context, name string, p FuelQueryParams) (context.Context, trace.Span) {
	return ledgerTracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("user.id", p.UserID),
		attribute.String("fuel.period", p.Period),
		attribute.String("fuel.motorcycle_id", motorcycleScope(p.MotorcycleID)),
	))
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// MergeFuelEvents normalizes both sources and sorts them by date descending.
// Events with identical timestamps put fuel logs before maintenance records,
// then order by ID so the result never depends on input order.
func MergeFuelEvents(logs []models.FuelLog, refuels []models.MaintenanceRecord) []models.UnifiedFuelEvent {
	events := make([]models.UnifiedFuelEvent, 0, len(logs)+len(refuels))
	for i := range logs {
		events = append(events, models.EventFromFuelLog(&logs[i]))
	}
	for i := range refuels {
		if refuels[i].Type != models.MaintenanceRefuel {
			continue
		}
		events = append(events, models.EventFromMaintenance(&refuels[i]))
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.Source != b.Source {
			return a.Source.Rank() < b.Source.Rank()
		}
		return a.ID < b.ID
	})
	return events
}

// SummarizeFuel aggregates the whole ledger. AvgCostPerLiter is 0 when no liters
// were recorded.
func SummarizeFuel(events []models.UnifiedFuelEvent) models.FuelSummary {
	var summary models.FuelSummary
	for _, e := range events {
		summary.TotalLiters += e.Liters
		summary.TotalCost += e.TotalCost
	}
	summary.TotalRefuels = len(events)
	if summary.TotalLiters > 0 {
		summary.AvgCostPerLiter = utils.RoundTo(summary.TotalCost/summary.TotalLiters, 2)
	}
	return summary
}

// DeriveEfficiency builds the km/L series. Events without a known distance or
// without liters are left out rather than reported as zero efficiency.
func DeriveEfficiency(events []models.UnifiedFuelEvent) ([]models.EfficiencyPoint, models.EfficiencySummary) {
	points := make([]models.EfficiencyPoint, 0, len(events))
	var (
		summary   models.EfficiencySummary
		totalCost float64
	)
	for _, e := range events {
		if e.Distance == nil || *e.Distance <= 0 || e.Liters <= 0 {
			continue
		}
		points = append(points, models.EfficiencyPoint{
			Date:         e.Date,
			Efficiency:   utils.RoundTo(*e.Distance/e.Liters, 2),
			Distance:     *e.Distance,
			Liters:       e.Liters,
			Source:       e.Source,
			MotorcycleID: e.MotorcycleID,
		})
		summary.TotalDistance += *e.Distance
		summary.TotalLiters += e.Liters
		totalCost += e.TotalCost
	}

	summary.DataPoints = len(points)
	if summary.TotalLiters > 0 {
		summary.AvgEfficiency = utils.RoundTo(summary.TotalDistance/summary.TotalLiters, 2)
	}
	if summary.TotalDistance > 0 {
		summary.AvgCostPerKm = utils.RoundTo(totalCost/summary.TotalDistance, 2)
	}
	return points, summary
}

// DeriveCostAnalysis builds the cost trend. MinPrice and MaxPrice stay nil for
// an empty ledger.
func DeriveCostAnalysis(events []models.UnifiedFuelEvent) ([]models.CostPoint, models.CostSummary) {
	points := make([]models.CostPoint, 0, len(events))
	summary := models.CostSummary{
		BySource: map[models.FuelEventSource]models.SourceCost{},
	}

	var totalLiters float64
	for _, e := range events {
		points = append(points, models.CostPoint{
			Date:          e.Date,
			TotalCost:     e.TotalCost,
			PricePerLiter: e.PricePerLiter,
			Source:        e.Source,
		})

		summary.TotalCost += e.TotalCost
		totalLiters += e.Liters

		price := e.PricePerLiter
		if summary.MinPrice == nil || price < *summary.MinPrice {
			lo := price
			summary.MinPrice = &lo
		}
		if summary.MaxPrice == nil || price > *summary.MaxPrice {
			hi := price
			summary.MaxPrice = &hi
		}

		bucket := summary.BySource[e.Source]
		bucket.TotalCost += e.TotalCost
		bucket.TotalLiters += e.Liters
		bucket.Count++
		summary.BySource[e.Source] = bucket
	}

	summary.TotalRefuels = len(events)
	if totalLiters > 0 {
		summary.AvgPricePerLiter = utils.RoundTo(summary.TotalCost/totalLiters, 2)
	}
	return points, summary
}
