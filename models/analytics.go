// File: /models/analytics.go
package models

import (
	"time"
)

type AnalyticsKind string

const (
	KindCombined     AnalyticsKind = "combined"
	KindEfficiency   AnalyticsKind = "efficiency"
	KindCostAnalysis AnalyticsKind = "cost_analysis"
)

const DefaultPeriod = "30d"

// AllMotorcycles marks a summary or cache entry that covers every motorcycle of the user.
const AllMotorcycles = "all"

// PeriodWindows maps an accepted period query value to its look-back window.
var PeriodWindows = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

type AnalyticsMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	CacheExpiry time.Time `json:"cache_expiry"`
}

type FuelSummary struct {
	TotalLiters     float64 `json:"total_liters"`
	TotalCost       float64 `json:"total_cost"`
	AvgCostPerLiter float64 `json:"avg_cost_per_liter"`
	TotalRefuels    int     `json:"total_refuels"`
	Period          string  `json:"period"`
	MotorcycleID    string  `json:"motorcycle_id"`
}

type CombinedFuelData struct {
	Data     []UnifiedFuelEvent `json:"data"`
	Summary  FuelSummary        `json:"summary"`
	Metadata AnalyticsMetadata  `json:"metadata"`
}

type EfficiencyPoint struct {
	Date         time.Time       `json:"date"`
	Efficiency   float64         `json:"efficiency"` // km/L
	Distance     float64         `json:"distance"`
	Liters       float64         `json:"liters"`
	Source       FuelEventSource `json:"source"`
	MotorcycleID string          `json:"motorcycle_id"`
}

type EfficiencySummary struct {
	AvgEfficiency float64 `json:"avg_efficiency"`
	AvgCostPerKm  float64 `json:"avg_cost_per_km"`
	TotalDistance float64 `json:"total_distance"`
	TotalLiters   float64 `json:"total_liters"`
	DataPoints    int     `json:"data_points"`
	Period        string  `json:"period"`
	MotorcycleID  string  `json:"motorcycle_id"`
}

type EfficiencyData struct {
	Data     []EfficiencyPoint `json:"data"`
	Summary  EfficiencySummary `json:"summary"`
	Metadata AnalyticsMetadata `json:"metadata"`
}

type CostPoint struct {
	Date          time.Time       `json:"date"`
	TotalCost     float64         `json:"total_cost"`
	PricePerLiter float64         `json:"price_per_liter"`
	Source        FuelEventSource `json:"source"`
}

type SourceCost struct {
	TotalCost   float64 `json:"total_cost"`
	TotalLiters float64 `json:"total_liters"`
	Count       int     `json:"count"`
}

// CostSummary leaves MinPrice and MaxPrice nil when there are no events.
type CostSummary struct {
	TotalCost        float64                        `json:"total_cost"`
	AvgPricePerLiter float64                        `json:"avg_price_per_liter"`
	MinPrice         *float64                       `json:"min_price"`
	MaxPrice         *float64                       `json:"max_price"`
	TotalRefuels     int                            `json:"total_refuels"`
	BySource         map[FuelEventSource]SourceCost `json:"by_source"`
	Period           string                         `json:"period"`
	MotorcycleID     string                         `json:"motorcycle_id"`
}

type CostAnalysisData struct {
	Data     []CostPoint       `json:"data"`
	Summary  CostSummary       `json:"summary"`
	Metadata AnalyticsMetadata `json:"metadata"`
}
