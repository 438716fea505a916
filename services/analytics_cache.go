// File: /services/analytics_cache.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"motofuel-api/cache"
	"motofuel-api/metrics"
	"motofuel-api/models"
)

// FuelLedger is the computation the analytics cache sits in front of.
type FuelLedger interface {
	Combined(ctx context.Context, p FuelQueryParams) (*models.CombinedFuelData, error)
	Efficiency(ctx context.Context, p FuelQueryParams) (*models.EfficiencyData, error)
	CostAnalysis(ctx context.Context, p FuelQueryParams) (*models.CostAnalysisData, error)
}

type CacheTTLs struct {
	Combined     time.Duration
	Efficiency   time.Duration
	CostAnalysis time.Duration
}

func DefaultCacheTTLs() CacheTTLs {
	return CacheTTLs{
		Combined:     5 * time.Minute,
		Efficiency:   10 * time.Minute,
		CostAnalysis: 10 * time.Minute,
	}
}

// AnalyticsCache is a read-through cache over FuelLedger keyed by
// (kind, user, period, motorcycle or "all").
//
// Concurrent misses on the same key each recompute and each store their result;
// the last write wins. The ledger is a pure read so the only cost is duplicated
// work.
type AnalyticsCache struct {
	ledger FuelLedger
	store  cache.Store
	clock  cache.Clock
	ttls   CacheTTLs
}

func NewAnalyticsCache(ledger FuelLedger, store cache.Store, clock cache.Clock, ttls CacheTTLs) *AnalyticsCache {
	if clock == nil {
		clock = cache.SystemClock()
	}
	return &AnalyticsCache{
		ledger: ledger,
		store:  store,
		clock:  clock,
		ttls:   ttls,
	}
}

func CacheKey(kind models.AnalyticsKind, p FuelQueryParams) string {
	return fmt.Sprintf("fuel:%s:%s:%s:%s", kind, p.UserID, p.Period, motorcycleScope(p.MotorcycleID))
}

func (c *AnalyticsCache) Combined(ctx context.Context, p FuelQueryParams) (*models.CombinedFuelData, error) {
	return readThrough(ctx, c, models.KindCombined, c.ttls.Combined, p,
		c.ledger.Combined,
		func(v *models.CombinedFuelData, meta models.AnalyticsMetadata) { v.Metadata = meta })
}

func (c *AnalyticsCache) Efficiency(ctx context.Context, p FuelQueryParams) (*models.EfficiencyData, error) {
	return readThrough(ctx, c, models.KindEfficiency, c.ttls.Efficiency, p,
		c.ledger.Efficiency,
		func(v *models.EfficiencyData, meta models.AnalyticsMetadata) { v.Metadata = meta })
}

func (c *AnalyticsCache) CostAnalysis(ctx context.Context, p FuelQueryParams) (*models.CostAnalysisData, error) {
	return readThrough(ctx, c, models.KindCostAnalysis, c.ttls.CostAnalysis, p,
		c.ledger.CostAnalysis,
		func(v *models.CostAnalysisData, meta models.AnalyticsMetadata) { v.Metadata = meta })
}

// Invalidate drops every cached view for userID.
func (c *AnalyticsCache) Invalidate(ctx context.Context, userID string) error {
	for _, kind := range []models.AnalyticsKind{models.KindCombined, models.KindEfficiency, models.KindCostAnalysis} {
		if _, err := c.store.DeletePrefix(ctx, fmt.Sprintf("fuel:%s:%s:", kind, userID)); err != nil {
			return fmt.Errorf("invalidate %s cache: %w", kind, err)
		}
	}
	return nil
}

// readThrough serves a cached value when one is live, otherwise computes,
// stamps metadata, stores and returns it. Both paths decode the stored bytes so
// a hit is identical to the miss that populated it.
func readThrough[T any](
	ctx context.Context,
	c *AnalyticsCache,
	kind models.AnalyticsKind,
	ttl time.Duration,
	p FuelQueryParams,
	compute func(context.Context, FuelQueryParams) (*T, error),
	stamp func(*T, models.AnalyticsMetadata),
) (*T, error) {
	period, _, err := ParsePeriod(p.Period)
	if err != nil {
		return nil, err
	}
	p.Period = period
	key := CacheKey(kind, p)
	logger := log.WithFields(log.Fields{"cache_key": key})

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		logger.WithError(err).Warn("Analytics cache read failed, recomputing")
	}
	if entry != nil && !entry.Expired(c.clock.Now()) {
		var cached T
		if err := json.Unmarshal(entry.Value, &cached); err == nil {
			metrics.AnalyticsCacheLookups.WithLabelValues(string(kind), "hit").Inc()
			return &cached, nil
		}
		logger.Warn("Discarding undecodable analytics cache entry")
	}
	metrics.AnalyticsCacheLookups.WithLabelValues(string(kind), "miss").Inc()

	started := time.Now()
	value, err := compute(ctx, p)
	if err != nil {
		return nil, err
	}
	metrics.AnalyticsComputeDuration.WithLabelValues(string(kind)).Observe(time.Since(started).Seconds())

	now := c.clock.Now()
	stamp(value, models.AnalyticsMetadata{
		GeneratedAt: now,
		CacheExpiry: now.Add(ttl),
	})

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s analytics: %w", kind, err)
	}
	if err := c.store.Set(ctx, key, cache.Entry{Value: raw, CreatedAt: now, ExpiresAt: now.Add(ttl)}); err != nil {
		logger.WithError(err).Warn("Analytics cache write failed")
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s analytics: %w", kind, err)
	}
	return &out, nil
}
