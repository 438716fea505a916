// File: /jobs/cache_sweep_job.go
package jobs

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"motofuel-api/metrics"
)

// Sweeper removes expired entries and reports how many it dropped.
type Sweeper interface {
	Sweep() int
}

// LimiterCleaner drops rate-limit buckets idle for longer than the given duration.
type LimiterCleaner interface {
	CleanupLimiters(idle time.Duration) int
}

// CacheSweepJob periodically clears expired analytics cache entries from the
// in-memory store and idle rate-limit buckets.
type CacheSweepJob struct {
	store    Sweeper
	limiters LimiterCleaner
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

// NewCacheSweepJob creates a sweep job. Either target may be nil.
func NewCacheSweepJob(store Sweeper, limiters LimiterCleaner, interval time.Duration) *CacheSweepJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheSweepJob{
		store:    store,
		limiters: limiters,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the sweep job
func (j *CacheSweepJob) Start() {
	j.ticker = time.NewTicker(j.interval)
	log.WithField("interval", j.interval.String()).Info("Cache sweep job started")

	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.RunOnce()
			case <-j.done:
				log.Info("Cache sweep job stopped")
				return
			}
		}
	}()
}

// Stop stops the sweep job. It is safe to call more than once.
func (j *CacheSweepJob) Stop() {
	j.stopOnce.Do(func() {
		if j.ticker != nil {
			j.ticker.Stop()
		}
		close(j.done)
	})
}

// RunOnce performs a single sweep.
func (j *CacheSweepJob) RunOnce() {
	fields := log.Fields{}
	if j.store != nil {
		removed := j.store.Sweep()
		metrics.CacheSweepRemoved.Add(float64(removed))
		fields["cache_entries_removed"] = removed
	}
	if j.limiters != nil {
		fields["limiters_removed"] = j.limiters.CleanupLimiters(10 * j.interval)
	}
	log.WithFields(fields).Debug("Cache sweep completed")
}
