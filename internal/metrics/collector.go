package metrics

import (
	"context"
	"time"
)

// CacheSnapshot is a point-in-time view of one registry cache's counters.
type CacheSnapshot struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Items     int
}

// StatsSource produces snapshots for every registry cache, keyed by name.
// It decouples the collector from the cache package's generic types.
type StatsSource func() map[string]CacheSnapshot

// Collector periodically publishes registry cache statistics to Prometheus.
type Collector struct {
	source   StatsSource
	interval time.Duration
	stop     chan struct{}
	last     map[string]CacheSnapshot
}

// NewCollector creates a collector polling the source at the given interval.
func NewCollector(source StatsSource, interval time.Duration) *Collector {
	return &Collector{
		source:   source,
		interval: interval,
		stop:     make(chan struct{}),
		last:     make(map[string]CacheSnapshot),
	}
}

// Start begins the collection loop; it returns when ctx is done or Stop is
// called.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop terminates the collection loop.
func (c *Collector) Stop() {
	close(c.stop)
}

// collect publishes gauges directly and counters as deltas against the last
// snapshot, since the caches expose monotonic totals.
func (c *Collector) collect() {
	for name, snap := range c.source() {
		CacheItems.WithLabelValues(name).Set(float64(snap.Items))

		prev := c.last[name]
		if snap.Hits >= prev.Hits {
			CacheHits.WithLabelValues(name).Add(float64(snap.Hits - prev.Hits))
		}
		if snap.Misses >= prev.Misses {
			CacheMisses.WithLabelValues(name).Add(float64(snap.Misses - prev.Misses))
		}
		if snap.Evictions >= prev.Evictions {
			CacheEvictions.WithLabelValues(name).Add(float64(snap.Evictions - prev.Evictions))
		}
		c.last[name] = snap
	}
}
