package observe

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric names exported by CacheInstruments.
const (
	MetricCacheHits        = "scm.cache.hits"
	MetricCacheMisses      = "scm.cache.misses"
	MetricCacheEvictions   = "scm.cache.evictions"
	MetricCacheExpirations = "scm.cache.expirations"
	MetricCacheSize        = "scm.cache.size"
	MetricResolveDuration  = "scm.resolve.duration_ms"
)

// CacheInstruments records cache events and resolution latency as
// OpenTelemetry metrics. It satisfies cache.Recorder.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: recording never fails and never panics.
type CacheInstruments struct {
	hits         metric.Int64Counter
	misses       metric.Int64Counter
	evictions    metric.Int64Counter
	expirations  metric.Int64Counter
	resolveHist  metric.Float64Histogram
	sizeGauge    metric.Int64ObservableGauge
	sizeFn       atomic.Pointer[func() int64]
	registration metric.Registration
}

// NewCacheInstruments creates the instruments on meter.
func NewCacheInstruments(meter metric.Meter) (*CacheInstruments, error) {
	ci := &CacheInstruments{}

	var err error
	if ci.hits, err = meter.Int64Counter(MetricCacheHits,
		metric.WithDescription("Cache lookups that returned a live entry"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}
	if ci.misses, err = meter.Int64Counter(MetricCacheMisses,
		metric.WithDescription("Cache lookups that found no live entry"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}
	if ci.evictions, err = meter.Int64Counter(MetricCacheEvictions,
		metric.WithDescription("Entries removed to enforce the capacity bound"),
		metric.WithUnit("{entry}"),
	); err != nil {
		return nil, err
	}
	if ci.expirations, err = meter.Int64Counter(MetricCacheExpirations,
		metric.WithDescription("Entries removed because their TTL passed"),
		metric.WithUnit("{entry}"),
	); err != nil {
		return nil, err
	}
	if ci.resolveHist, err = meter.Float64Histogram(MetricResolveDuration,
		metric.WithDescription("Resolution duration in milliseconds, including production on miss"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if ci.sizeGauge, err = meter.Int64ObservableGauge(MetricCacheSize,
		metric.WithDescription("Resident cache entries"),
		metric.WithUnit("{entry}"),
	); err != nil {
		return nil, err
	}

	ci.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		if fn := ci.sizeFn.Load(); fn != nil {
			o.ObserveInt64(ci.sizeGauge, (*fn)())
		}
		return nil
	}, ci.sizeGauge)
	if err != nil {
		return nil, err
	}

	return ci, nil
}

// NopCacheInstruments returns instruments backed by a no-op meter.
func NopCacheInstruments() *CacheInstruments {
	ci, _ := NewCacheInstruments(noop.NewMeterProvider().Meter("noop"))
	return ci
}

// ObserveSize sets the callback reporting the current cache size.
func (c *CacheInstruments) ObserveSize(fn func() int64) {
	c.sizeFn.Store(&fn)
}

// Hit records a cache hit.
func (c *CacheInstruments) Hit() {
	c.hits.Add(context.Background(), 1)
}

// Miss records a cache miss.
func (c *CacheInstruments) Miss() {
	c.misses.Add(context.Background(), 1)
}

// Eviction records a capacity eviction.
func (c *CacheInstruments) Eviction() {
	c.evictions.Add(context.Background(), 1)
}

// Expiration records a TTL removal.
func (c *CacheInstruments) Expiration() {
	c.expirations.Add(context.Background(), 1)
}

// RecordResolve records the duration of one resolution.
func (c *CacheInstruments) RecordResolve(ctx context.Context, toolID string, duration time.Duration, cached bool, err error) {
	c.resolveHist.Record(ctx, float64(duration.Microseconds())/1000,
		metric.WithAttributes(
			attribute.String(AttrToolID, toolID),
			attribute.Bool(AttrCacheHit, cached),
			attribute.Bool("error", err != nil),
		),
	)
}

// Close unregisters the size callback.
func (c *CacheInstruments) Close() error {
	if c.registration == nil {
		return nil
	}
	return c.registration.Unregister()
}
