package scm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/cjrt007/Tornado.Ai/cache"
	"github.com/cjrt007/Tornado.Ai/observe"
)

var (
	// ErrNilProducer is returned by Resolve when no producer is supplied.
	ErrNilProducer = errors.New("scm: producer is nil")

	// ErrProducerPanic is recorded on the resolve span and metrics when a
	// producer panics. The panic itself is re-raised to the caller.
	ErrProducerPanic = errors.New("scm: producer panicked")
)

// Producer computes the value for a cache miss.
//
// Producers are expected to be deterministic for a given (logical id,
// parameters) pair; the manager does not check the result against the key.
// Business outcomes should be encoded in the value. A returned error is
// propagated to the caller unchanged and nothing is cached.
type Producer[T any] func(ctx context.Context) (T, error)

// Result is the outcome of a resolution.
type Result[T any] struct {
	Key    string `json:"key"`
	Value  T      `json:"value"`
	Cached bool   `json:"cached"`

	// Shared reports that the value was produced by a concurrent resolution
	// of the same key. Only set when single-flight is enabled.
	Shared bool `json:"shared,omitempty"`
}

// Manager resolves logical requests through an owned content-addressed cache.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: ctx is handed to the producer; the manager adds no deadline of its own.
//   - Errors: key derivation and producer errors are returned; nothing is cached on error.
type Manager[T any] struct {
	cache       *cache.ContentAddressedCache[T]
	keyer       cache.Keyer
	logger      observe.Logger
	tracer      observe.ResolveTracer
	instruments *observe.CacheInstruments
	group       *singleflight.Group

	// afterMiss runs between a cache miss and production. Tests only.
	afterMiss func(key string)
}

// New creates a manager owning a fresh cache configured from cfg.
func New[T any](cfg Config, opts ...Option) (*Manager[T], error) {
	o := options{
		keyer:  cache.NewDefaultKeyer(),
		logger: observe.NopLogger(),
		tracer: observe.NopResolveTracer(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var cacheOpts []cache.Option
	if o.clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(o.clock))
	}
	if o.instruments != nil {
		cacheOpts = append(cacheOpts, cache.WithRecorder(o.instruments))
	}

	c, err := cache.New[T](cfg.policy(), cacheOpts...)
	if err != nil {
		return nil, fmt.Errorf("scm: %w", err)
	}

	m := &Manager[T]{
		cache:       c,
		keyer:       o.keyer,
		logger:      o.logger,
		tracer:      o.tracer,
		instruments: o.instruments,
	}
	if o.instruments != nil {
		o.instruments.ObserveSize(func() int64 { return int64(c.Len()) })
	}
	if o.singleFlight {
		m.group = &singleflight.Group{}
	}
	return m, nil
}

// Resolve returns the cached value for (logicalID, params) or produces, stores
// and returns a fresh one.
//
// On a hit the producer is not called and Result.Cached is true. On a miss the
// producer runs synchronously; its value is stored with the default TTL. A
// panic in the producer propagates to the caller.
func (m *Manager[T]) Resolve(ctx context.Context, logicalID string, params any, produce Producer[T]) (Result[T], error) {
	if produce == nil {
		return Result[T]{}, ErrNilProducer
	}

	r := m.begin(ctx, logicalID)

	var key string
	defer func() {
		if p := recover(); p != nil {
			_, _ = finish(r, Result[T]{Key: key}, fmt.Errorf("%w: %v", ErrProducerPanic, p))
			panic(p)
		}
	}()

	key, err := m.keyer.Key(logicalID, params)
	if err != nil {
		return finish(r, Result[T]{}, fmt.Errorf("scm: derive key for %q: %w", logicalID, err))
	}

	log := m.logger.With(observe.F(observe.AttrToolID, logicalID), observe.F(observe.AttrCacheKey, key))

	if value, ok := m.cache.Get(key); ok {
		log.Debug(r.ctx, "cache hit")
		return finish(r, Result[T]{Key: key, Value: value, Cached: true}, nil)
	}
	log.Debug(r.ctx, "cache miss")
	if m.afterMiss != nil {
		m.afterMiss(key)
	}

	value, shared, err := m.produce(r.ctx, key, produce)
	if err != nil {
		log.Warn(r.ctx, "producer failed", observe.F("error", err))
		return finish(r, Result[T]{Key: key}, err)
	}
	if shared {
		log.Debug(r.ctx, "joined in-flight production")
	}

	return finish(r, Result[T]{Key: key, Value: value, Shared: shared}, nil)
}

func (m *Manager[T]) produce(ctx context.Context, key string, produce Producer[T]) (T, bool, error) {
	if m.group == nil {
		value, err := produce(ctx)
		if err != nil {
			var zero T
			return zero, false, err
		}
		m.cache.Set(key, value)
		return value, false, nil
	}

	// The leader's ctx drives the shared producer call.
	v, err, shared := m.group.Do(key, func() (any, error) {
		// A flight that finished between our miss and Do has already stored
		// the value; reuse it without counting a second lookup.
		if value, ok := m.cache.Peek(key); ok {
			return cachedValue[T]{value}, nil
		}
		value, err := produce(ctx)
		if err != nil {
			return nil, err
		}
		m.cache.Set(key, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, shared, err
	}
	if cv, ok := v.(cachedValue[T]); ok {
		return cv.value, true, nil
	}
	value, _ := v.(T)
	return value, shared, nil
}

// cachedValue marks a flight result read back from the cache.
type cachedValue[T any] struct{ value T }

// Invalidate removes the entry for (logicalID, params), if any.
func (m *Manager[T]) Invalidate(ctx context.Context, logicalID string, params any) error {
	key, err := m.keyer.Key(logicalID, params)
	if err != nil {
		return fmt.Errorf("scm: derive key for %q: %w", logicalID, err)
	}
	m.cache.Invalidate(key)
	m.logger.Debug(ctx, "cache entry invalidated",
		observe.F(observe.AttrToolID, logicalID),
		observe.F(observe.AttrCacheKey, key),
	)
	return nil
}

// Stats returns the owned cache's statistics snapshot.
func (m *Manager[T]) Stats() cache.Stats {
	return m.cache.Stats()
}

// PurgeExpired drops expired entries; it lets a cache.Sweeper drive the manager.
func (m *Manager[T]) PurgeExpired() int {
	return m.cache.PurgeExpired()
}

// resolution carries per-call telemetry state.
type resolution struct {
	ctx         context.Context
	span        trace.Span
	start       time.Time
	logicalID   string
	tracer      observe.ResolveTracer
	instruments *observe.CacheInstruments
}

func (m *Manager[T]) begin(ctx context.Context, logicalID string) *resolution {
	ctx, span := m.tracer.StartResolve(ctx, logicalID)
	return &resolution{
		ctx:         ctx,
		span:        span,
		start:       time.Now(),
		logicalID:   logicalID,
		tracer:      m.tracer,
		instruments: m.instruments,
	}
}

func finish[T any](r *resolution, res Result[T], err error) (Result[T], error) {
	r.tracer.EndResolve(r.span, observe.ResolveOutcome{
		Key:    res.Key,
		Cached: res.Cached,
		Shared: res.Shared,
		Err:    err,
	})
	if r.instruments != nil {
		r.instruments.RecordResolve(r.ctx, r.logicalID, time.Since(r.start), res.Cached, err)
	}
	return res, err
}

// Ensure Manager implements cache.Purger
var _ cache.Purger = (*Manager[any])(nil)
