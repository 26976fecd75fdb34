package scm

import (
	"time"

	"github.com/cjrt007/Tornado.Ai/cache"
	"github.com/cjrt007/Tornado.Ai/observe"
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	keyer        cache.Keyer
	logger       observe.Logger
	tracer       observe.ResolveTracer
	instruments  *observe.CacheInstruments
	clock        func() time.Time
	singleFlight bool
}

// WithKeyer replaces the default SHA-256 keyer.
func WithKeyer(k cache.Keyer) Option {
	return func(o *options) {
		if k != nil {
			o.keyer = k
		}
	}
}

// WithLogger sets the logger used for resolution events.
func WithLogger(l observe.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracer sets the tracer used for resolution spans.
func WithTracer(t observe.ResolveTracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithInstruments records cache events and resolution latency on ci.
func WithInstruments(ci *observe.CacheInstruments) Option {
	return func(o *options) {
		o.instruments = ci
	}
}

// WithClock overrides the cache time source. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithSingleFlight makes concurrent misses for the same key share one
// producer call instead of each running their own.
func WithSingleFlight() Option {
	return func(o *options) {
		o.singleFlight = true
	}
}
