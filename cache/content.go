package cache

import (
	"container/list"
	"sync"
	"time"
)

// ContentAddressedCache is a TTL cache with a global entry-count bound enforced
// by LRU eviction.
//
// Contract:
//   - Concurrency: safe for concurrent use; every operation holds one mutex.
//   - Expiry: an entry whose expiry has passed is never returned by Get.
//   - Capacity: at most Policy.MaxEntries entries remain after Set returns.
type ContentAddressedCache[T any] struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front is most recently used
	policy   Policy
	now      func() time.Time
	recorder Recorder

	hits      uint64
	misses    uint64
	evictions uint64
}

type entry[T any] struct {
	key        string
	value      T
	expiresAt  time.Time
	lastAccess time.Time
}

// Option configures a ContentAddressedCache.
type Option func(*options)

type options struct {
	clock    func() time.Time
	recorder Recorder
}

// WithClock overrides the time source. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithRecorder attaches a Recorder that observes hits, misses, evictions and expirations.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// New creates a cache governed by the given policy.
func New[T any](policy Policy, opts ...Option) (*ContentAddressedCache[T], error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	o := options{
		clock:    time.Now,
		recorder: NoopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &ContentAddressedCache[T]{
		entries:  make(map[string]*list.Element, policy.MaxEntries),
		order:    list.New(),
		policy:   policy,
		now:      o.clock,
		recorder: o.recorder,
	}, nil
}

// Policy returns the policy the cache was built with.
func (c *ContentAddressedCache[T]) Policy() Policy {
	return c.policy
}

// Set stores value under key with the default TTL.
func (c *ContentAddressedCache[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value under key, replacing any previous entry, and marks it
// most recently used. A non-positive ttl selects the policy default; ttl is
// clamped to Policy.MaxTTL. Expired entries are purged and the capacity bound
// is enforced before returning.
func (c *ContentAddressedCache[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiresAt := now.Add(c.policy.EffectiveTTL(ttl))

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry[T])
		e.value = value
		e.expiresAt = expiresAt
		e.lastAccess = now
		c.order.MoveToFront(el)
	} else {
		c.entries[key] = c.order.PushFront(&entry[T]{
			key:        key,
			value:      value,
			expiresAt:  expiresAt,
			lastAccess: now,
		})
	}

	c.evictLocked(now)
}

// Get returns the live value for key. A missing or expired entry counts as a
// miss; an expired entry is removed.
func (c *ContentAddressedCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	el, ok := c.entries[key]
	if !ok {
		c.misses++
		c.recorder.Miss()
		return zero, false
	}

	now := c.now()
	e := el.Value.(*entry[T])
	if now.After(e.expiresAt) {
		c.removeLocked(el)
		c.misses++
		c.recorder.Miss()
		c.recorder.Expiration()
		return zero, false
	}

	e.lastAccess = now
	c.order.MoveToFront(el)
	c.hits++
	c.recorder.Hit()
	return e.value, true
}

// Peek returns the live value for key without counting a lookup or
// refreshing its recency.
func (c *ContentAddressedCache[T]) Peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[T])
	if c.now().After(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

// Invalidate removes the entry for key. Idempotent - no-op on miss.
func (c *ContentAddressedCache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}
}

// PurgeExpired removes every expired entry and returns how many were removed.
// Purged entries are not counted as evictions.
func (c *ContentAddressedCache[T]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.purgeExpiredLocked(c.now())
}

// Stats returns a point-in-time snapshot. It does not mutate the cache.
func (c *ContentAddressedCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:      len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Capacity:  c.policy.MaxEntries,
	}
}

// Len returns the number of resident entries, expired or not.
func (c *ContentAddressedCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Reset drops every entry and zeroes the counters.
func (c *ContentAddressedCache[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element, c.policy.MaxEntries)
	c.order.Init()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// evictLocked purges expired entries, then drops least recently used entries
// until the capacity bound holds. Only the second step counts as eviction.
func (c *ContentAddressedCache[T]) evictLocked(now time.Time) {
	c.purgeExpiredLocked(now)

	for len(c.entries) > c.policy.MaxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			return
		}
		c.removeLocked(oldest)
		c.evictions++
		c.recorder.Eviction()
	}
}

func (c *ContentAddressedCache[T]) purgeExpiredLocked(now time.Time) int {
	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if now.After(el.Value.(*entry[T]).expiresAt) {
			c.removeLocked(el)
			c.recorder.Expiration()
			removed++
		}
		el = next
	}
	return removed
}

func (c *ContentAddressedCache[T]) removeLocked(el *list.Element) {
	e := c.order.Remove(el).(*entry[T])
	delete(c.entries, e.key)
}
