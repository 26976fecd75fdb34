package health

import (
	"context"
	"fmt"

	"github.com/cjrt007/Tornado.Ai/cache"
)

// DefaultEvictionRatio is the eviction-per-lookup ratio above which a full
// cache is reported degraded.
const DefaultEvictionRatio = 0.5

// StatsSource is anything that can report cache statistics. Both
// *cache.ContentAddressedCache and *scm.Manager satisfy it.
type StatsSource interface {
	Stats() cache.Stats
}

// CacheCheckerConfig configures a CacheChecker.
type CacheCheckerConfig struct {
	// Name overrides the checker name. Default: "cache".
	Name string

	// EvictionRatio is the evictions / (hits + misses) threshold.
	// Default: DefaultEvictionRatio.
	EvictionRatio float64
}

// CacheChecker reports cache occupancy and churn.
type CacheChecker struct {
	src   StatsSource
	name  string
	ratio float64
}

// NewCacheChecker creates a checker reading statistics from src.
func NewCacheChecker(src StatsSource, config CacheCheckerConfig) *CacheChecker {
	if config.Name == "" {
		config.Name = "cache"
	}
	if config.EvictionRatio <= 0 {
		config.EvictionRatio = DefaultEvictionRatio
	}
	return &CacheChecker{src: src, name: config.Name, ratio: config.EvictionRatio}
}

func (c *CacheChecker) Name() string { return c.name }

// Check reports degraded when the cache is full and evicting more than the
// configured share of lookups.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context done", err)
	}
	if c.src == nil {
		return Unhealthy("no cache attached", ErrNilStats)
	}

	s := c.src.Stats()
	details := StatsDetails(s)

	lookups := s.Hits + s.Misses
	if s.Capacity > 0 && s.Size >= s.Capacity && lookups > 0 {
		churn := float64(s.Evictions) / float64(lookups)
		if churn > c.ratio {
			return Degraded(fmt.Sprintf("cache full and thrashing: %.0f%% of lookups evict", churn*100)).
				WithDetails(details)
		}
	}
	return Healthy(fmt.Sprintf("%d/%d entries", s.Size, s.Capacity)).WithDetails(details)
}

// StatsDetails renders a statistics snapshot as check details.
func StatsDetails(s cache.Stats) map[string]any {
	return map[string]any{
		"size":      s.Size,
		"hits":      s.Hits,
		"misses":    s.Misses,
		"evictions": s.Evictions,
		"capacity":  s.Capacity,
		"hit_ratio": s.HitRatio(),
	}
}

var _ StatsSource = (*cache.ContentAddressedCache[any])(nil)
