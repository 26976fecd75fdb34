package cache

import (
	"fmt"
	"time"
)

// Policy configures expiry and capacity.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified. Must be positive.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// MaxEntries is the hard cap on resident entries. Must be positive.
	MaxEntries int
}

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 5 minutes, MaxTTL: 1 hour, MaxEntries: 256
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     1 * time.Hour,
		MaxEntries: 256,
	}
}

// Validate reports whether the policy can back a cache.
func (p Policy) Validate() error {
	if p.DefaultTTL <= 0 {
		return fmt.Errorf("%w: default ttl must be positive, got %v", ErrInvalidPolicy, p.DefaultTTL)
	}
	if p.MaxEntries <= 0 {
		return fmt.Errorf("%w: max entries must be positive, got %d", ErrInvalidPolicy, p.MaxEntries)
	}
	if p.MaxTTL < 0 {
		return fmt.Errorf("%w: max ttl must not be negative, got %v", ErrInvalidPolicy, p.MaxTTL)
	}
	return nil
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}
