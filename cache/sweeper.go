package cache

import (
	"context"
	"time"
)

// DefaultSweepInterval is used when SweeperConfig.Interval is not positive.
const DefaultSweepInterval = time.Minute

// Purger is anything that can drop its expired entries.
type Purger interface {
	PurgeExpired() int
}

// SweeperConfig configures a Sweeper.
type SweeperConfig struct {
	// Interval between purges. Default: 1 minute
	Interval time.Duration

	// OnSweep, if set, is called after every purge with the number of entries removed.
	OnSweep func(removed int)
}

// Sweeper periodically purges expired entries so memory held by entries
// nobody reads again is released before the next Set.
type Sweeper struct {
	purger Purger
	config SweeperConfig
}

// NewSweeper creates a sweeper for p.
func NewSweeper(p Purger, config SweeperConfig) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultSweepInterval
	}
	return &Sweeper{purger: p, config: config}
}

// Run purges on every tick until ctx is done, then returns ctx.Err().
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed := s.purger.PurgeExpired()
			if s.config.OnSweep != nil {
				s.config.OnSweep(removed)
			}
		}
	}
}

// Ensure ContentAddressedCache implements Purger
var _ Purger = (*ContentAddressedCache[any])(nil)
