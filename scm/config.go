package scm

import (
	"time"

	"github.com/cjrt007/Tornado.Ai/cache"
)

// Config is supplied at construction; there is no runtime reconfiguration.
type Config struct {
	// DefaultTTL is how long a freshly produced value stays live.
	DefaultTTL time.Duration

	// MaxTTL caps explicit TTLs. Zero means no cap.
	MaxTTL time.Duration

	// MaxEntries is the hard cap on resident entries.
	MaxEntries int
}

// DefaultConfig returns DefaultTTL 5m, MaxTTL 1h and MaxEntries 256.
func DefaultConfig() Config {
	p := cache.DefaultPolicy()
	return Config{
		DefaultTTL: p.DefaultTTL,
		MaxTTL:     p.MaxTTL,
		MaxEntries: p.MaxEntries,
	}
}

func (c Config) policy() cache.Policy {
	return cache.Policy{
		DefaultTTL: c.DefaultTTL,
		MaxTTL:     c.MaxTTL,
		MaxEntries: c.MaxEntries,
	}
}
