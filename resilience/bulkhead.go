package resilience

import (
	"context"
	"sync/atomic"
	"time"
)

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of slots. Default: 10.
	MaxConcurrent int

	// MaxWait is how long to wait for a slot. Zero fails immediately.
	MaxWait time.Duration
}

// Bulkhead caps concurrent executions.
type Bulkhead struct {
	sem      chan struct{}
	maxWait  time.Duration
	rejected atomic.Int64
}

// NewBulkhead creates a bulkhead with config.MaxConcurrent slots.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &Bulkhead{
		sem:     make(chan struct{}, config.MaxConcurrent),
		maxWait: config.MaxWait,
	}
}

// Execute runs op in a slot, or fails with ErrBulkheadFull.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	defer func() { <-b.sem }()
	return op(ctx)
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}

	if b.maxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.maxWait)
	defer timer.Stop()

	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timer.C:
		b.rejected.Add(1)
		return ErrBulkheadFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Active returns the number of occupied slots.
func (b *Bulkhead) Active() int { return len(b.sem) }

// Capacity returns the number of slots.
func (b *Bulkhead) Capacity() int { return cap(b.sem) }

// Rejected returns how many executions were turned away.
func (b *Bulkhead) Rejected() int64 { return b.rejected.Load() }
