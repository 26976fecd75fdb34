package resilience

import (
	"context"
	"errors"
	"time"
)

// WithTimeout runs op with a deadline of d. When the deadline passes before
// op returns, WithTimeout returns ErrTimeout without waiting for op; op sees
// its context cancelled. A non-positive d runs op without a deadline.
func WithTimeout(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	if d <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- op(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
