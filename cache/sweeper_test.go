package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type purgeCounter struct {
	calls atomic.Int64
}

func (p *purgeCounter) PurgeExpired() int {
	p.calls.Add(1)
	return 1
}

func TestSweeper_PurgesUntilCancelled(t *testing.T) {
	p := &purgeCounter{}
	var removed atomic.Int64

	s := NewSweeper(p, SweeperConfig{
		Interval: 5 * time.Millisecond,
		OnSweep:  func(n int) { removed.Add(int64(n)) },
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded", err)
	}
	if p.calls.Load() == 0 {
		t.Error("sweeper never purged")
	}
	if removed.Load() != p.calls.Load() {
		t.Errorf("OnSweep saw %d removals, want %d", removed.Load(), p.calls.Load())
	}
}

func TestSweeper_RemovesExpiredEntries(t *testing.T) {
	c := newTestCache(t, 10)
	c.SetWithTTL("short", "v", 10*time.Millisecond)
	c.SetWithTTL("long", "v", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewSweeper(c, SweeperConfig{Interval: 5 * time.Millisecond}).Run(ctx)
	}()

	deadline := time.Now().Add(time.Second)
	for c.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want Canceled", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after sweep", c.Len())
	}
	if got := c.Stats().Misses; got != 0 {
		t.Errorf("sweeping must not count misses, got %d", got)
	}
}

func TestSweeper_DefaultInterval(t *testing.T) {
	s := NewSweeper(&purgeCounter{}, SweeperConfig{})
	if s.config.Interval != DefaultSweepInterval {
		t.Errorf("Interval = %v, want %v", s.config.Interval, DefaultSweepInterval)
	}
}
