package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGuard_OpensAfterFailures(t *testing.T) {
	var changes []string
	gs := NewGuards(GuardConfig{
		MaxFailures: 2,
		OnStateChange: func(name string, from, to State) {
			changes = append(changes, name+":"+to.String())
		},
	})
	ctx := context.Background()

	g := gs.For("sqlmap_scan.sim")
	if gs.For("sqlmap_scan.sim") != g {
		t.Fatal("For() returned a different guard for the same name")
	}

	_ = g.Do(ctx, fail)
	_ = g.Do(ctx, fail)
	if err := g.Do(ctx, succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Do() error = %v, want ErrCircuitOpen", err)
	}

	// Other tools are unaffected.
	if err := gs.For("nmap_scan.sim").Do(ctx, succeed); err != nil {
		t.Fatalf("independent guard error = %v", err)
	}

	states := gs.States()
	if states["sqlmap_scan.sim"] != StateOpen || states["nmap_scan.sim"] != StateClosed {
		t.Errorf("States() = %v", states)
	}
	if len(changes) != 1 || changes[0] != "sqlmap_scan.sim:open" {
		t.Errorf("changes = %v", changes)
	}
}

func TestGuard_TimeoutCountsAsFailure(t *testing.T) {
	g := NewGuard("slow", GuardConfig{Timeout: 5 * time.Millisecond, MaxFailures: 1})
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	if err := g.Do(context.Background(), slow); !errors.Is(err, ErrTimeout) {
		t.Fatalf("Do() error = %v, want ErrTimeout", err)
	}
	if g.State() != StateOpen {
		t.Errorf("State() = %v, want open", g.State())
	}
	if g.Name() != "slow" {
		t.Errorf("Name() = %q", g.Name())
	}
}
