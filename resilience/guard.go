package resilience

import (
	"context"
	"sync"
	"time"
)

// GuardConfig configures every Guard built by Guards.
type GuardConfig struct {
	// MaxConcurrent executions per guard. Default: 10.
	MaxConcurrent int

	// MaxWait for a bulkhead slot. Zero rejects immediately.
	MaxWait time.Duration

	// Timeout per execution. Zero disables the deadline.
	Timeout time.Duration

	// MaxFailures and ResetTimeout configure the circuit breaker.
	MaxFailures  int
	ResetTimeout time.Duration

	// OnStateChange is told about breaker transitions of the named guard.
	OnStateChange func(name string, from, to State)
}

// Guard runs an operation behind a bulkhead, a circuit breaker and a timeout.
type Guard struct {
	name     string
	bulkhead *Bulkhead
	breaker  *CircuitBreaker
	timeout  time.Duration
}

// NewGuard creates a guard called name.
func NewGuard(name string, config GuardConfig) *Guard {
	cbConfig := CircuitBreakerConfig{
		MaxFailures:  config.MaxFailures,
		ResetTimeout: config.ResetTimeout,
	}
	if config.OnStateChange != nil {
		cbConfig.OnStateChange = func(from, to State) { config.OnStateChange(name, from, to) }
	}
	return &Guard{
		name:     name,
		bulkhead: NewBulkhead(BulkheadConfig{MaxConcurrent: config.MaxConcurrent, MaxWait: config.MaxWait}),
		breaker:  NewCircuitBreaker(cbConfig),
		timeout:  config.Timeout,
	}
}

// Name returns the guard's name.
func (g *Guard) Name() string { return g.name }

// Do runs op through the guard.
func (g *Guard) Do(ctx context.Context, op func(context.Context) error) error {
	return g.bulkhead.Execute(ctx, func(ctx context.Context) error {
		return g.breaker.Execute(ctx, func(ctx context.Context) error {
			return WithTimeout(ctx, g.timeout, op)
		})
	})
}

// State returns the breaker state.
func (g *Guard) State() State { return g.breaker.State() }

// Guards lazily creates one Guard per name.
type Guards struct {
	config GuardConfig

	mu     sync.Mutex
	guards map[string]*Guard
}

// NewGuards creates an empty set sharing config.
func NewGuards(config GuardConfig) *Guards {
	return &Guards{config: config, guards: make(map[string]*Guard)}
}

// For returns the guard for name, creating it on first use.
func (gs *Guards) For(name string) *Guard {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	g, ok := gs.guards[name]
	if !ok {
		g = NewGuard(name, gs.config)
		gs.guards[name] = g
	}
	return g
}

// States reports the breaker state of every guard created so far.
func (gs *Guards) States() map[string]State {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	states := make(map[string]State, len(gs.guards))
	for name, g := range gs.guards {
		states[name] = g.State()
	}
	return states
}
