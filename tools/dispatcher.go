package tools

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/cjrt007/Tornado.Ai/observe"
	"github.com/cjrt007/Tornado.Ai/resilience"
	"github.com/cjrt007/Tornado.Ai/scm"
)

// Command asks for one tool execution.
type Command struct {
	ToolID   string         `json:"toolId"`
	Params   map[string]any `json:"params"`
	UseCache bool           `json:"useCache"`
	UserID   string         `json:"userId"`
}

// Response is the outcome of a Command.
type Response struct {
	Result          ExecutionResult `json:"result"`
	FallbackActions []string        `json:"fallbackActions"`
}

// DefaultGuardConfig is the per-tool guard used when WithGuards is not given.
func DefaultGuardConfig() resilience.GuardConfig {
	return resilience.GuardConfig{
		MaxConcurrent: 16,
		MaxWait:       5 * time.Second,
		Timeout:       30 * time.Second,
		MaxFailures:   5,
		ResetTimeout:  30 * time.Second,
	}
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the audit logger.
func WithLogger(l observe.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithGuards replaces the default per-tool guards.
func WithGuards(g *resilience.Guards) DispatcherOption {
	return func(d *Dispatcher) {
		if g != nil {
			d.guards = g
		}
	}
}

// WithClock overrides the time source used for telemetry.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// Dispatcher executes commands against a catalog, optionally through a cache.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: unknown tools return ErrUnknownTool and touch neither cache nor
//     guards. Adapter failures return an errored Response together with the error.
//   - Ownership: top-level Output and Telemetry maps of cached results are
//     copies; nested values are shared with the cache and must not be mutated.
type Dispatcher struct {
	catalog *Catalog
	manager *scm.Manager[ExecutionResult]
	guards  *resilience.Guards
	logger  observe.Logger
	now     func() time.Time
}

// NewDispatcher creates a dispatcher resolving cached commands through manager.
func NewDispatcher(catalog *Catalog, manager *scm.Manager[ExecutionResult], opts ...DispatcherOption) (*Dispatcher, error) {
	if catalog == nil {
		return nil, ErrNilCatalog
	}
	if manager == nil {
		return nil, ErrNilManager
	}
	d := &Dispatcher{
		catalog: catalog,
		manager: manager,
		guards:  resilience.NewGuards(DefaultGuardConfig()),
		logger:  observe.NopLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Catalog returns the dispatcher's catalog.
func (d *Dispatcher) Catalog() *Catalog { return d.catalog }

// Execute runs cmd. With UseCache the result is resolved through the cache
// and a hit is reported with StatusCached and Cached set.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) (*Response, error) {
	adapter, ok := d.catalog.Lookup(cmd.ToolID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, cmd.ToolID)
	}

	produce := func(ctx context.Context) (ExecutionResult, error) {
		return d.run(ctx, cmd.ToolID, adapter, cmd.Params)
	}

	var (
		result ExecutionResult
		err    error
	)
	if cmd.UseCache {
		var res scm.Result[ExecutionResult]
		res, err = d.manager.Resolve(ctx, cmd.ToolID, cmd.Params, produce)
		result = res.Value
		if err == nil {
			// The stored entry must not alias maps handed to callers.
			result.Output = maps.Clone(result.Output)
			result.Telemetry = maps.Clone(result.Telemetry)
		}
		if err == nil && res.Cached {
			result.Status = StatusCached
			result.Cached = true
		}
	} else {
		result, err = produce(ctx)
	}

	if err != nil {
		result = ExecutionResult{
			ToolID:    cmd.ToolID,
			Status:    StatusErrored,
			Output:    map[string]any{"error": err.Error()},
			Telemetry: map[string]any{"mode": "dry-run"},
		}
	}
	d.audit(ctx, cmd, result)

	resp := &Response{Result: result, FallbackActions: FallbackActions(cmd.ToolID)}
	if err != nil {
		return resp, fmt.Errorf("tools: execute %q: %w", cmd.ToolID, err)
	}
	return resp, nil
}

func (d *Dispatcher) run(ctx context.Context, toolID string, adapter Adapter, params map[string]any) (ExecutionResult, error) {
	start := d.now()
	var output map[string]any
	err := d.guards.For(toolID).Do(ctx, func(context.Context) error {
		output = adapter(params)
		return nil
	})
	if err != nil {
		return ExecutionResult{}, err
	}

	return ExecutionResult{
		ToolID: toolID,
		Status: StatusCompleted,
		Output: output,
		Telemetry: map[string]any{
			"mode":       "dry-run",
			"producedAt": start.UTC().Format(time.RFC3339Nano),
			"durationMs": float64(d.now().Sub(start).Microseconds()) / 1000,
		},
	}, nil
}

func (d *Dispatcher) audit(ctx context.Context, cmd Command, result ExecutionResult) {
	outcome := "success"
	if !result.Succeeded() {
		outcome = "failure"
	}
	userID := cmd.UserID
	if userID == "" {
		userID = "system"
	}
	d.logger.Info(ctx, "command executed",
		observe.F("user.id", userID),
		observe.F(observe.AttrToolID, cmd.ToolID),
		observe.F("status", string(result.Status)),
		observe.F(observe.AttrCacheHit, result.Cached),
		observe.F("outcome", outcome),
	)
}
