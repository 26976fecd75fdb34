// Package resilience protects tool adapters from overload and repeated
// failure.
//
// A Guard wraps one adapter with three layers, outermost first:
//
//   - Bulkhead: caps concurrent executions and rejects the excess with
//     ErrBulkheadFull.
//   - CircuitBreaker: after MaxFailures consecutive failures, rejects calls
//     with ErrCircuitOpen until ResetTimeout passes, then lets one probe
//     through.
//   - Timeout: abandons an execution that outlives its deadline with
//     ErrTimeout.
//
// Guards keeps one Guard per tool id so that a failing tool cannot starve
// the others:
//
//	guards := resilience.NewGuards(resilience.GuardConfig{MaxConcurrent: 8})
//	err := guards.For("nmap_scan.sim").Do(ctx, func(ctx context.Context) error {
//	    out, err = adapter(ctx, params)
//	    return err
//	})
package resilience
