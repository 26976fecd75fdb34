package resilience

import "errors"

var (
	ErrCircuitOpen  = errors.New("resilience: circuit breaker is open")
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")
	ErrTimeout      = errors.New("resilience: operation timed out")
)
