package health

import "errors"

var (
	// ErrCheckTimeout is attached to results whose checker missed the deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned when no checker has the requested name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrNilStats is attached to results of a cache checker without a stats source.
	ErrNilStats = errors.New("health: stats source is nil")
)
