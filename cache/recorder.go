package cache

// Recorder receives cache lifecycle events, typically to export them as metrics.
//
// Contract:
//   - Concurrency: methods are called with the cache lock held and must not
//     call back into the cache.
//   - Errors: implementations must not panic.
type Recorder interface {
	// Hit is called when Get returns a live entry.
	Hit()

	// Miss is called when Get finds no entry or an expired one.
	Miss()

	// Eviction is called for each capacity-triggered removal.
	Eviction()

	// Expiration is called for each entry removed because its TTL passed.
	Expiration()
}

// NoopRecorder ignores all events.
type NoopRecorder struct{}

func (NoopRecorder) Hit()        {}
func (NoopRecorder) Miss()       {}
func (NoopRecorder) Eviction()   {}
func (NoopRecorder) Expiration() {}

var _ Recorder = NoopRecorder{}
