// Package scm implements the Smart Caching Manager: a resolve-or-produce
// front end over the content-addressed cache.
//
// A Manager derives the cache key for a logical request (tool id plus
// parameters), returns the stored value when it is live, and otherwise runs
// the caller's producer, caches its result with the default TTL and returns
// it tagged as freshly produced. Producer errors are returned to the caller
// and nothing is cached.
//
// By default two concurrent resolutions that both miss will both run their
// producer, and the later Set wins. WithSingleFlight collapses such misses
// so that one producer runs per key while the others wait for its result.
//
//	m, err := scm.New[Report](scm.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	res, err := m.Resolve(ctx, "nmap_scan.sim", params, func(ctx context.Context) (Report, error) {
//	    return runScan(ctx, params)
//	})
package scm
