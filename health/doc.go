// Package health reports whether the caching service can do useful work.
//
// A Checker reports one component as Healthy, Degraded or Unhealthy. The
// Aggregator runs registered checkers under a shared deadline and folds their
// results into a single status, which the HTTP handlers expose as the usual
// probe endpoints:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewCacheChecker(manager, health.CacheCheckerConfig{}))
//
//	mux.Handle("GET /healthz", health.LivenessHandler())
//	mux.Handle("GET /readyz", health.ReadinessHandler(agg))
//	mux.Handle("GET /health", health.DetailedHandler(agg, manager))
//
// CacheChecker turns a cache statistics snapshot into a result. The cache is
// degraded when it is full and most lookups are causing evictions, which
// usually means MaxEntries is too small for the working set.
package health
