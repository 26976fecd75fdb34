// Package tools runs the simulated security tool catalog behind the cache.
//
// Every adapter is a dry run: a pure function of its parameters that returns
// a canned report. The Dispatcher executes a Command either directly or
// through an scm.Manager; results served from the cache are re-tagged with
// StatusCached. Each tool runs behind its own resilience.Guard.
//
// Output and Telemetry maps of cached results are shared between callers
// and must be treated as read-only.
package tools
