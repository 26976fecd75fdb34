// Package observe provides the logging, metrics and tracing primitives used
// around cache resolution.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. The scm manager and the HTTP server accept the
// Logger, ResolveTracer and CacheInstruments defined here; NewObserver wires
// them to OpenTelemetry providers and the configured exporters.
package observe
