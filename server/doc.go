// Package server exposes the command dispatcher and the resolution cache over
// HTTP.
//
// Routes:
//
//	POST /api/command          execute_tools     run a tool, optionally through the cache
//	GET  /api/tools            view_dashboards   list registered tool ids
//	GET  /api/cache/stats      view_dashboards   cache statistics snapshot
//	POST /api/cache/invalidate configure_system  drop one cached entry
//	GET  /healthz, /readyz, /health, /health/{name}
//	GET  /metrics              when a metrics handler is supplied
//
// Every route is wrapped with request tracing and an access log line.
package server
