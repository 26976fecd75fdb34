package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables recognised by Load.
const (
	EnvServerHost     = "TORNADO_SERVER_HOST"
	EnvServerPort     = "TORNADO_SERVER_PORT"
	EnvServerCORS     = "TORNADO_SERVER_CORS"
	EnvLogLevel       = "TORNADO_LOG_LEVEL"
	EnvCacheTTL       = "TORNADO_CACHE_TTL"
	EnvCacheMaxTTL    = "TORNADO_CACHE_MAX_TTL"
	EnvCacheMax       = "TORNADO_CACHE_MAX_ENTRIES"
	EnvCacheSweep     = "TORNADO_CACHE_SWEEP_INTERVAL"
	EnvSingleFlight   = "TORNADO_CACHE_SINGLE_FLIGHT"
	EnvAuthEnabled    = "TORNADO_AUTH_ENABLED"
	EnvJWTSecret      = "TORNADO_JWT_SECRET"
	EnvJWTIssuer      = "TORNADO_JWT_ISSUER"
	EnvTracingExport  = "TORNADO_TRACING_EXPORTER"
	EnvMetricsExport  = "TORNADO_METRICS_EXPORTER"
	EnvToolsTimeout   = "TORNADO_TOOLS_TIMEOUT"
	EnvToolsMaxActive = "TORNADO_TOOLS_MAX_CONCURRENT"
)

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.setString(EnvServerHost, &c.Server.Host)
	e.setInt(EnvServerPort, &c.Server.Port)
	e.setBool(EnvServerCORS, &c.Server.CORS)
	e.setString(EnvLogLevel, &c.Observe.LogLevel)
	e.setDuration(EnvCacheTTL, &c.Cache.DefaultTTL)
	e.setDuration(EnvCacheMaxTTL, &c.Cache.MaxTTL)
	e.setInt(EnvCacheMax, &c.Cache.MaxEntries)
	e.setDuration(EnvCacheSweep, &c.Cache.SweepInterval)
	e.setBool(EnvSingleFlight, &c.Cache.SingleFlight)
	e.setBool(EnvAuthEnabled, &c.Auth.Enabled)
	e.setString(EnvJWTSecret, &c.Auth.JWTSecret)
	e.setString(EnvJWTIssuer, &c.Auth.Issuer)
	e.setString(EnvTracingExport, &c.Observe.TracingExporter)
	e.setString(EnvMetricsExport, &c.Observe.MetricsExporter)
	e.setDuration(EnvToolsTimeout, &c.Tools.Timeout)
	e.setInt(EnvToolsMaxActive, &c.Tools.MaxConcurrent)

	return e.err
}

// envReader keeps the first parse error so callers can chain reads.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(key)
	return v, ok && v != ""
}

func (e *envReader) fail(key, value string, err error) {
	e.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, key, value, err)
}

func (e *envReader) setString(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) setInt(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) setBool(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

// setDuration accepts Go duration strings or a bare number of seconds.
func (e *envReader) setDuration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = d
}
