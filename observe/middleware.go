package observe

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HTTPMiddleware wraps HTTP handlers with a server span and an access log entry.
//
// Contract:
//   - Concurrency: Wrap returns a handler safe for concurrent use.
//   - Context: the span context is propagated to the wrapped handler.
//   - Ownership: requests and responses pass through unmodified.
type HTTPMiddleware struct {
	tracer trace.Tracer
	logger Logger
}

// NewHTTPMiddleware creates a middleware from a tracer and logger.
func NewHTTPMiddleware(tracer trace.Tracer, logger Logger) *HTTPMiddleware {
	return &HTTPMiddleware{tracer: tracer, logger: logger}
}

// HTTPMiddlewareFromObserver creates an HTTPMiddleware from an Observer.
func HTTPMiddlewareFromObserver(obs Observer) *HTTPMiddleware {
	return NewHTTPMiddleware(obs.Tracer(), obs.Logger())
}

// Wrap wraps next with tracing and logging.
func (m *HTTPMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "http "+r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.path", r.URL.Path),
			),
		)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)
		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
		span.End()

		fields := []Field{
			F("method", r.Method),
			F("path", r.URL.Path),
			F("status", rec.status),
			F("duration_ms", float64(duration.Microseconds())/1000),
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			m.logger.Error(ctx, "request failed", fields...)
		case rec.status >= http.StatusBadRequest:
			m.logger.Warn(ctx, "request rejected", fields...)
		default:
			m.logger.Info(ctx, "request completed", fields...)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}
