package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Span attribute keys shared by the tracer, metrics and logs.
const (
	AttrToolID   = "tool.id"
	AttrCacheKey = "cache.key"
	AttrCacheHit = "cache.hit"
	AttrShared   = "cache.shared"
)

// ResolveSpanName returns the deterministic span name for resolving toolID.
// Format: scm.resolve.<toolID>
func ResolveSpanName(toolID string) string {
	return "scm.resolve." + toolID
}

// ResolveTracer wraps OpenTelemetry tracing around cache resolution.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: EndResolve must be best-effort and must not panic.
type ResolveTracer interface {
	// StartResolve starts a span for resolving toolID.
	StartResolve(ctx context.Context, toolID string) (context.Context, trace.Span)

	// EndResolve records the outcome and ends the span.
	EndResolve(span trace.Span, outcome ResolveOutcome)
}

// ResolveOutcome describes how a resolution finished.
type ResolveOutcome struct {
	Key    string
	Cached bool
	Shared bool
	Err    error
}

type resolveTracer struct {
	tracer trace.Tracer
}

// NewResolveTracer wraps an OpenTelemetry tracer.
func NewResolveTracer(t trace.Tracer) ResolveTracer {
	return &resolveTracer{tracer: t}
}

func (t *resolveTracer) StartResolve(ctx context.Context, toolID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, ResolveSpanName(toolID),
		trace.WithAttributes(attribute.String(AttrToolID, toolID)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *resolveTracer) EndResolve(span trace.Span, outcome ResolveOutcome) {
	if outcome.Key != "" {
		span.SetAttributes(attribute.String(AttrCacheKey, outcome.Key))
	}
	span.SetAttributes(
		attribute.Bool(AttrCacheHit, outcome.Cached),
		attribute.Bool(AttrShared, outcome.Shared),
	)

	if outcome.Err != nil {
		span.SetStatus(codes.Error, outcome.Err.Error())
		span.RecordError(outcome.Err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NopResolveTracer returns a tracer whose spans record nothing.
func NopResolveTracer() ResolveTracer {
	return &resolveTracer{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
