package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextroute-dev/nextroute/pkg/routes"
)

// tracerName identifies this instrumentation library to the tracer provider.
const tracerName = "nextroute"

// Tracer emits spans around compile and package operations. The zero value
// and nil are both usable and emit nothing.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer resolves a tracer from the global OpenTelemetry provider.
// Configure the provider in main() before building.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(tracerName)}
}

// StartCompile opens the span covering route table compilation.
func (t *Tracer) StartCompile(ctx context.Context, buildID string) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "nextroute.compile",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("nextroute.build_id", buildID)),
	)
}

// StartPackage opens the span covering the whole packaging run.
func (t *Tracer) StartPackage(ctx context.Context, outputDir string) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "nextroute.package",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("nextroute.output_dir", outputDir)),
	)
}

// EndCompile closes the compile span, annotating it with the rule count or
// the failure.
func EndCompile(span trace.Span, table *routes.RouteTable, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("nextroute.rule_count", len(table.Routes)))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// End closes a span, recording err when set.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
