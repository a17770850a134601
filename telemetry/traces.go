package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys
const (
	AttrRideID    = "ridemyway.ride.id"
	AttrRequestID = "ridemyway.request.id"
	AttrCallerID  = "ridemyway.caller.id"
	AttrDecision  = "ridemyway.request.decision"
)

const tracerName = "github.com/ridemyway/ridemyway"

// StartSpan starts a span on the global tracer provider, which NewProvider
// installs. Without a provider the span is a no-op.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
