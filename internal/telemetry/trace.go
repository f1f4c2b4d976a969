package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer names.
const (
	TracerBackend = "storefront/backend"
	TracerSession = "storefront/session"
)

// Attribute keys shared by spans and metrics.
const (
	AttrBackendPath   = "backend.path"
	AttrBackendMethod = "backend.method"
	AttrBackendStatus = "backend.status_code"

	AttrSessionOp      = "session.operation"
	AttrSessionOutcome = "session.outcome"

	AttrGuard        = "guard.name"
	AttrGuardOutcome = "guard.outcome"

	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"
)

// StartSpan starts a span on the named tracer.
//
//	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerBackend, "backend.GET",
//	    attribute.String(telemetry.AttrBackendPath, "/auth/me"),
//	)
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError marks the span failed. A nil error is ignored.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
