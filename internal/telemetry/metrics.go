package telemetry

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ServerMetrics holds instruments for inbound HTTP requests.
type ServerMetrics struct {
	RequestCounter  metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ErrorCounter    metric.Int64Counter
}

// NewServerMetrics registers the HTTP instruments on the global meter.
func NewServerMetrics() (*ServerMetrics, error) {
	meter := otel.Meter("storefront/http")

	requestCounter, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"http.server.error.count",
		metric.WithDescription("Total number of HTTP server errors (5xx)"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &ServerMetrics{
		RequestCounter:  requestCounter,
		RequestDuration: requestDuration,
		ErrorCounter:    errorCounter,
	}, nil
}

// RecordRequest records one finished request.
func (m *ServerMetrics) RecordRequest(ctx context.Context, method, route string, status int, durationMs float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
		attribute.String(AttrHTTPStatusCode, strconv.Itoa(status)),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, durationMs, attrs)
	if status >= 500 {
		m.ErrorCounter.Add(ctx, 1, attrs)
	}
}

// SessionMetrics counts session operations by outcome.
type SessionMetrics struct {
	Operations metric.Int64Counter
	Visitors   metric.Int64UpDownCounter
}

// NewSessionMetrics registers the session instruments on the global meter.
func NewSessionMetrics() (*SessionMetrics, error) {
	meter := otel.Meter("storefront/session")

	ops, err := meter.Int64Counter(
		"session.operation.count",
		metric.WithDescription("Session operations by kind and outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	visitors, err := meter.Int64UpDownCounter(
		"session.visitors.active",
		metric.WithDescription("Visitors with a live session provider"),
		metric.WithUnit("{visitor}"),
	)
	if err != nil {
		return nil, err
	}

	return &SessionMetrics{Operations: ops, Visitors: visitors}, nil
}

// RecordOperation records a resolve, login, logout or refresh.
func (m *SessionMetrics) RecordOperation(ctx context.Context, op, outcome string) {
	if m == nil {
		return
	}
	m.Operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrSessionOp, op),
		attribute.String(AttrSessionOutcome, outcome),
	))
}

// VisitorAdded and VisitorEvicted track the registry size.
func (m *SessionMetrics) VisitorAdded(ctx context.Context) {
	if m != nil {
		m.Visitors.Add(ctx, 1)
	}
}

func (m *SessionMetrics) VisitorEvicted(ctx context.Context) {
	if m != nil {
		m.Visitors.Add(ctx, -1)
	}
}

// GuardMetrics counts guard decisions.
type GuardMetrics struct {
	Decisions metric.Int64Counter
}

// NewGuardMetrics registers the guard instruments on the global meter.
func NewGuardMetrics() (*GuardMetrics, error) {
	decisions, err := otel.Meter("storefront/guard").Int64Counter(
		"guard.decision.count",
		metric.WithDescription("Route guard decisions by guard and outcome"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}
	return &GuardMetrics{Decisions: decisions}, nil
}

// RecordDecision records one guard evaluation.
func (m *GuardMetrics) RecordDecision(ctx context.Context, guard, outcome string) {
	if m == nil {
		return
	}
	m.Decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrGuard, guard),
		attribute.String(AttrGuardOutcome, outcome),
	))
}
