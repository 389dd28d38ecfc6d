package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Query outcomes recorded on the store latency histogram.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// storeQueryDuration is registered on the default Prometheus registry and
// scraped from /-/metrics alongside the Go runtime collectors.
var storeQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "quote",
		Subsystem: "store",
		Name:      "query_duration_seconds",
		Help:      "Latency of quote store statements by operation and outcome.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"dialect", "operation", "outcome"},
)

// ObserveQuery records how long a store statement took.
func ObserveQuery(dialect, operation string, start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}

	storeQueryDuration.WithLabelValues(dialect, operation, outcome).Observe(time.Since(start).Seconds())
}

// StartQuery opens a client span for a store statement and returns a
// function that ends it and records the latency histogram:
//
//	ctx, done := telemetry.StartQuery(ctx, "postgres", "insert")
//	defer func() { done(err) }()
//
// With telemetry disabled the global tracer is a noop and only the
// histogram is recorded.
func StartQuery(ctx context.Context, dialect, operation string) (context.Context, func(error)) {
	start := time.Now()

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "quotes."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", dialect),
			attribute.String("db.operation", operation),
			attribute.String("db.sql.table", "quotes"),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		ObserveQuery(dialect, operation, start, err)
	}
}
