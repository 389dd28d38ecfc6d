package telemetry

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-service/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quote-service/telemetry"

	// traceIDKey is read back by the error envelope writer.
	traceIDKey = "trace_id"

	// HeaderTraceID exposes the request's trace ID to the client.
	HeaderTraceID = "X-Trace-ID"
)

// apiMetrics are the OTel instruments for the quote API.
type apiMetrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newAPIMetrics(meter metric.Meter) (*apiMetrics, error) {
	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Quote API request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Quote API requests served"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Quote API requests in flight"),
	)
	if err != nil {
		return nil, err
	}

	return &apiMetrics{duration: duration, requests: requests, inFlight: inFlight}, nil
}

// Middleware records request metrics and publishes the active trace ID
// three ways: the X-Trace-ID header, the gin context read by error
// responses, and the context logger. Mount it after TracingMiddleware.
func Middleware() gin.HandlerFunc {
	metrics, err := newAPIMetrics(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			c.Set(traceIDKey, traceID)
			c.Header(HeaderTraceID, traceID)
			c.Request = c.Request.WithContext(logging.With(ctx, slog.String("trace_id", traceID)))
		}

		if metrics == nil {
			c.Next()
			return
		}

		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.method", c.Request.Method)
		start := time.Now()

		metrics.inFlight.Add(ctx, 1, metric.WithAttributes(method, route))
		defer metrics.inFlight.Add(ctx, -1, metric.WithAttributes(method, route))

		c.Next()

		done := metric.WithAttributes(method, route, attribute.Int("http.status_code", c.Writer.Status()))
		metrics.duration.Record(ctx, time.Since(start).Seconds(), done)
		metrics.requests.Add(ctx, 1, done)
	}
}

// TracingMiddleware starts a server span per request, continuing any W3C
// trace context sent by the caller.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
