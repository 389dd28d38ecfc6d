package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-service/internal/platform/telemetry"
)

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is seeded into every request context.
	Logger *slog.Logger

	// ServiceName names the server spans.
	ServiceName string

	// HealthHandler serves GET / and the /-/ probes.
	HealthHandler *handlers.HealthHandler

	// QuoteHandler serves /quotes.
	QuoteHandler *handlers.QuoteHandler

	// Timeout bounds each /quotes request. Zero leaves requests unbounded.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Context logger - seed the request logger
//  3. Request ID - generate/extract request ID
//  4. Correlation ID - handle distributed tracing correlation
//  5. OpenTelemetry - tracing, then metrics and X-Trace-ID
//  6. Logging - request logging (skips probes)
//  7. Timeout - /quotes only, when configured
//
// Routes:
//   - GET / and /-/ (internal): health and probes
//   - /quotes: the quote API
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.ServiceName),
		telemetry.Middleware(),
		middleware.Logging(),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(engine)
	}

	if cfg.QuoteHandler == nil {
		return
	}

	api := engine.Group("")
	if cfg.Timeout > 0 {
		api.Use(middleware.RequestTimeout(cfg.Timeout))
	}

	cfg.QuoteHandler.RegisterQuoteRoutes(api)
}
