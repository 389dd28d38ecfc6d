package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-service/internal/platform/logging"
)

// Recovery turns a panic into a 500 carrying the standard error envelope.
// The panic value and stack are logged; the client sees neither. Mount it
// first so it covers every later middleware.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				recovered(c, r)
			}
		}()

		c.Next()
	}
}

func recovered(c *gin.Context, value any) {
	traceID := dto.GetTraceID(c)
	ctx := c.Request.Context()

	logging.FromContext(ctx).ErrorContext(ctx, "panic recovered",
		slog.Any("panic", value),
		slog.String("stack", string(debug.Stack())),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("trace_id", traceID),
	)

	// Part of a response may already be on the wire.
	if c.Writer.Written() {
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred").WithTraceID(traceID))
}
