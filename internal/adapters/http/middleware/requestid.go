// Package middleware provides the Gin middleware chain for the quote API.
package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-service/internal/platform/logging"
)

// Header names and gin context keys for the propagated IDs.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"

	ContextKeyRequestID     = dto.RequestIDKey
	ContextKeyCorrelationID = "correlation_id"
)

// maxIDLength bounds a client-supplied ID. Longer values are replaced.
const maxIDLength = 128

// RequestID reuses the caller's X-Request-ID or generates a UUID, echoes
// it on the response and adds it to the context logger.
func RequestID() gin.HandlerFunc {
	return propagateID(HeaderRequestID, ContextKeyRequestID)
}

// CorrelationID does the same for X-Correlation-ID, which spans every
// request of one client operation rather than a single request.
func CorrelationID() gin.HandlerFunc {
	return propagateID(HeaderCorrelationID, ContextKeyCorrelationID)
}

// GetRequestID returns the request ID, or "" outside the middleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID, or "" outside the middleware.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

func propagateID(header, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if !acceptableID(id) {
			id = uuid.NewString()
		}

		c.Set(key, id)
		c.Header(header, id)
		c.Request = c.Request.WithContext(logging.With(c.Request.Context(), slog.String(key, id)))

		c.Next()
	}
}

// acceptableID admits non-empty printable ASCII without spaces, so a
// client cannot smuggle line breaks into headers or log lines.
func acceptableID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}

	return true
}
