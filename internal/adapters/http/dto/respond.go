package dto

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-service/internal/domain"
	"github.com/jsamuelsen/quote-service/internal/platform/logging"
)

// Gin context keys set by the telemetry and request ID middleware.
const (
	TraceIDKey   = "trace_id"
	RequestIDKey = "request_id"
)

// internalErrorMessage is the only text a 500 response ever carries.
const internalErrorMessage = "an internal error occurred"

// MapDomainError maps a domain error to an HTTP status code and error response.
// Storage failures and unknown errors become 500 with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	if domain.IsNotFound(err) {
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())
	}

	return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, internalErrorMessage)
}

// HandleError writes the error envelope for err. 500s are logged with
// their cause, which never reaches the client.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status == http.StatusInternalServerError {
		ctx := c.Request.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "internal error",
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// RespondWithCode writes an adapter-level error, such as a malformed path
// parameter, that did not originate in the domain.
func RespondWithCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithValidationErrors writes a 400 with field-level messages.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	resp := NewErrorResponse(ErrorCodeValidation, "request validation failed").WithDetails(fieldErrors)
	c.JSON(http.StatusBadRequest, resp.WithTraceID(GetTraceID(c)))
}

// GetTraceID returns the ID used to correlate an error response with logs:
// the active span's trace ID, then the value stored under TraceIDKey,
// then the request ID, then the X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	if id, ok := c.Get(TraceIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
		return ""
	}

	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}

	return c.GetHeader("X-Request-ID")
}
