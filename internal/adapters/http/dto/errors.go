// Package dto holds the HTTP wire shapes shared by the quote handlers:
// the error envelope, request binding and validation.
package dto

import "net/http"

// ErrorResponse is the body of every non-2xx quote API response.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail describes a single failure.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Machine-readable error codes.
const (
	ErrorCodeBadRequest      = "BAD_REQUEST"
	ErrorCodeValidation      = "VALIDATION_ERROR"
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrorCodeUnavailable     = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal        = "INTERNAL_ERROR"
)

// codeStatus is the HTTP status written for each code. Unknown codes are 500.
var codeStatus = map[string]int{
	ErrorCodeBadRequest:      http.StatusBadRequest,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeNotFound:        http.StatusNotFound,
	ErrorCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
}

// NewErrorResponse builds an envelope without details.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// WithDetails attaches per-field messages.
func (e *ErrorResponse) WithDetails(details map[string]string) *ErrorResponse {
	if len(details) > 0 {
		e.Error.Details = details
	}

	return e
}

// WithTraceID sets the correlation ID echoed back to the client.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode returns the status written for code.
func HTTPStatusFromCode(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}
