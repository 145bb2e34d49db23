// Package dto holds the JSON shapes of the gateway API and the helpers that
// write them.
package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/logging"
)

// ErrorResponse is the envelope of every error reply.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail describes one failure. Details carries per-field messages for
// validation failures.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Machine-readable error codes.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInternal     = "INTERNAL_ERROR"
)

const internalMessage = "an internal error occurred"

// NewError builds an envelope.
func NewError(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// StatusOf returns the HTTP status for an error code.
func StatusOf(code string) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError maps a domain error onto a status and envelope. Errors that match
// no domain sentinel become a generic 500 so internals never leak.
func FromError(err error) (int, *ErrorResponse) {
	var code string

	switch {
	case domain.IsValidation(err):
		code = CodeValidation
	case domain.IsUnauthenticated(err):
		code = CodeUnauthorized
	case domain.IsForbidden(err):
		code = CodeForbidden
	case domain.IsNotFound(err):
		code = CodeNotFound
	case domain.IsConflict(err):
		code = CodeConflict
	case domain.IsUnavailable(err):
		code = CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, NewError(CodeTimeout, "request timeout exceeded")
	default:
		return http.StatusInternalServerError, NewError(CodeInternal, internalMessage)
	}

	resp := NewError(code, err.Error())

	if code == CodeValidation {
		resp.Error.Details = fieldDetails(err)
	}

	return StatusOf(code), resp
}

func fieldDetails(err error) map[string]string {
	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		return map[string]string(fields)
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		return map[string]string{ve.Field: ve.Message}
	}

	return nil
}

// TraceID returns the active span's trace id, or empty.
func TraceID(c *gin.Context) string {
	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}

// Error writes err as an error reply. Unmapped errors are logged.
func Error(c *gin.Context, err error) {
	status, resp := prepare(c, err)
	c.JSON(status, resp)
}

// Abort is Error that also stops the handler chain.
func Abort(c *gin.Context, err error) {
	status, resp := prepare(c, err)
	c.AbortWithStatusJSON(status, resp)
}

// AbortCode stops the chain with a fixed code and message.
func AbortCode(c *gin.Context, code, message string) {
	resp := NewError(code, message)
	resp.TraceID = TraceID(c)

	if c.Writer.Written() {
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(StatusOf(code), resp)
}

func prepare(c *gin.Context, err error) (int, *ErrorResponse) {
	status, resp := FromError(err)
	resp.TraceID = TraceID(c)

	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "unhandled error",
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	return status, resp
}
