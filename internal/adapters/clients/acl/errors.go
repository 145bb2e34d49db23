package acl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/clients"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// maxErrorBody bounds how much of an error body is read.
const maxErrorBody = 64 << 10

// ErrorResponse is the upstream error body. The quote API answers
// {"error": "message"}; a nested {"error": {"code", "message", "details"}}
// form and a flat {"code", "message"} form are accepted too.
type ErrorResponse struct {
	Code    string
	Message string
	Details map[string]string
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

// ParseErrorResponse decodes an error body. Returns nil when the body is
// empty, not JSON, or carries no message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}

	out := &ErrorResponse{Code: env.Code, Message: env.Message}

	if len(env.Error) > 0 {
		var msg string
		if err := json.Unmarshal(env.Error, &msg); err == nil {
			out.Message = msg
		} else {
			var detail errorDetail
			if err := json.Unmarshal(env.Error, &detail); err == nil {
				out.Code = detail.Code
				out.Message = detail.Message
				out.Details = detail.Details
			}
		}
	}

	if out.Code == "" && out.Message == "" {
		return nil
	}

	return out
}

// MapHTTPError converts a failed exchange into a domain error. clientErr
// takes precedence; resp is consulted only when clientErr is nil.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation, entityID string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var errResp *ErrorResponse
	if resp.Body != nil {
		errResp = ParseErrorResponse(resp.Body)
	}

	return mapStatusCode(resp.StatusCode, errResp, serviceName, operation, entityID)
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName, "circuit breaker open during "+operation)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName, "max retries exceeded during "+operation)
	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
	}
}

func mapStatusCode(status int, errResp *ErrorResponse, serviceName, operation, entityID string) error {
	message := fmt.Sprintf("%s failed with status %d", operation, status)
	if errResp != nil && errResp.Message != "" {
		message = errResp.Message
	}

	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(entityOf(operation), entityID)
	case status == http.StatusConflict:
		return domain.NewConflictError(entityOf(operation), message)
	case status == http.StatusUnauthorized && errResp != nil && errResp.Message != "":
		return fmt.Errorf("%w: %s", domain.NewUnauthenticatedError(operation), errResp.Message)
	case status == http.StatusUnauthorized:
		return domain.NewUnauthenticatedError(operation)
	case status == http.StatusForbidden:
		return domain.NewForbiddenError(operation, message)
	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")
	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("HTTP %d", status))
	}

	if errResp != nil {
		for field, msg := range errResp.Details {
			return domain.NewValidationError(field, msg)
		}
	}

	return domain.NewValidationError("", message)
}

// entityOf names the resource an operation acts on ("get quote" -> "quote").
func entityOf(operation string) string {
	if i := strings.LastIndexByte(operation, ' '); i >= 0 {
		return operation[i+1:]
	}

	return operation
}
