// Package clients is the resilient HTTP client used by the upstream API
// adapters in clients/acl.
package clients

import "errors"

// Infrastructure failures. The acl package translates them to domain errors.
var (
	// ErrCircuitOpen means the breaker is rejecting calls to the upstream.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
