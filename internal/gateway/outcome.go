package gateway

import (
	"encoding/json"
	"fmt"
	"time"
)

// The error types below form the complete outcome taxonomy for a Send call.
// A call returns nil on success or exactly one of these; callers discriminate
// with errors.As and must never treat a partial decode as success.

// AuthError reports an HTTP 401 response. The session cookie is missing,
// expired, or revoked.
type AuthError struct {
	Endpoint string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication required for %s", e.Endpoint)
}

// HTTPError reports a non-success HTTP status other than 401. Message holds
// the server-provided error text when the body carried one, otherwise a
// generic "HTTP <status>: <statusText>" string. Details preserves the raw
// error body for logging.
type HTTPError struct {
	Status  int
	Message string
	Details json.RawMessage
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NetworkError reports a connection-level failure (refused, DNS, reset).
// The prefix distinguishes connectivity problems from application errors.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that the request deadline elapsed before a response
// arrived. The underlying transport attempt is abandoned.
type TimeoutError struct {
	Endpoint string
	Limit    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.Endpoint, e.Limit)
}

// ParseError reports a 2xx response whose body did not decode as the
// declared payload type.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response from %s: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
