package source

import (
	"errors"
	"fmt"
)

// NetworkError is returned when a source cannot be reached at the transport
// level: timeout, connection refused, DNS failure.
type NetworkError struct {
	Op    string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("source: network error during %s: %v", e.Op, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// ServerError is returned when a source answered with an HTTP status >= 500.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("source: server error: status %d", e.Status)
}

// ClientError is returned for HTTP 4xx responses. It indicates a malformed
// request, not source unavailability: it is never retried and never triggers
// a fallback.
type ClientError struct {
	Status int
	Body   string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("source: client error: status %d", e.Status)
}

// AuthError is returned when blob access is rejected, typically because the
// SAS token is expired or invalid.
type AuthError struct {
	Resource string
	Cause    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("source: auth rejected for %s: %v", e.Resource, e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// ParseError is returned when a table cell does not match its declared
// schema. Line is the 1-based data line within the file, not counting the
// header.
type ParseError struct {
	Table  string
	Line   int
	Column string
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("source: parse error in %s line %d column %q: %v", e.Table, e.Line, e.Column, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// EmptyResultError is returned when a join or aggregation yields zero usable
// rows for a resource.
type EmptyResultError struct {
	Resource string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("source: empty result for %s", e.Resource)
}

// IsFatal reports whether err belongs to the fatal class that trips the
// fallback flag immediately, without waiting for the failure threshold.
func IsFatal(err error) bool {
	var netErr *NetworkError
	var srvErr *ServerError
	return errors.As(err, &netErr) || errors.As(err, &srvErr)
}

// IsClientError reports whether err is a 4xx from the primary source.
func IsClientError(err error) bool {
	var cliErr *ClientError
	return errors.As(err, &cliErr)
}
