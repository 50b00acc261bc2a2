package fetcher

import (
	"errors"
	"fmt"
	"time"
)

// Fetch errors.
//
// Design decision: Callers only need to tell "the URL is unreachable" from
// "the browser gave up", so both are sentinel errors that the typed errors
// below match via errors.Is while still carrying the URL and the cause.
var (
	// ErrNetwork is matched by every transport-level fetch failure.
	ErrNetwork = errors.New("network error")

	// ErrRenderTimeout is matched when a page did not settle in time.
	ErrRenderTimeout = errors.New("render timeout")

	// ErrBrowserUnavailable is returned when the browser cannot be started.
	ErrBrowserUnavailable = errors.New("browser unavailable")

	// ErrBrowserClosed is returned by Render after Close has been called.
	ErrBrowserClosed = errors.New("browser closed")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// NetworkError describes a failed static fetch.
type NetworkError struct {
	URL string
	Err error
}

// Error implements error.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// RenderTimeoutError describes a render that exceeded its deadline.
type RenderTimeoutError struct {
	URL     string
	Timeout time.Duration
}

// Error implements error.
func (e *RenderTimeoutError) Error() string {
	return fmt.Sprintf("render %s: network did not settle within %s", e.URL, e.Timeout)
}

// Is reports whether target is ErrRenderTimeout.
func (e *RenderTimeoutError) Is(target error) bool {
	return target == ErrRenderTimeout
}
