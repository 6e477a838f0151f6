// Package apierr provides shared error sentinels and retry infrastructure
// for the HTTP-based scorer clients. Provider-specific failures are
// classified into these sentinels at the adapter boundary.
//
// Callers check with errors.Is(err, apierr.ErrRateLimit) etc.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the API quota was exceeded (billing issue, not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrUnavailable indicates the server or model is temporarily unavailable
	// (5xx, or a model that is still loading).
	ErrUnavailable = errors.New("service unavailable")

	// ErrAuthFailed indicates API authentication failed (missing or invalid token).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotFound indicates the requested model or endpoint does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")
)

// Classify maps an HTTP status code and server message to a sentinel.
// Returns nil for 2xx statuses.
func Classify(statusCode int, message string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusTooManyRequests:
		// Distinguish a temporary rate limit from an exhausted quota.
		lower := strings.ToLower(message)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "billing") {
			return fmt.Errorf("%s: %w", message, ErrQuotaExceeded)
		}
		return fmt.Errorf("%s: %w", message, ErrRateLimit)
	case statusCode == http.StatusPaymentRequired:
		return fmt.Errorf("%s: %w", message, ErrQuotaExceeded)
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", message, ErrAuthFailed)
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", message, ErrNotFound)
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w", message, ErrTimeout)
	case statusCode >= 500:
		return fmt.Errorf("%s: %w", message, ErrUnavailable)
	default:
		return fmt.Errorf("%s: %w", message, ErrBadRequest)
	}
}

// IsRetryable reports whether err is transient: rate limits, timeouts and
// unavailable servers. Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUnavailable)
}
