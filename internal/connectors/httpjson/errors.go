package httpjson

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// APIError represents a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("httpjson: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// DecodeError represents a response body that is not the expected JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("httpjson: decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RateLimitError represents a 429 response.
type RateLimitError struct {
	URL     string
	RetryAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("httpjson: rate limited by %s until %s", e.URL, e.RetryAt.Format(time.RFC3339))
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsDecode checks if the error is a malformed response body.
func IsDecode(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}

// IsTransient reports whether retrying the request may succeed.
func IsTransient(err error) bool {
	if IsRateLimited(err) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}
