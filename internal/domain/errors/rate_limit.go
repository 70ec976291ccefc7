package errors

import (
	"net/http"
	"time"
)

// Rejection reasons reported by the rate limiters.
const (
	ReasonTooManyAttempts = "too_many_attempts"
	ReasonLockedOut       = "locked_out"
	ReasonReviewLimit     = "review_limit"
	ReasonDailyLimit      = "daily_limit"
)

// RateLimitError is a quota or lockout rejection. It is always a 429 with a
// machine-readable retry-after, never escalated to a 5xx.
type RateLimitError struct {
	reason     string
	message    string
	RetryAfter time.Duration
}

// NewRateLimitError creates a rejection with the given reason and retry-after hint.
func NewRateLimitError(reason, message string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{
		reason:     reason,
		message:    message,
		RetryAfter: retryAfter,
	}
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return e.message
}

// HTTPCode returns the HTTP status code
func (e *RateLimitError) HTTPCode() int {
	return http.StatusTooManyRequests
}

// ErrorCode returns the business error code
func (e *RateLimitError) ErrorCode() string {
	return "RATE_LIMITED"
}

// Message returns the user-friendly error message
func (e *RateLimitError) Message() string {
	return e.message
}

// Details returns the rejection reason
func (e *RateLimitError) Details() string {
	return e.reason
}

// Reason returns the machine-readable rejection reason
func (e *RateLimitError) Reason() string {
	return e.reason
}
