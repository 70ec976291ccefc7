package errors

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code       string `json:"code"`                  // Business error code, e.g., "REVIEW_NOT_FOUND"
	Details    string `json:"details,omitempty"`     // Detailed error information (optional)
	RetryAfter int64  `json:"retry_after,omitempty"` // Seconds until the caller may retry (rate limits)
}

// Response defines the unified envelope the error middleware writes.
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}
