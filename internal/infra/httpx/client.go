// Package httpx wraps outbound HTTP calls with timeout, bounded retry and
// exponential backoff with jitter. Every remote-API caller goes through it.
package httpx

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"reviewhub/config"

	"github.com/pkg/errors"
)

const (
	maxBackoff = 30 * time.Second
	maxJitter  = 200 * time.Millisecond
)

// ErrTimeout marks an attempt that exceeded the profile's timeout. Callers
// classify it as an upstream error.
var ErrTimeout = errors.New("request timed out")

// Profile tunes timeout and retry behavior for one downstream dependency.
// Profiles are configuration, not logic: a slower generative backend gets a
// longer timeout and fewer retries, the directory API the opposite.
type Profile struct {
	Timeout    time.Duration
	MaxRetries int // Additional attempts after the first one.
	RetryDelay time.Duration

	// RetryableStatusCodes overrides the default retryable set
	// (408, 429 and all 5xx) when non-nil.
	RetryableStatusCodes []int
}

// DefaultProfile is a sane middle ground for token-endpoint style calls.
var DefaultProfile = Profile{
	Timeout:    10 * time.Second,
	MaxRetries: 2,
	RetryDelay: 500 * time.Millisecond,
}

// FromConfig maps a configured fetch profile onto a Profile. A nil or
// partially filled config falls back to DefaultProfile values.
func FromConfig(p *config.FetchProfile) Profile {
	if p == nil {
		return DefaultProfile
	}

	return Profile{
		Timeout:    p.Timeout,
		MaxRetries: p.MaxRetries,
		RetryDelay: p.RetryDelay,
	}
}

func (p Profile) retryable(statusCode int) bool {
	if p.RetryableStatusCodes != nil {
		for _, code := range p.RetryableStatusCodes {
			if code == statusCode {
				return true
			}
		}

		return false
	}

	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= 500
}

// Response is a fully drained HTTP response. Draining inside the attempt
// keeps the body read within the attempt's timeout.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client retries transient failures against one downstream dependency.
type Client struct {
	httpClient *http.Client
	profile    Profile
	logger     *slog.Logger
}

// NewClient builds a resilient client for the given profile. Zero profile
// fields fall back to DefaultProfile values.
func NewClient(profile Profile, logger *slog.Logger) *Client {
	if profile.Timeout <= 0 {
		profile.Timeout = DefaultProfile.Timeout
	}
	if profile.MaxRetries < 0 {
		profile.MaxRetries = 0
	}
	if profile.RetryDelay <= 0 {
		profile.RetryDelay = DefaultProfile.RetryDelay
	}

	return &Client{
		// The per-attempt context carries the deadline; the transport just
		// needs to honor cancellation.
		httpClient: &http.Client{},
		profile:    profile,
		logger:     logger,
	}
}

// Do executes the request with the client's retry policy. The build function
// is invoked once per attempt so request bodies are never reused across
// attempts. Non-retryable statuses return immediately without consuming
// retry budget; a retryable status after the last attempt is returned as-is
// for the caller to map.
func (c *Client) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.profile.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
		}

		resp, err := c.attempt(ctx, build)
		if err != nil {
			if ctx.Err() != nil {
				// The caller's context ended; no point in retrying.
				return nil, err
			}

			c.logger.Warn("Outbound request attempt failed",
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
			lastErr = err

			continue
		}

		if c.profile.retryable(resp.StatusCode) && attempt < c.profile.MaxRetries {
			c.logger.Warn("Outbound request returned retryable status",
				slog.Int("attempt", attempt),
				slog.Int("status", resp.StatusCode),
			)
			lastErr = errors.Errorf("retryable status %d", resp.StatusCode)

			continue
		}

		return resp, nil
	}

	return nil, errors.Wrap(lastErr, "retries exhausted")
}

// attempt races one request against the profile timeout. Cancellation
// propagates through the transport, so an aborted request releases its
// connection promptly.
func (c *Client) attempt(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.profile.Timeout)
	defer cancel()

	req, err := build(attemptCtx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, errors.WithStack(ErrTimeout)
		}

		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, errors.WithStack(ErrTimeout)
		}

		return nil, errors.Wrap(err, "failed to read response body")
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// wait sleeps the exponential backoff for the given attempt index, with
// random jitter so concurrent callers do not retry in lockstep.
func (c *Client) wait(ctx context.Context, attempt int) error {
	delay := c.profile.RetryDelay << (attempt - 1)
	if delay > maxBackoff {
		delay = maxBackoff
	}
	delay += rand.N(maxJitter)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	case <-timer.C:
		return nil
	}
}
