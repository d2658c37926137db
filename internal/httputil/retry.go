// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the shared retry/backoff contract for source
// backends.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RateLimitError signals that the remote refused the request for rate
// reasons (HTTP 429). Retried with exponential backoff.
type RateLimitError struct {
	Status int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (HTTP %d)", e.Status)
}

// MalformedResponseError signals that the remote answered with something
// that could not be parsed. Never retried: the caller keeps whatever
// records parsed before the fault.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsRateLimit reports whether err is (or wraps) a RateLimitError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsMalformed reports whether err is (or wraps) a MalformedResponseError.
func IsMalformed(err error) bool {
	var m *MalformedResponseError
	return errors.As(err, &m)
}

// CheckStatus converts a non-200 response into the matching taxonomy error:
// 429 becomes a RateLimitError, anything else a plain (transient) error.
func CheckStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{Status: resp.StatusCode}
	default:
		return fmt.Errorf("unexpected HTTP %d", resp.StatusCode)
	}
}

// Defaults for the shared retry contract.
const (
	DefaultMaxAttempts    = 3
	DefaultRateLimitBase  = 2 * time.Second
	DefaultTransientDelay = 2 * time.Second
)

// RetryPolicy bounds and paces repeated fetch attempts. All backends share
// the same shape: at most MaxAttempts tries, exponential backoff starting
// at RateLimitBase on rate-limit signals (2s, 4s), a fixed TransientDelay
// on connectivity failures, and an immediate abort on malformed responses.
//
// Sleep is injectable so tests can observe the requested delays without
// waiting; when nil, a context-aware real sleep is used.
type RetryPolicy struct {
	MaxAttempts    int
	RateLimitBase  time.Duration
	TransientDelay time.Duration
	Sleep          func(time.Duration)

	// Retryable decides whether an error may be retried. When nil every
	// error is, except a MalformedResponseError, which never is.
	Retryable func(error) bool
}

// DefaultPolicy returns the retry policy shared by all backends.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    DefaultMaxAttempts,
		RateLimitBase:  DefaultRateLimitBase,
		TransientDelay: DefaultTransientDelay,
	}
}

// Do runs fn until it succeeds, fails MaxAttempts times, or fails in a way
// that must not be retried. The error returned after exhaustion is the last
// attempt's error; a MalformedResponseError is returned as soon as it occurs.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if IsMalformed(err) {
			return err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		lastErr = err
		if attempt >= maxAttempts {
			return lastErr
		}

		delay := p.transientDelay()
		if IsRateLimit(err) {
			delay = p.rateLimitBase() << (attempt - 1)
		}
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (p RetryPolicy) rateLimitBase() time.Duration {
	if p.RateLimitBase > 0 {
		return p.RateLimitBase
	}
	return DefaultRateLimitBase
}

func (p RetryPolicy) transientDelay() time.Duration {
	if p.TransientDelay > 0 {
		return p.TransientDelay
	}
	return DefaultTransientDelay
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		p.Sleep(d)
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
