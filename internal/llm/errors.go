package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	// ErrNotConfigured is returned when no provider has been selected.
	ErrNotConfigured = errors.New("LLM provider not configured")

	// ErrEmptyCompletion is returned when the provider answered without text.
	ErrEmptyCompletion = errors.New("LLM returned an empty completion")
)

// ProviderError is an upstream failure. Status is the HTTP status of the
// provider response, or 0 when no response arrived.
type ProviderError struct {
	Provider   string
	Status     int
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Temporary reports whether a later attempt may succeed.
func (e *ProviderError) Temporary() bool {
	switch {
	case e.Status == 0,
		e.Status == http.StatusRequestTimeout,
		e.Status == http.StatusTooManyRequests,
		e.Status >= http.StatusInternalServerError:
		return true
	}
	return false
}

// upstreamError wraps an SDK error. Context errors pass through untouched so
// callers can tell a local deadline from a provider failure.
func upstreamError(provider string, status int, retryAfter time.Duration, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ProviderError{Provider: provider, Status: status, RetryAfter: retryAfter, Err: err}
}

// parseRetryAfter reads a delay-seconds Retry-After header.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
