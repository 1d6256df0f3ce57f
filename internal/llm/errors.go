package llm

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrUpstream reports a failed call to the completion backend: either no
// HTTP response at all (StatusCode 0) or a non-success status. Body is the
// backend's error payload, kept for diagnostics.
type ErrUpstream struct {
	Provider   string
	StatusCode int
	Body       string
	RetryAfter time.Duration
	Err        error
}

func (e *ErrUpstream) Error() string {
	msg := "completion backend unavailable"
	if e.Provider != "" {
		msg = e.Provider + " unavailable"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrUpstream) Unwrap() error { return e.Err }

// RateLimited reports a 429 answer.
func (e *ErrUpstream) RateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// Temporary reports whether repeating the identical call could succeed.
func (e *ErrUpstream) Temporary() bool {
	switch {
	case e.StatusCode == 0, e.StatusCode == http.StatusRequestTimeout, e.RateLimited():
		return true
	default:
		return e.StatusCode >= 500
	}
}

// ErrNoContent means the call succeeded but the model produced no text.
type ErrNoContent struct {
	Model string
}

func (e *ErrNoContent) Error() string {
	if e.Model == "" {
		return "completion has no text"
	}
	return fmt.Sprintf("completion from %s has no text", e.Model)
}

// ErrTruncated means generation stopped at the token limit.
type ErrTruncated struct {
	Content string
}

func (e *ErrTruncated) Error() string { return "completion truncated at the token limit" }

// ErrSchemaMismatch means structured output did not conform to the
// requested schema.
type ErrSchemaMismatch struct {
	Schema  string
	Content string
	Err     error
}

func (e *ErrSchemaMismatch) Error() string {
	return fmt.Sprintf("completion does not match schema %q: %v", e.Schema, e.Err)
}

func (e *ErrSchemaMismatch) Unwrap() error { return e.Err }

// retryAfter reads a Retry-After header given in seconds or as an HTTP date.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
