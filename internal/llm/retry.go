package llm

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryPolicy configures Retry. MaxAttempts of 1 disables retrying: a
// failed generation goes back to the user, who decides whether to submit
// again.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy makes a single attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
}

// delay returns the wait before retry number attempt (0-based). A
// Retry-After from the backend wins; otherwise it is a full-jitter draw
// from an exponentially growing window.
func (p RetryPolicy) delay(attempt int, err error) time.Duration {
	var up *ErrUpstream
	if errors.As(err, &up) && up.RetryAfter > 0 {
		return min(up.RetryAfter, p.MaxDelay)
	}
	window := p.BaseDelay << attempt
	if window <= 0 || window > p.MaxDelay {
		window = p.MaxDelay
	}
	if window <= 0 {
		return 0
	}
	return rand.N(window)
}

// Retry repeats calls that failed for reasons a second call may not hit:
// transport errors, 408, 429 and 5xx answers, and blank or off-schema
// completions. Truncation and other client errors are returned at once.
func Retry(p RetryPolicy) Middleware {
	return func(next Provider) Provider {
		return wrapped{next: next, complete: func(ctx context.Context, req Request) (*Completion, error) {
			var err error
			for attempt := range max(p.MaxAttempts, 1) {
				if attempt > 0 {
					wait := p.delay(attempt-1, err)
					slog.DebugContext(ctx, "retrying completion", "attempt", attempt+1, "wait", wait, "error", err)
					if serr := sleep(ctx, wait); serr != nil {
						return nil, serr
					}
				}
				var c *Completion
				c, err = next.Complete(ctx, req)
				if err == nil {
					return c, nil
				}
				if !retryable(err) {
					return nil, err
				}
			}
			return nil, err
		}}
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var (
		up       *ErrUpstream
		empty    *ErrNoContent
		mismatch *ErrSchemaMismatch
	)
	switch {
	case errors.As(err, &up):
		return up.Temporary()
	case errors.As(err, &empty), errors.As(err, &mismatch):
		return true
	default:
		return false
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
