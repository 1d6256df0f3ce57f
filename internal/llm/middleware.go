package llm

import (
	"context"
	"time"
)

// Middleware decorates a Provider.
type Middleware func(Provider) Provider

// Chain wraps p with mws. The first middleware is the outermost, so it sees
// the call first and the result last.
func Chain(p Provider, mws ...Middleware) Provider {
	for i := len(mws) - 1; i >= 0; i-- {
		p = mws[i](p)
	}
	return p
}

// wrapped is a Provider whose Complete is replaced while Model still
// reports the inner backend.
type wrapped struct {
	next     Provider
	complete func(ctx context.Context, req Request) (*Completion, error)
}

func (w wrapped) Complete(ctx context.Context, req Request) (*Completion, error) {
	return w.complete(ctx, req)
}

func (w wrapped) Model() string { return w.next.Model() }

// Timeout cancels each call after d. Retries behind it share the budget.
func Timeout(d time.Duration) Middleware {
	return func(next Provider) Provider {
		return wrapped{next: next, complete: func(ctx context.Context, req Request) (*Completion, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next.Complete(ctx, req)
		}}
	}
}
