package llm

import (
	"context"
	"fmt"

	"github.com/examforge/examforge/internal/store"
)

// NewProvider opens the configured backend and wraps it as
//
//	caller → timeout → retry → event log → backend
//
// so every attempt is recorded and the timeout covers all of them. A nil
// events repo keeps the log lines but persists nothing.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := backends[cfg.Provider]
	cfg.Model = b.model(cfg.Model)

	base, err := b.open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	var mws []Middleware
	if cfg.Timeout > 0 {
		mws = append(mws, Timeout(cfg.Timeout))
	}
	if cfg.Retry.MaxAttempts > 1 {
		mws = append(mws, Retry(cfg.Retry))
	}
	mws = append(mws, RecordEvents(cfg.Provider, events))
	return Chain(base, mws...), nil
}
