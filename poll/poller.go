package poll

import (
	"context"
	"time"

	"github.com/declanbyrne/ryanairdump/session"
)

// Fetcher is one periodic fetch operation.
type Fetcher func(ctx context.Context) error

// UpdateFailedError wraps any fetch failure during periodic polling so
// callers can mark data stale without treating the failure as fatal.
type UpdateFailedError struct {
	Err error
}

func (e *UpdateFailedError) Error() string {
	return "update failed: " + e.Err.Error()
}

func (e *UpdateFailedError) Unwrap() error {
	return e.Err
}

// Poller invokes a fetch operation at a fixed interval. Fetch failures are
// logged and wrapped as UpdateFailedError; they never stop the loop. Only
// context cancellation ends a Run.
type Poller struct {
	interval time.Duration
	fetch    Fetcher
	logger   session.Logger
}

// New creates a poller.
func New(interval time.Duration, fetch Fetcher, logger session.Logger) *Poller {
	return &Poller{
		interval: interval,
		fetch:    fetch,
		logger:   logger,
	}
}

// RunOnce performs a single fetch, wrapping any failure.
func (p *Poller) RunOnce(ctx context.Context) error {
	if err := p.fetch(ctx); err != nil {
		return &UpdateFailedError{Err: err}
	}
	return nil
}

// Run fetches immediately and then on every interval tick until the context
// is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.RunOnce(ctx); err != nil {
			p.logger.Warn("periodic update failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
