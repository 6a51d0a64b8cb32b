package subscription

import (
	"context"
	"log/slog"
	"time"
)

// DefaultWatchInterval is how often a Watcher refreshes.
const DefaultWatchInterval = time.Minute

// Watcher refreshes one user's subscription on an interval until its
// context is cancelled.
type Watcher struct {
	Billing  *Billing
	Store    Store
	UserID   string
	Token    string
	Interval time.Duration
	Logger   *slog.Logger

	// OnRefresh, when set, receives every refreshed subscription.
	OnRefresh func(*Subscription)

	// Now defaults to time.Now.
	Now func() time.Time
}

// Run refreshes immediately, then on every tick. Refresh failures are
// logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	now := w.Now
	if now == nil {
		now = time.Now
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sub, err := Refresh(ctx, w.Billing, w.Store, w.UserID, w.Token, now())
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn("subscription refresh failed", "user_id", w.UserID, "error", err)
		case err == nil && w.OnRefresh != nil:
			w.OnRefresh(sub)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
