package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// StalePurger deletes every profile namespace whose entries were all last
// written before a cutoff.
type StalePurger interface {
	PurgeStale(ctx context.Context, before time.Time) (int64, error)
}

// Retention removes persisted profile data once its cookie can no longer
// be presented. Every entry of a namespace is written after the profile
// was issued, so a namespace untouched for ProfileTTL belongs to an
// expired profile.
type Retention struct {
	purger StalePurger
	maxAge time.Duration
	now    func() time.Time
}

// NewRetention creates a retention policy keeping data for maxAge.
func NewRetention(purger StalePurger, maxAge time.Duration) *Retention {
	return &Retention{purger: purger, maxAge: maxAge, now: time.Now}
}

// Purge deletes expired namespaces and returns the number of rows removed.
func (r *Retention) Purge(ctx context.Context) (int64, error) {
	n, err := r.purger.PurgeStale(ctx, r.now().Add(-r.maxAge))
	if err != nil {
		return 0, fmt.Errorf("purge stale profiles: %w", err)
	}
	return n, nil
}

// Run purges once at start and then every interval until ctx is done.
// Failures are logged and retried on the next tick.
func (r *Retention) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if n, err := r.Purge(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("retention", "error", err)
		} else if n > 0 {
			slog.Info("purged stale profile data", "rows", n)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
