package registration

import (
	"context"
	"log/slog"
	"time"
)

// RunSweeper purges pending registrations that expired more than retention
// ago, every interval until ctx is cancelled. Inside the retention window a
// late verify still finds the record and reports it expired.
func RunSweeper(ctx context.Context, store PendingStore, interval, retention time.Duration, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.SweepExpired(ctx, now().Add(-retention))
			if err != nil {
				slog.Warn("sweep expired pending registrations", "err", err)
				continue
			}
			if n > 0 {
				slog.Info("swept expired pending registrations", "count", n)
			}
		}
	}
}
