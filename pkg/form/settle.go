package form

import (
	"context"
	"time"
)

const settlePoll = 25 * time.Millisecond

// Settle blocks until c is no longer Pending and returns its status. It also
// waits for queued notifications, so subscribers have seen the settled state.
// It must not be called from inside the zone or from a subscriber.
func Settle(ctx context.Context, c Control) (Status, error) {
	changes, cancel := c.StatusChanges().Chan(8)
	defer cancel()

	ticker := time.NewTicker(settlePoll)
	defer ticker.Stop()

	for {
		var (
			status   Status
			disposed bool
			busy     bool
		)
		z := c.Zone()
		z.Do(func() {
			status, disposed, busy = c.Status(), c.Disposed(), z.draining
		})
		if disposed {
			return status, ErrDisposed
		}
		if status != Pending && !busy {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-changes:
		case <-ticker.C:
		}
	}
}
