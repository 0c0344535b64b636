package cache

import (
	"context"
	"time"
)

// sweeper is the subset of Cache the janitor needs, independent of the
// payload type parameter.
type sweeper interface {
	Cleanup()
}

// RunJanitor calls Cleanup on every cache at the given interval until the
// context is cancelled. Run it in its own goroutine from the process
// bootstrap; one janitor serves all cache instances.
func RunJanitor(ctx context.Context, interval time.Duration, caches ...sweeper) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, c := range caches {
				c.Cleanup()
			}
		}
	}
}
