package idempotency

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner periodically purges expired keys from a MemoryStore. Redis expires its own keys.
type Cleaner struct {
	store    *MemoryStore
	log      *slog.Logger
	interval time.Duration
}

func NewCleaner(store *MemoryStore, log *slog.Logger, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &Cleaner{
		store:    store,
		log:      log,
		interval: interval,
	}
}

func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.store.Purge(); removed > 0 {
				c.log.Debug("purged expired inbound message keys", slog.Int("removed", removed))
			}
		}
	}
}
