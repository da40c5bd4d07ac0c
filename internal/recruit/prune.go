package recruit

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/recruitbot/internal/surface"
)

// DefaultPruneInterval is how often origins are checked for deletion.
const DefaultPruneInterval = 10 * time.Minute

// Prune retires sessions whose origin post was deleted outside the bot and
// returns how many were removed. Other fetch failures keep the session.
func (c *Controller) Prune(ctx context.Context) int {
	c.mu.RLock()
	entries := make([]*entry, 0, len(c.sessions))
	for _, e := range c.sessions {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	removed := 0
	for _, e := range entries {
		if c.pruneOne(ctx, e) {
			removed++
		}
	}
	return removed
}

func (c *Controller) pruneOne(ctx context.Context, e *entry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s.Cancelled {
		return false
	}
	_, err := c.transport.Fetch(ctx, s.Origin.ChannelID, s.Origin.MessageID)
	if err == nil {
		return false
	}
	if !surface.IsNotFound(err) {
		slog.Warn("Failed to check origin surface", "session_id", s.ID, "error", err)
		return false
	}

	next := s.Clone()
	next.Cancelled = true
	c.retire(ctx, e, next)
	slog.Info("Recruitment retired, origin deleted", "session_id", s.ID, "host_id", s.HostID)
	return true
}

// RunPruner prunes every interval until ctx is done.
func (c *Controller) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	slog.Info("Session pruner started", "interval", interval)

	for {
		select {
		case <-ticker.C:
			if n := c.Prune(ctx); n > 0 {
				slog.Info("Orphaned sessions removed", "count", n)
			}
		case <-ctx.Done():
			slog.Info("Session pruner shutting down", "reason", ctx.Err())
			return
		}
	}
}
