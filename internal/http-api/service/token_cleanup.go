package service

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/http-api/repository"
)

// TokenCleanup periodically purges refresh-token rows whose expiry is older
// than the retention grace window. Revocation never deletes rows (the
// replay detector needs to see revoked rows), so this job is the only
// thing that removes them.
type TokenCleanup struct {
	tokens   repository.RefreshTokenRepository
	logger   *slog.Logger
	grace    time.Duration
	interval time.Duration
}

func NewTokenCleanup(tokens repository.RefreshTokenRepository, logger *slog.Logger, grace, interval time.Duration) *TokenCleanup {
	return &TokenCleanup{
		tokens:   tokens,
		logger:   logger,
		grace:    grace,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled, sweeping on each tick.
func (c *TokenCleanup) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Sweep deletes rows that expired more than the grace window ago.
func (c *TokenCleanup) Sweep() {
	cutoff := time.Now().Add(-c.grace)
	deleted, err := c.tokens.DeleteExpiredBefore(cutoff)
	if err != nil {
		c.logger.Error("refresh token cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		c.logger.Info("purged expired refresh tokens", "deleted", deleted, "cutoff", cutoff)
	}
}
