package service

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/http-api/models"
	"storefront/internal/http-api/repository"
)

const replayReason = "revoked token reused"

// ReplayDetector reacts to a revoked refresh token being presented again.
// Seeing one means the session chain has forked: either the token was
// stolen, or the legitimate holder lost the successor. Both cases get the
// same treatment, revoke everything the user has and raise an alert.
type ReplayDetector struct {
	tokens       repository.RefreshTokenRepository
	alerts       AlertSink
	logger       *slog.Logger
	alertTimeout time.Duration
}

func NewReplayDetector(tokens repository.RefreshTokenRepository, alerts AlertSink, logger *slog.Logger, alertTimeout time.Duration) *ReplayDetector {
	return &ReplayDetector{
		tokens:       tokens,
		alerts:       alerts,
		logger:       logger,
		alertTimeout: alertTimeout,
	}
}

// HandleReplay revokes every token for the owning user, then fires a
// best-effort compromise alert. The revocation runs first and is never
// skipped; alert errors are logged and swallowed so they cannot reach the
// HTTP layer or undo the revocation.
func (d *ReplayDetector) HandleReplay(token *models.RefreshToken, currentIP, currentUserAgent string) {
	d.logger.Error("refresh token replay detected",
		"user_id", token.UserID,
		"token_id", token.ID,
		"ip", currentIP,
		"user_agent", currentUserAgent,
		"original_ip", token.IPAddress,
	)

	if err := d.tokens.RevokeAllForUser(token.UserID); err != nil {
		d.logger.Error("failed to revoke user tokens after replay",
			"user_id", token.UserID,
			"error", err,
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.alertTimeout)
	defer cancel()
	if err := d.alerts.NotifyPossibleCompromise(ctx, token.UserID, currentIP, currentUserAgent, replayReason); err != nil {
		d.logger.Warn("security alert dispatch failed",
			"user_id", token.UserID,
			"error", err,
		)
	}
}
