package repository

import (
	"time"

	"storefront/internal/http-api/models"

	"gorm.io/gorm"
)

// RefreshTokenRepository handles database operations for refresh tokens.
// Rotation correctness depends on TryClaimForRotation being a single
// conditional UPDATE, so only one of two racing refresh calls can win.
type RefreshTokenRepository interface {
	Create(token *models.RefreshToken) error
	FindByToken(tokenValue string) (*models.RefreshToken, error)
	TryClaimForRotation(tokenValue string) (bool, error)
	Revoke(tokenValue string) error
	RevokeAllForUser(userID string) error
	DeleteExpiredBefore(cutoff time.Time) (int64, error)
}

// refreshTokenRepository is the GORM implementation of RefreshTokenRepository
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new instance of RefreshTokenRepository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// Create: inserts a new refresh token row. The token value carries a unique
// index, so a duplicate value fails here instead of silently colliding.
func (r *refreshTokenRepository) Create(token *models.RefreshToken) error {
	return r.db.Create(token).Error
}

// FindByToken: look up the refresh token by its opaque value
func (r *refreshTokenRepository) FindByToken(tokenValue string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.Where("token = ?", tokenValue).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// TryClaimForRotation atomically flips revoked false->true for the given
// token value. Returns true when this caller caused the transition; false
// means the row was already revoked (prior rotation, logout, or a
// concurrent refresh that got there first).
func (r *refreshTokenRepository) TryClaimForRotation(tokenValue string) (bool, error) {
	res := r.db.Model(&models.RefreshToken{}).
		Where("token = ? AND revoked = ?", tokenValue, false).
		Update("revoked", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Revoke: marks a single refresh token as revoked. Revoking an already
// revoked row is a no-op.
func (r *refreshTokenRepository) Revoke(tokenValue string) error {
	return r.db.Model(&models.RefreshToken{}).
		Where("token = ?", tokenValue).
		Update("revoked", true).Error
}

// RevokeAllForUser: revokes every refresh token belonging to a user.
// Idempotent; used by replay detection to kill the whole session chain.
func (r *refreshTokenRepository) RevokeAllForUser(userID string) error {
	return r.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

// DeleteExpiredBefore: bulk delete of rows whose expiry predates the cutoff.
// Owned by the retention cleanup job, not by the request path.
func (r *refreshTokenRepository) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("expires_at < ?", cutoff).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
