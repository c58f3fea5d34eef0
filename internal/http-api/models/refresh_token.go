package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken is the persisted session credential. Revoked is a one-way
// flag: rows are never flipped back to active and are only removed by the
// retention cleanup once ExpiresAt plus the grace window has passed.
type RefreshToken struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"not null;index:idx_refresh_tokens_user_state,priority:1" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null;index:idx_refresh_tokens_user_state,priority:3" json:"expires_at"`
	Revoked   bool      `gorm:"default:false;index:idx_refresh_tokens_user_state,priority:2" json:"revoked"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a RefreshToken
func (t *RefreshToken) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
