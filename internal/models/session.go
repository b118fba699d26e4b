package models

import "time"

// SessionModel tracks one signed-in device. The raw refresh token is never
// stored; only its SHA-256 digest is, alongside the ledger expiry that
// drives rotation and auto-purge.
type SessionModel struct {
	Base
	SessionID  string `json:"session_id"  gorm:"uniqueIndex;not null"`
	UserID     string `json:"user_id"     gorm:"index:idx_sessions_user_active;not null"`
	DeviceID   string `json:"device_id"`
	DeviceType string `json:"device_type" gorm:"type:varchar(32)"`

	RefreshTokenHash   string    `json:"-"                    gorm:"type:char(64);not null"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry" gorm:"index;not null"`

	IsActive  bool       `json:"is_active"  gorm:"index:idx_sessions_user_active;default:true"`
	RevokedAt *time.Time `json:"revoked_at"`
	PushToken *string    `json:"-"          gorm:"type:text"`
}

func (SessionModel) TableName() string { return "sessions" }
