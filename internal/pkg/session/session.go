package session

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/reshimgathi/core/internal/models"
	"gorm.io/gorm"
)

// DefaultTTL is the ledger expiry stamped on creation and rotation. It is
// the authoritative refresh lifetime; the signed refresh token carries its
// own, shorter exp claim.
const (
	DefaultTTL             = 15 * 24 * time.Hour
	DefaultRotateThreshold = 2 * 24 * time.Hour
)

var (
	// ErrNotFound signals a missing or already-revoked session.
	ErrNotFound = errors.New("session not found")
	// ErrInactive signals a session that exists but no longer passes the gate.
	ErrInactive = errors.New("session expired or revoked")
	// ErrRotationConflict signals a concurrent rotation won the digest CAS.
	ErrRotationConflict = errors.New("refresh token rotated concurrently")
)

// Device is the client-supplied device fingerprint bound to a session.
type Device struct {
	ID   string
	Type string
}

// Digest returns the hex SHA-256 of a raw refresh token. Only digests are
// persisted.
func Digest(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// Create persists a new active session holding the digest of rawRefresh.
// SessionID uniqueness is enforced by the unique index.
func Create(db *gorm.DB, sessionID, userID string, device Device, rawRefresh string, ttl time.Duration) (*models.SessionModel, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &models.SessionModel{
		SessionID:          sessionID,
		UserID:             userID,
		DeviceID:           device.ID,
		DeviceType:         device.Type,
		RefreshTokenHash:   Digest(rawRefresh),
		RefreshTokenExpiry: time.Now().Add(ttl),
		IsActive:           true,
	}
	if err := db.Create(s).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

// Validate returns the session when it is still active.
func Validate(db *gorm.DB, sessionID string) (*models.SessionModel, error) {
	var s models.SessionModel
	err := db.Where("session_id = ? AND is_active = ?", sessionID, true).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInactive
		}
		return nil, err
	}
	return &s, nil
}

// FindActive loads a session by id and owner for the refresh protocol.
func FindActive(db *gorm.DB, sessionID, userID string) (*models.SessionModel, error) {
	var s models.SessionModel
	err := db.Where("session_id = ? AND user_id = ? AND is_active = ?", sessionID, userID, true).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// RotateIfNearExpiry replaces the stored digest and expiry with those of
// newRawRefresh when less than threshold remains; otherwise the session is
// untouched and the caller keeps the original refresh token.
//
// The UPDATE is a compare-and-swap on the previously stored digest, so two
// concurrent refreshes for the same session cannot silently clobber each
// other: the loser gets ErrRotationConflict and nothing is mutated.
func RotateIfNearExpiry(db *gorm.DB, s *models.SessionModel, newRawRefresh string, threshold, ttl time.Duration) (bool, error) {
	if threshold <= 0 {
		threshold = DefaultRotateThreshold
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if time.Until(s.RefreshTokenExpiry) >= threshold {
		return false, nil
	}

	newHash := Digest(newRawRefresh)
	newExpiry := time.Now().Add(ttl)
	res := db.Model(&models.SessionModel{}).
		Where("session_id = ? AND is_active = ? AND refresh_token_hash = ?", s.SessionID, true, s.RefreshTokenHash).
		Updates(map[string]interface{}{
			"refresh_token_hash":   newHash,
			"refresh_token_expiry": newExpiry,
		})
	if res.Error != nil {
		return false, fmt.Errorf("rotate session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, ErrRotationConflict
	}
	s.RefreshTokenHash = newHash
	s.RefreshTokenExpiry = newExpiry
	return true, nil
}

// Revoke deactivates a session and clears its push token. Revoking an
// already-inactive session returns ErrNotFound rather than mutating twice.
func Revoke(db *gorm.DB, sessionID string) error {
	now := time.Now()
	res := db.Model(&models.SessionModel{}).
		Where("session_id = ? AND is_active = ?", sessionID, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"revoked_at": &now,
			"push_token": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeAll deactivates every active session of a user and reports how many
// were affected.
func RevokeAll(db *gorm.DB, userID string) (int64, error) {
	now := time.Now()
	res := db.Model(&models.SessionModel{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"revoked_at": &now,
			"push_token": nil,
		})
	return res.RowsAffected, res.Error
}

// BindPushToken attaches a push-messaging token to an active session.
func BindPushToken(db *gorm.DB, sessionID, pushToken string) error {
	res := db.Model(&models.SessionModel{}).
		Where("session_id = ? AND is_active = ?", sessionID, true).
		Update("push_token", pushToken)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ActivePushTokens returns the push tokens bound to a user's active sessions.
func ActivePushTokens(db *gorm.DB, userID string) ([]string, error) {
	var tokens []string
	err := db.Model(&models.SessionModel{}).
		Where("user_id = ? AND is_active = ? AND push_token IS NOT NULL", userID, true).
		Pluck("push_token", &tokens).Error
	return tokens, err
}

// PurgeExpired hard-deletes sessions whose ledger expiry passed more than
// grace ago. Runs from the housekeeping cron.
func PurgeExpired(db *gorm.DB, grace time.Duration) (int64, error) {
	cutoff := time.Now().Add(-grace)
	res := db.Unscoped().
		Where("refresh_token_expiry < ?", cutoff).
		Delete(&models.SessionModel{})
	return res.RowsAffected, res.Error
}
