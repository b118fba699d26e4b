package session

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/reshimgathi/core/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SessionModel{}))
	return db
}

func TestCreateStoresDigestOnly(t *testing.T) {
	db := testDB(t)

	s, err := Create(db, "sess-1", "user-1", Device{ID: "dev-1", Type: "android"}, "raw-refresh", 0)
	require.NoError(t, err)

	assert.Equal(t, Digest("raw-refresh"), s.RefreshTokenHash)
	assert.NotContains(t, s.RefreshTokenHash, "raw-refresh")
	assert.True(t, s.IsActive)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), s.RefreshTokenExpiry, 5*time.Second)
}

func TestValidate(t *testing.T) {
	db := testDB(t)
	_, err := Create(db, "sess-1", "user-1", Device{}, "raw", time.Hour)
	require.NoError(t, err)

	s, err := Validate(db, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.UserID)

	_, err = Validate(db, "missing")
	assert.ErrorIs(t, err, ErrInactive)

	require.NoError(t, Revoke(db, "sess-1"))
	_, err = Validate(db, "sess-1")
	assert.ErrorIs(t, err, ErrInactive)
}

func TestFindActiveChecksOwner(t *testing.T) {
	db := testDB(t)
	_, err := Create(db, "sess-1", "user-1", Device{}, "raw", time.Hour)
	require.NoError(t, err)

	_, err = FindActive(db, "sess-1", "user-1")
	require.NoError(t, err)

	_, err = FindActive(db, "sess-1", "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRotateFarFromExpiryIsNoop(t *testing.T) {
	db := testDB(t)
	s, err := Create(db, "sess-1", "user-1", Device{}, "raw-old", DefaultTTL)
	require.NoError(t, err)
	oldHash := s.RefreshTokenHash

	rotated, err := RotateIfNearExpiry(db, s, "raw-new", DefaultRotateThreshold, DefaultTTL)
	require.NoError(t, err)
	assert.False(t, rotated)
	assert.Equal(t, oldHash, s.RefreshTokenHash)

	var stored models.SessionModel
	require.NoError(t, db.Where("session_id = ?", "sess-1").First(&stored).Error)
	assert.Equal(t, oldHash, stored.RefreshTokenHash)
}

func TestRotateNearExpiry(t *testing.T) {
	db := testDB(t)
	s, err := Create(db, "sess-1", "user-1", Device{}, "raw-old", time.Hour)
	require.NoError(t, err)

	rotated, err := RotateIfNearExpiry(db, s, "raw-new", DefaultRotateThreshold, DefaultTTL)
	require.NoError(t, err)
	assert.True(t, rotated)
	assert.Equal(t, Digest("raw-new"), s.RefreshTokenHash)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), s.RefreshTokenExpiry, 5*time.Second)

	var stored models.SessionModel
	require.NoError(t, db.Where("session_id = ?", "sess-1").First(&stored).Error)
	assert.Equal(t, Digest("raw-new"), stored.RefreshTokenHash)
}

func TestRotateConcurrentLoserGetsConflict(t *testing.T) {
	db := testDB(t)
	s, err := Create(db, "sess-1", "user-1", Device{}, "raw-old", time.Hour)
	require.NoError(t, err)

	// Two handlers loaded the same snapshot.
	stale := *s

	rotated, err := RotateIfNearExpiry(db, s, "raw-winner", DefaultRotateThreshold, DefaultTTL)
	require.NoError(t, err)
	require.True(t, rotated)

	// Force the stale copy past the threshold check so only the CAS decides.
	stale.RefreshTokenExpiry = time.Now().Add(time.Hour)
	_, err = RotateIfNearExpiry(db, &stale, "raw-loser", DefaultRotateThreshold, DefaultTTL)
	assert.ErrorIs(t, err, ErrRotationConflict)

	var stored models.SessionModel
	require.NoError(t, db.Where("session_id = ?", "sess-1").First(&stored).Error)
	assert.Equal(t, Digest("raw-winner"), stored.RefreshTokenHash)
}

func TestRevokeIsNotIdempotent(t *testing.T) {
	db := testDB(t)
	_, err := Create(db, "sess-1", "user-1", Device{}, "raw", time.Hour)
	require.NoError(t, err)
	require.NoError(t, BindPushToken(db, "sess-1", "push-abc"))

	require.NoError(t, Revoke(db, "sess-1"))
	assert.ErrorIs(t, Revoke(db, "sess-1"), ErrNotFound)

	var stored models.SessionModel
	require.NoError(t, db.Where("session_id = ?", "sess-1").First(&stored).Error)
	assert.False(t, stored.IsActive)
	assert.NotNil(t, stored.RevokedAt)
	assert.Nil(t, stored.PushToken)
}

func TestRevokeAll(t *testing.T) {
	db := testDB(t)
	for _, id := range []string{"s1", "s2", "s3"} {
		_, err := Create(db, id, "user-1", Device{}, "raw-"+id, time.Hour)
		require.NoError(t, err)
	}
	_, err := Create(db, "other", "user-2", Device{}, "raw-other", time.Hour)
	require.NoError(t, err)

	n, err := RevokeAll(db, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = Validate(db, "other")
	assert.NoError(t, err)

	n, err = RevokeAll(db, "user-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPushTokens(t *testing.T) {
	db := testDB(t)
	_, err := Create(db, "s1", "user-1", Device{}, "r1", time.Hour)
	require.NoError(t, err)
	_, err = Create(db, "s2", "user-1", Device{}, "r2", time.Hour)
	require.NoError(t, err)

	assert.ErrorIs(t, BindPushToken(db, "missing", "tok"), ErrNotFound)
	require.NoError(t, BindPushToken(db, "s1", "tok-1"))
	require.NoError(t, BindPushToken(db, "s2", "tok-2"))

	require.NoError(t, Revoke(db, "s2"))

	tokens, err := ActivePushTokens(db, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1"}, tokens)
}

func TestPurgeExpired(t *testing.T) {
	db := testDB(t)
	fresh, err := Create(db, "fresh", "user-1", Device{}, "r1", time.Hour)
	require.NoError(t, err)

	stale, err := Create(db, "stale", "user-1", Device{}, "r2", time.Hour)
	require.NoError(t, err)
	require.NoError(t, db.Model(stale).
		Update("refresh_token_expiry", time.Now().Add(-48*time.Hour)).Error)

	n, err := PurgeExpired(db, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var count int64
	require.NoError(t, db.Model(&models.SessionModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err = Validate(db, fresh.SessionID)
	assert.NoError(t, err)
}
