package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignParseRoundtrip(t *testing.T) {
	Configure("test-access", "test-refresh", time.Hour, 2*time.Hour)
	t.Cleanup(func() {
		Configure(defaultAccessSecret, defaultRefreshSecret, DefaultAccessTTL, DefaultRefreshTTL)
	})

	token, err := SignAccess("user-1", "sess-1", "a@b.com")
	require.NoError(t, err)

	claims, err := ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenClassesAreNotInterchangeable(t *testing.T) {
	access, err := SignAccess("user-1", "sess-1", "")
	require.NoError(t, err)
	refresh, err := SignRefresh("user-1", "sess-1", "")
	require.NoError(t, err)

	_, err = ParseRefresh(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseExpired(t *testing.T) {
	Configure("", "", time.Nanosecond, time.Nanosecond)
	t.Cleanup(func() {
		Configure(defaultAccessSecret, defaultRefreshSecret, DefaultAccessTTL, DefaultRefreshTTL)
	})

	token, err := SignAccess("user-1", "sess-1", "")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = ParseAccess(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseMalformed(t *testing.T) {
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := ParseAccess(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
	}
}

func TestParseTamperedSignature(t *testing.T) {
	token, err := SignAccess("user-1", "sess-1", "")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ParseAccess(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
