package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/reshimgathi/core/internal/models"
	"github.com/reshimgathi/core/internal/pkg/jwt"
	sessionpkg "github.com/reshimgathi/core/internal/pkg/session"
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

func protectedRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Protect(db), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    CurrentUserID(c),
			"session_id": CurrentSessionID(c),
			"email":      CurrentEmail(c),
		})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProtectAllowsValidSession(t *testing.T) {
	db := testDB(t)
	r := protectedRouter(db)

	_, err := sessionpkg.Create(db, "sess-1", "user-1", sessionpkg.Device{}, "raw", time.Hour)
	require.NoError(t, err)
	token, err := jwt.SignAccess("user-1", "sess-1", "a@b.com")
	require.NoError(t, err)

	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
	assert.Contains(t, w.Body.String(), "sess-1")
}

func TestProtectMissingOrMalformedHeader(t *testing.T) {
	r := protectedRouter(testDB(t))

	for _, header := range []string{"", "Basic abc", "Bearer", "token-without-scheme"} {
		w := doGet(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Contains(t, w.Body.String(), "Access token missing or malformed")
	}
}

func TestProtectInvalidToken(t *testing.T) {
	r := protectedRouter(testDB(t))

	w := doGet(r, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid access token")
}

func TestProtectRejectsRevokedSessionWithValidToken(t *testing.T) {
	db := testDB(t)
	r := protectedRouter(db)

	_, err := sessionpkg.Create(db, "sess-1", "user-1", sessionpkg.Device{}, "raw", time.Hour)
	require.NoError(t, err)
	token, err := jwt.SignAccess("user-1", "sess-1", "")
	require.NoError(t, err)
	require.NoError(t, sessionpkg.Revoke(db, "sess-1"))

	// Signature still verifies; the session gate rejects anyway.
	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session expired or logged out")
}

func TestProtectUnknownSession(t *testing.T) {
	r := protectedRouter(testDB(t))

	token, err := jwt.SignAccess("user-1", "never-created", "")
	require.NoError(t, err)

	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session expired or logged out")
}

func TestOptionalAuth(t *testing.T) {
	db := testDB(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/feed", OptionalAuth(db), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authed": IsAuthenticated(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")

	_, err := sessionpkg.Create(db, "sess-1", "user-1", sessionpkg.Device{}, "raw", time.Hour)
	require.NoError(t, err)
	token, err := jwt.SignAccess("user-1", "sess-1", "")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), "true")
}
