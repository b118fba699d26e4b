package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/reshimgathi/core/internal/models"
	"github.com/reshimgathi/core/internal/pkg/jwt"
	"github.com/reshimgathi/core/internal/pkg/response"
	sessionpkg "github.com/reshimgathi/core/internal/pkg/session"
	"gorm.io/gorm"
)

const (
	ContextKeyUserID  = "user_id"
	ContextKeySID     = "session_id"
	ContextKeyEmail   = "email"
	ContextKeySession = "session"
)

// Protect enforces the two-layer authorization contract: the access token's
// signature must verify AND the bound session must still be active. Revoking
// a session therefore invalidates every access token tied to it, even while
// the token's own signature remains valid.
func Protect(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Unauthorized(c, "Access token missing or malformed")
			return
		}

		claims, err := jwt.ParseAccess(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Unauthorized(c, "Access token expired")
				return
			}
			response.Unauthorized(c, "Invalid access token")
			return
		}

		sess, err := sessionpkg.Validate(db, claims.SessionID)
		if err != nil {
			if errors.Is(err, sessionpkg.ErrInactive) {
				response.Unauthorized(c, "Session expired or logged out")
				return
			}
			response.InternalError(c)
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeySID, claims.SessionID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeySession, sess)
		c.Next()
	}
}

// OptionalAuth attaches the user identity when a valid token is present, but
// never blocks the request.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := jwt.ParseAccess(token); err == nil {
				if sess, err := sessionpkg.Validate(db, claims.SessionID); err == nil {
					c.Set(ContextKeyUserID, claims.UserID)
					c.Set(ContextKeySID, claims.SessionID)
					c.Set(ContextKeyEmail, claims.Email)
					c.Set(ContextKeySession, sess)
				}
			}
		}
		c.Next()
	}
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentSessionID extracts the authenticated session ID from context.
func CurrentSessionID(c *gin.Context) string {
	v, _ := c.Get(ContextKeySID)
	id, _ := v.(string)
	return id
}

// CurrentEmail extracts the authenticated email from context.
func CurrentEmail(c *gin.Context) string {
	v, _ := c.Get(ContextKeyEmail)
	email, _ := v.(string)
	return email
}

// CurrentSession extracts the validated session from context.
func CurrentSession(c *gin.Context) *models.SessionModel {
	v, _ := c.Get(ContextKeySession)
	s, _ := v.(*models.SessionModel)
	return s
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func bearerToken(c *gin.Context) string {
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	if auth == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}
