package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Two token classes, two secrets, two lifetimes. Access tokens authorize
// individual requests; refresh tokens only mint new access tokens.
const (
	defaultAccessSecret  = "reshimgathi-access-secret-change-me"
	defaultRefreshSecret = "reshimgathi-refresh-secret-change-me"

	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	// Clients react by silently refreshing.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for signature or structure failures.
	// Clients react by forcing re-login.
	ErrTokenInvalid = errors.New("token invalid")
)

var (
	accessSecret  = []byte(defaultAccessSecret)
	refreshSecret = []byte(defaultRefreshSecret)
	accessTTL     = DefaultAccessTTL
	refreshTTL    = DefaultRefreshTTL
)

// Configure sets the signing secrets and lifetimes (call on startup).
// Empty or non-positive values keep the defaults.
func Configure(accSecret, refSecret string, accTTL, refTTL time.Duration) {
	if accSecret != "" {
		accessSecret = []byte(accSecret)
	}
	if refSecret != "" {
		refreshSecret = []byte(refSecret)
	}
	if accTTL > 0 {
		accessTTL = accTTL
	}
	if refTTL > 0 {
		refreshTTL = refTTL
	}
}

// Claims is the signed payload shared by both token classes.
type Claims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	Email     string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

// SignAccess creates a short-lived access token.
func SignAccess(userID, sessionID, email string) (string, error) {
	return sign(userID, sessionID, email, accessSecret, accessTTL)
}

// SignRefresh creates a longer-lived refresh token. The Session Ledger's
// stored expiry, not this token's own exp claim, is authoritative for
// rotation; the exp here is only an outer cryptographic bound.
func SignRefresh(userID, sessionID, email string) (string, error) {
	return sign(userID, sessionID, email, refreshSecret, refreshTTL)
}

// ParseAccess validates an access token and returns its claims.
func ParseAccess(token string) (*Claims, error) {
	return parse(token, accessSecret)
}

// ParseRefresh validates a refresh token and returns its claims.
func ParseRefresh(token string) (*Claims, error) {
	return parse(token, refreshSecret)
}

func sign(userID, sessionID, email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		Email:     email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parse(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
