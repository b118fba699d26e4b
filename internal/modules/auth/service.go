package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reshimgathi/core/internal/models"
	"github.com/reshimgathi/core/internal/pkg/jwt"
	sessionpkg "github.com/reshimgathi/core/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRefreshInvalid     = errors.New("invalid or expired refresh token")
	ErrRefreshMismatch    = errors.New("invalid refresh token")
	ErrRefreshExpired     = errors.New("refresh token expired")
)

// Service owns the credential store and the session/token lifecycle.
type Service struct {
	db              *gorm.DB
	sessionTTL      time.Duration
	rotateThreshold time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithSessionTTL overrides the ledger expiry applied on creation/rotation.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) { s.sessionTTL = ttl }
}

// WithRotateThreshold overrides the remaining-lifetime threshold under
// which refresh rotates the token.
func WithRotateThreshold(d time.Duration) Option {
	return func(s *Service) { s.rotateThreshold = d }
}

func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:              db,
		sessionTTL:      sessionpkg.DefaultTTL,
		rotateThreshold: sessionpkg.DefaultRotateThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp creates a user and their first session.
func (s *Service) SignUp(ctx context.Context, dto *CredentialsDTO) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.UserModel{Email: email, Password: string(hash)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issueSession(ctx, &user, dto.DeviceID, dto.DeviceType)
}

// SignIn verifies credentials and creates a session for the device. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, dto *CredentialsDTO) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	var user models.UserModel
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	s.db.WithContext(ctx).Model(&user).Update("last_login_time", &now)

	return s.issueSession(ctx, &user, dto.DeviceID, dto.DeviceType)
}

// issueSession mints the token pair and persists the refresh digest.
func (s *Service) issueSession(ctx context.Context, user *models.UserModel, deviceID, deviceType string) (*AuthResult, error) {
	sessionID := uuid.New().String()

	refreshToken, err := jwt.SignRefresh(user.ID, sessionID, user.Email)
	if err != nil {
		return nil, err
	}
	accessToken, err := jwt.SignAccess(user.ID, sessionID, user.Email)
	if err != nil {
		return nil, err
	}

	device := sessionpkg.Device{ID: deviceID, Type: deviceType}
	if _, err := sessionpkg.Create(s.db.WithContext(ctx), sessionID, user.ID, device, refreshToken, s.sessionTTL); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// SignOut revokes the session bound to the current access token.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	return sessionpkg.Revoke(s.db.WithContext(ctx), sessionID)
}

// SignOutAll revokes every active session for the user.
func (s *Service) SignOutAll(ctx context.Context, userID string) (int64, error) {
	return sessionpkg.RevokeAll(s.db.WithContext(ctx), userID)
}

// Refresh runs the rotation protocol:
//
//  1. Verify the refresh token signature and its own expiry.
//  2. Load the active session by (sessionId, userId).
//  3. Compare the incoming token's digest to the stored one. A mismatch
//     means the token was already rotated and is being replayed.
//  4. Check the ledger expiry, which is authoritative.
//  5. Always mint a new access token.
//  6. Rotate the refresh token only when the ledger expiry is near;
//     otherwise the caller keeps the token it sent.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	claims, err := jwt.ParseRefresh(rawRefresh)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	db := s.db.WithContext(ctx)
	sess, err := sessionpkg.FindActive(db, claims.SessionID, claims.UserID)
	if err != nil {
		if errors.Is(err, sessionpkg.ErrNotFound) {
			return nil, sessionpkg.ErrNotFound
		}
		return nil, err
	}

	if sessionpkg.Digest(rawRefresh) != sess.RefreshTokenHash {
		return nil, ErrRefreshMismatch
	}

	if sess.RefreshTokenExpiry.Before(time.Now()) {
		return nil, ErrRefreshExpired
	}

	accessToken, err := jwt.SignAccess(claims.UserID, claims.SessionID, claims.Email)
	if err != nil {
		return nil, err
	}

	refreshToken := rawRefresh
	if time.Until(sess.RefreshTokenExpiry) < s.rotateThreshold {
		newRefresh, err := jwt.SignRefresh(claims.UserID, claims.SessionID, claims.Email)
		if err != nil {
			return nil, err
		}
		rotated, err := sessionpkg.RotateIfNearExpiry(db, sess, newRefresh, s.rotateThreshold, s.sessionTTL)
		if err != nil {
			return nil, err
		}
		if rotated {
			refreshToken = newRefresh
		}
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Me loads the current user.
func (s *Service) Me(ctx context.Context, userID string) (*models.UserModel, error) {
	var user models.UserModel
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// BindPushToken stores a push token on the current session.
func (s *Service) BindPushToken(ctx context.Context, sessionID, pushToken string) error {
	return sessionpkg.BindPushToken(s.db.WithContext(ctx), sessionID, pushToken)
}
