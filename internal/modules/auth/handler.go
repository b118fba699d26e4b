package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/reshimgathi/core/internal/middleware"
	"github.com/reshimgathi/core/internal/pkg/response"
	sessionpkg "github.com/reshimgathi/core/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler exposes the auth endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts auth endpoints on the given group. Protected routes
// use the auth gate middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/auth/sign-up", h.SignUp)
	rg.POST("/auth/sign-in", h.SignIn)
	rg.POST("/auth/refresh", h.Refresh)
	rg.POST("/auth/sign-out", authMW, h.SignOut)
	rg.POST("/auth/sign-out-all", authMW, h.SignOutAll)
	rg.GET("/auth/me", authMW, h.Me)
	rg.PUT("/auth/push-token", authMW, h.BindPushToken)
}

func (h *Handler) SignUp(c *gin.Context) {
	var dto CredentialsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if msg, ok := validateCredentials(&dto); !ok {
		response.BadRequest(c, msg)
		return
	}

	result, err := h.svc.SignUp(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(c, "Email already registered")
			return
		}
		h.logger.Error("sign up failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Created(c, "User registered successfully", result)
}

func (h *Handler) SignIn(c *gin.Context) {
	var dto CredentialsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if msg, ok := validateCredentials(&dto); !ok {
		response.BadRequest(c, msg)
		return
	}

	result, err := h.svc.SignIn(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c, "Invalid credentials")
			return
		}
		h.logger.Error("sign in failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, "User login successful", result)
}

func (h *Handler) Refresh(c *gin.Context) {
	var dto RefreshDTO
	if err := c.ShouldBindJSON(&dto); err != nil || strings.TrimSpace(dto.RefreshToken) == "" {
		response.BadRequest(c, "refreshToken is required")
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), dto.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrRefreshInvalid):
			response.Unauthorized(c, "Invalid or expired refresh token")
		case errors.Is(err, sessionpkg.ErrNotFound):
			response.Unauthorized(c, "Session not found or expired")
		case errors.Is(err, ErrRefreshMismatch):
			response.Unauthorized(c, "Invalid refresh token")
		case errors.Is(err, ErrRefreshExpired):
			response.Unauthorized(c, "Refresh token expired")
		case errors.Is(err, sessionpkg.ErrRotationConflict):
			response.Conflict(c, "Refresh token was rotated by a concurrent request")
		default:
			h.logger.Error("refresh failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.OK(c, "Token refreshed successfully", pair)
}

func (h *Handler) SignOut(c *gin.Context) {
	sessionID := middleware.CurrentSessionID(c)
	if sessionID == "" {
		response.BadRequest(c, "Invalid session")
		return
	}

	if err := h.svc.SignOut(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, sessionpkg.ErrNotFound) {
			response.NotFound(c, "Session not found or already logged out")
			return
		}
		h.logger.Error("sign out failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, "Logged out successfully from this device", nil)
}

func (h *Handler) SignOutAll(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	count, err := h.svc.SignOutAll(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("sign out all failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, "Logged out successfully from all devices", gin.H{
		"totalSessionsLoggedOut": count,
	})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		h.logger.Error("get current user failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, "User details fetched successfully", gin.H{"user": user})
}

func (h *Handler) BindPushToken(c *gin.Context) {
	var dto PushTokenDTO
	if err := c.ShouldBindJSON(&dto); err != nil || strings.TrimSpace(dto.PushToken) == "" {
		response.BadRequest(c, "pushToken is required")
		return
	}

	if err := h.svc.BindPushToken(c.Request.Context(), middleware.CurrentSessionID(c), dto.PushToken); err != nil {
		if errors.Is(err, sessionpkg.ErrNotFound) {
			response.NotFound(c, "Session not found")
			return
		}
		h.logger.Error("bind push token failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, "Push token stored", nil)
}

func validateCredentials(dto *CredentialsDTO) (string, bool) {
	missing := make([]string, 0, 4)
	for _, f := range []struct{ name, value string }{
		{"email", dto.Email},
		{"password", dto.Password},
		{"deviceId", dto.DeviceID},
		{"deviceType", dto.DeviceType},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return "Missing required field(s): " + strings.Join(missing, ", "), false
	}
	return "", true
}
