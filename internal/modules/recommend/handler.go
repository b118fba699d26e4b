package recommend

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/reshimgathi/core/internal/middleware"
	"github.com/reshimgathi/core/internal/models"
	"github.com/reshimgathi/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	svc    *Service
	db     *gorm.DB
	logger *zap.Logger
}

func NewHandler(svc *Service, db *gorm.DB, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, db: db, logger: logger}
}

// RegisterRoutes mounts the recommendation endpoint; requires auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/recommendations", authMW, h.Recommendations)
}

func (h *Handler) Recommendations(c *gin.Context) {
	var user models.UserModel
	if err := h.db.WithContext(c.Request.Context()).
		First(&user, "id = ?", middleware.CurrentUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		h.logger.Error("load user failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	ranked, err := h.svc.Recommend(c.Request.Context(), &user)
	if err != nil {
		h.logger.Error("recommendations failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, "Recommendations fetched successfully", gin.H{"recommendations": ranked})
}
