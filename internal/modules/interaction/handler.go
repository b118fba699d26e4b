package interaction

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/reshimgathi/core/internal/middleware"
	"github.com/reshimgathi/core/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the interaction endpoints; all require auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/interactions", authMW)
	g.POST("/view/:id", h.View)
	g.POST("/shortlist/:id", h.Shortlist)
	g.DELETE("/shortlist/:id", h.Unshortlist)
	g.POST("/request/:id", h.SendRequest)
	g.POST("/request/:id/accept", h.AcceptRequest)
	g.GET("/recently-viewed", h.RecentlyViewed)
}

func (h *Handler) View(c *gin.Context) {
	if err := h.svc.View(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "Profile view recorded", nil)
}

func (h *Handler) Shortlist(c *gin.Context) {
	if err := h.svc.Shortlist(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "Profile shortlisted", nil)
}

func (h *Handler) Unshortlist(c *gin.Context) {
	if err := h.svc.Unshortlist(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "Profile removed from shortlist", nil)
}

func (h *Handler) SendRequest(c *gin.Context) {
	req, err := h.svc.SendRequest(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, "Request sent", gin.H{"request": req})
}

func (h *Handler) AcceptRequest(c *gin.Context) {
	conv, err := h.svc.AcceptRequest(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "Request accepted", gin.H{"conversation": conv})
}

func (h *Handler) RecentlyViewed(c *gin.Context) {
	views, err := h.svc.RecentlyViewed(c.Request.Context(), middleware.CurrentUserID(c), 20)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "Recently viewed profiles", gin.H{"views": views})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSelfInteraction):
		response.BadRequest(c, "Cannot interact with your own profile")
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(c, "User not found")
	case errors.Is(err, ErrRequestNotFound):
		response.NotFound(c, "Request not found")
	case errors.Is(err, ErrRequestNotYours):
		response.Forbidden(c, "Request is not addressed to you")
	case errors.Is(err, ErrAlreadyRequested):
		response.Conflict(c, "Request already sent")
	default:
		h.logger.Error("interaction failed", zap.Error(err))
		response.InternalError(c)
	}
}
