package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/reshimgathi/core/internal/middleware"
	"github.com/reshimgathi/core/internal/modules/auth"
	"github.com/reshimgathi/core/internal/modules/gateway"
	"github.com/reshimgathi/core/internal/modules/interaction"
	"github.com/reshimgathi/core/internal/modules/preference"
	"github.com/reshimgathi/core/internal/modules/recommend"
	"github.com/reshimgathi/core/internal/pkg/response"
)

func (a *App) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(a.logger))

	corsCfg := cors.DefaultConfig()
	if len(a.cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = a.cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowCredentials = !corsCfg.AllowAllOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	authMW := middleware.Protect(a.db)

	prefSvc := preference.NewService(a.db, a.rc, a.logger)
	authSvc := auth.NewService(a.db,
		auth.WithSessionTTL(a.cfg.Auth.SessionTTL),
		auth.WithRotateThreshold(a.cfg.Auth.RotateThreshold),
	)
	recSvc := recommend.NewService(a.db, a.rc, prefSvc, a.logger)
	interSvc := interaction.NewService(a.db, prefSvc, a.hub, a.pusher, a.logger)

	api := r.Group("/api/v1")
	api.GET("/health", a.health)

	authGroup := api.Group("")
	authGroup.Use(middleware.RateLimit(a.rc.Raw()))
	auth.NewHandler(authSvc, a.logger).RegisterRoutes(authGroup, authMW)

	recommend.NewHandler(recSvc, a.db, a.logger).RegisterRoutes(api, authMW)
	interaction.NewHandler(interSvc, a.logger).RegisterRoutes(api, authMW)

	gateway.RegisterRoutes(r, a.hub)
	return r
}

func (a *App) health(c *gin.Context) {
	status := gin.H{
		"uptime": time.Since(a.started).Round(time.Second).String(),
		"env":    a.cfg.Env,
	}

	if sqlDB, err := a.db.DB(); err != nil || sqlDB.Ping() != nil {
		status["database"] = "down"
		c.JSON(503, gin.H{"ok": 0, "code": 503, "message": "Service degraded", "data": status})
		return
	}
	status["database"] = "up"

	if _, err := a.rc.Exists(c.Request.Context(), "health:probe"); err != nil {
		status["redis"] = "down"
		c.JSON(503, gin.H{"ok": 0, "code": 503, "message": "Service degraded", "data": status})
		return
	}
	status["redis"] = "up"
	status["jobs"] = a.sched.List()

	response.OK(c, "Service healthy", status)
}
