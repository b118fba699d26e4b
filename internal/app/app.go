package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/reshimgathi/core/internal/config"
	"github.com/reshimgathi/core/internal/database"
	"github.com/reshimgathi/core/internal/modules/gateway"
	"github.com/reshimgathi/core/internal/pkg/cron"
	"github.com/reshimgathi/core/internal/pkg/jwt"
	"github.com/reshimgathi/core/internal/pkg/push"
	pkgredis "github.com/reshimgathi/core/internal/pkg/redis"
)

// App owns every long-lived component of the server process.
type App struct {
	cfg    *config.AppConfig
	logger *zap.Logger

	db     *gorm.DB
	rc     *pkgredis.Client
	hub    *gateway.Hub
	sched  *cron.Scheduler
	pusher push.Sender

	engine  *gin.Engine
	started time.Time
}

// New assembles the application: database, redis, token signing, the
// socket hub, HTTP routes and background jobs.
func New(cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DSN, cfg.IsDev())
	if err != nil {
		return nil, err
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	jwt.Configure(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	a := &App{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		rc:      rc,
		hub:     gateway.NewHub(rc, logger),
		sched:   cron.New(),
		pusher:  push.New(cfg.Push.ServerKey, cfg.Push.Endpoint),
		started: time.Now(),
	}

	a.engine = a.buildRouter()
	a.registerJobs()
	return a, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.sched.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Port),
		Handler: a.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", zap.Int("port", a.cfg.Port), zap.String("env", a.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	a.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
