package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/reshimgathi/core/internal/models"
	"github.com/reshimgathi/core/internal/pkg/cron"
	sessionpkg "github.com/reshimgathi/core/internal/pkg/session"
)

const revokedRetention = 30 * 24 * time.Hour

func (a *App) registerJobs() {
	a.sched.Register(cron.Job{
		Name:        "purge-expired-sessions",
		Description: "Hard-delete sessions whose refresh ledger expired past the grace window",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := sessionpkg.PurgeExpired(a.db.WithContext(ctx), a.cfg.Auth.PurgeGrace)
			if err != nil {
				return err
			}
			if n > 0 {
				a.logger.Info("purged expired sessions", zap.Int64("count", n))
			}
			return nil
		},
	})

	a.sched.Register(cron.Job{
		Name:        "sweep-revoked-sessions",
		Description: "Remove sessions revoked longer than the retention window ago",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().Add(-revokedRetention)
			res := a.db.WithContext(ctx).Unscoped().
				Where("is_active = ? AND revoked_at IS NOT NULL AND revoked_at < ?", false, cutoff).
				Delete(&models.SessionModel{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				a.logger.Info("swept revoked sessions", zap.Int64("count", res.RowsAffected))
			}
			return nil
		},
	})
}
