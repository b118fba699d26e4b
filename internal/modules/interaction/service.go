package interaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reshimgathi/core/internal/models"
	"github.com/reshimgathi/core/internal/modules/gateway"
	"github.com/reshimgathi/core/internal/modules/preference"
	"github.com/reshimgathi/core/internal/pkg/push"
	sessionpkg "github.com/reshimgathi/core/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Canonical interaction weights. The accumulator itself is policy-free;
// every caller goes through here.
const (
	WeightView            = 1
	WeightShortlist       = 5
	WeightSendRequest     = 8
	WeightRequestAccepted = 15
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRequestNotFound  = errors.New("request not found")
	ErrRequestNotYours  = errors.New("request not addressed to you")
	ErrAlreadyRequested = errors.New("request already sent")
	ErrSelfInteraction  = errors.New("cannot interact with own profile")
)

// Service records interactions and feeds the preference accumulator.
type Service struct {
	db     *gorm.DB
	prefs  *preference.Service
	hub    *gateway.Hub
	pusher push.Sender
	logger *zap.Logger
}

func NewService(db *gorm.DB, prefs *preference.Service, hub *gateway.Hub, pusher push.Sender, logger *zap.Logger) *Service {
	return &Service{db: db, prefs: prefs, hub: hub, pusher: pusher, logger: logger}
}

// View records a profile view and bumps the viewer's preferences.
func (s *Service) View(ctx context.Context, userID, targetID string) error {
	target, err := s.loadTarget(ctx, userID, targetID)
	if err != nil {
		return err
	}

	view := models.RecentlyViewModel{UserID: userID, TargetID: targetID}
	if err := s.db.WithContext(ctx).Create(&view).Error; err != nil {
		return fmt.Errorf("record view: %w", err)
	}

	return s.learn(ctx, userID, target, WeightView)
}

// Shortlist adds the target to the user's shortlist. Shortlisting the same
// profile twice neither duplicates the row nor double-bumps.
func (s *Service) Shortlist(ctx context.Context, userID, targetID string) error {
	target, err := s.loadTarget(ctx, userID, targetID)
	if err != nil {
		return err
	}

	entry := models.ShortlistModel{UserID: userID, TargetID: targetID}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND target_id = ?", userID, targetID).
		FirstOrCreate(&entry)
	if res.Error != nil {
		return fmt.Errorf("shortlist: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil
	}

	return s.learn(ctx, userID, target, WeightShortlist)
}

// Unshortlist removes the target from the user's shortlist.
func (s *Service) Unshortlist(ctx context.Context, userID, targetID string) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND target_id = ?", userID, targetID).
		Delete(&models.ShortlistModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SendRequest creates a pending connection request and notifies the target.
func (s *Service) SendRequest(ctx context.Context, fromID, toID string) (*models.RequestModel, error) {
	target, err := s.loadTarget(ctx, fromID, toID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.RequestModel{}).
		Where("from_id = ? AND to_id = ?", fromID, toID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyRequested
	}

	req := models.RequestModel{FromID: fromID, ToID: toID, Status: models.RequestPending}
	if err := s.db.WithContext(ctx).Create(&req).Error; err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if err := s.learn(ctx, fromID, target, WeightSendRequest); err != nil {
		return nil, err
	}

	s.notify(ctx, toID, "new-request", "New request", "Someone is interested in your profile", map[string]interface{}{
		"requestId": req.ID,
		"fromId":    fromID,
	})
	return &req, nil
}

// AcceptRequest accepts a pending request addressed to userID, creates the
// conversation and notifies the sender. The sender's preferences get the
// strongest bump: their expressed interest was validated.
func (s *Service) AcceptRequest(ctx context.Context, userID, requestID string) (*models.ConversationModel, error) {
	var req models.RequestModel
	if err := s.db.WithContext(ctx).First(&req, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.ToID != userID {
		return nil, ErrRequestNotYours
	}

	res := s.db.WithContext(ctx).Model(&models.RequestModel{}).
		Where("id = ? AND status = ?", requestID, models.RequestPending).
		Update("status", models.RequestAccepted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrRequestNotFound
	}

	a, b := req.FromID, req.ToID
	if a > b {
		a, b = b, a
	}
	conv := models.ConversationModel{UserA: a, UserB: b}
	if err := s.db.WithContext(ctx).
		Where("user_a = ? AND user_b = ?", a, b).
		FirstOrCreate(&conv).Error; err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	var accepter models.UserModel
	if err := s.db.WithContext(ctx).First(&accepter, "id = ?", userID).Error; err == nil {
		if err := s.learn(ctx, req.FromID, &accepter, WeightRequestAccepted); err != nil && s.logger != nil {
			s.logger.Warn("preference update on accept failed", zap.Error(err))
		}
	}

	payload := map[string]interface{}{"conversationId": conv.ID, "with": userID}
	s.notify(ctx, req.FromID, gateway.EventNewConversation, "Request accepted", "Your request was accepted", payload)
	if s.hub != nil {
		if err := s.hub.SendToUser(ctx, req.ToID, gateway.EventNewConversation, payload); err != nil && s.logger != nil {
			s.logger.Warn("emit to accepter failed", zap.Error(err))
		}
	}
	return &conv, nil
}

// RecentlyViewed lists the profiles a user viewed, newest first.
func (s *Service) RecentlyViewed(ctx context.Context, userID string, limit int) ([]models.RecentlyViewModel, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var views []models.RecentlyViewModel
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Find(&views).Error
	return views, err
}

func (s *Service) loadTarget(ctx context.Context, userID, targetID string) (*models.UserModel, error) {
	if userID == targetID {
		return nil, ErrSelfInteraction
	}
	var target models.UserModel
	if err := s.db.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &target, nil
}

// learn bumps the actor's preference maps from the target profile.
func (s *Service) learn(ctx context.Context, actorID string, target *models.UserModel, weight int) error {
	var actor models.UserModel
	if err := s.db.WithContext(ctx).First(&actor, "id = ?", actorID).Error; err != nil {
		return err
	}
	prefs, err := s.prefs.GetOrCreate(ctx, &actor)
	if err != nil {
		return err
	}
	return s.prefs.Update(ctx, prefs, target, weight)
}

// notify delivers over both channels: a realtime event when the user has
// presence, and a push to every active session token.
func (s *Service) notify(ctx context.Context, userID, event, title, body string, data map[string]interface{}) {
	if s.hub != nil {
		if err := s.hub.SendToUser(ctx, userID, event, data); err != nil && s.logger != nil {
			s.logger.Warn("socket notify failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if s.pusher == nil {
		return
	}
	tokens, err := sessionpkg.ActivePushTokens(s.db.WithContext(ctx), userID)
	if err != nil || len(tokens) == 0 {
		return
	}
	go func() {
		pushCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		results := s.pusher.SendMulticast(pushCtx, tokens, title, body, data)
		if s.logger == nil {
			return
		}
		for _, r := range results {
			if !r.Success {
				s.logger.Warn("push delivery failed", zap.String("user_id", userID), zap.String("error", r.Error))
			}
		}
	}()
}
