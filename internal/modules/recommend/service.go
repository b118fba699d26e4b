package recommend

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/reshimgathi/core/internal/models"
	"github.com/reshimgathi/core/internal/modules/preference"
	pkgredis "github.com/reshimgathi/core/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cacheTTL       = 5 * time.Minute
	candidateLimit = 200
	resultLimit    = 50
	topKeyLimit    = 2
)

// ScoredProfile is one ranked candidate.
type ScoredProfile struct {
	User  models.UserModel `json:"user"`
	Score int              `json:"score"`
}

// Service ranks candidate profiles against a user's accumulated preferences.
type Service struct {
	db     *gorm.DB
	cache  *pkgredis.Client
	prefs  *preference.Service
	logger *zap.Logger
}

func NewService(db *gorm.DB, cache *pkgredis.Client, prefs *preference.Service, logger *zap.Logger) *Service {
	return &Service{db: db, cache: cache, prefs: prefs, logger: logger}
}

// Recommend returns the ranked candidate list for a user, cached for five
// minutes under recommendations:{userId}:v1. The accumulator invalidates
// the key on every preference update.
func (s *Service) Recommend(ctx context.Context, user *models.UserModel) ([]ScoredProfile, error) {
	cacheKey := preference.RecommendationCacheKey(user.ID)
	if s.cache != nil {
		var cached []ScoredProfile
		if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	prefs, err := s.prefs.GetOrCreate(ctx, user)
	if err != nil {
		return nil, err
	}

	candidates, err := s.loadCandidates(ctx, user, prefs)
	if err != nil {
		return nil, err
	}

	ranked := make([]ScoredProfile, 0, len(candidates))
	for i := range candidates {
		ranked = append(ranked, ScoredProfile{
			User:  candidates[i],
			Score: CalculateScore(&candidates[i], prefs),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > resultLimit {
		ranked = ranked[:resultLimit]
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, ranked, cacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("cache recommendations failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return ranked, nil
}

// loadCandidates pulls a bounded candidate pool. The user's strongest
// location keys (widened at underscores) prefilter the query so scoring
// stays cheap; with no accumulated signal yet the pool is unfiltered.
func (s *Service) loadCandidates(ctx context.Context, user *models.UserModel, prefs *models.PreferencesModel) ([]models.UserModel, error) {
	q := s.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id <> ?", user.ID)
	if user.Gender != "" {
		q = q.Where("gender <> ?", user.Gender)
	}

	if patterns := likePatterns(prefs.Location.TopKeys(topKeyLimit)); len(patterns) > 0 {
		sub := s.db.Where("LOWER(city) LIKE ?", patterns[0])
		for _, p := range patterns[1:] {
			sub = sub.Or("LOWER(city) LIKE ?", p)
		}
		q = q.Where(sub)
	}

	var candidates []models.UserModel
	err := q.Limit(candidateLimit).Find(&candidates).Error
	return candidates, err
}

// likePatterns widens normalized keys into SQL LIKE patterns, underscores
// acting as wildcards ("navi_mumbai" → "%navi%mumbai%").
func likePatterns(keys []string) []string {
	patterns := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		parts := strings.Split(key, "_")
		patterns = append(patterns, "%"+strings.Join(parts, "%")+"%")
	}
	return patterns
}
