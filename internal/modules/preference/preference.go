package preference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reshimgathi/core/internal/models"
	pkgredis "github.com/reshimgathi/core/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxWeight caps every accumulated interest weight.
const MaxWeight = 100

const (
	defaultAgeMin = 18
	defaultAgeMax = 60
)

// RecommendationCacheKey is the cached ranked-candidate list for a user,
// invalidated whenever the user's preferences change.
func RecommendationCacheKey(userID string) string {
	return fmt.Sprintf("recommendations:%s:v1", userID)
}

// Bump adds inc to the normalized key's weight, capped at MaxWeight. A key
// that normalizes to empty is a no-op.
func Bump(m models.WeightMap, rawKey string, inc int) {
	if m == nil {
		return
	}
	key := NormalizeKey(rawKey)
	if key == "" {
		return
	}
	next := m[key] + inc
	if next > MaxWeight {
		next = MaxWeight
	}
	m[key] = next
}

// Service is the preference accumulator: the only mutator of a user's
// weighted-interest maps.
type Service struct {
	db     *gorm.DB
	cache  *pkgredis.Client
	logger *zap.Logger
}

func NewService(db *gorm.DB, cache *pkgredis.Client, logger *zap.Logger) *Service {
	return &Service{db: db, cache: cache, logger: logger}
}

// GetOrCreate lazily creates the preference record, seeding the age range
// from the user's stated partner expectations.
func (s *Service) GetOrCreate(ctx context.Context, user *models.UserModel) (*models.PreferencesModel, error) {
	var prefs models.PreferencesModel
	err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&prefs).Error
	if err == nil {
		ensureMaps(&prefs)
		return &prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	prefs = models.PreferencesModel{
		UserID:      user.ID,
		Education:   models.WeightMap{},
		Occupation:  models.WeightMap{},
		Location:    models.WeightMap{},
		Income:      models.WeightMap{},
		AgeRangeMin: defaultAgeMin,
		AgeRangeMax: defaultAgeMax,
	}
	if user.ExpectedAgeMin > 0 {
		prefs.AgeRangeMin = user.ExpectedAgeMin
	}
	if user.ExpectedAgeMax > 0 {
		prefs.AgeRangeMax = user.ExpectedAgeMax
	}
	if err := s.db.WithContext(ctx).Create(&prefs).Error; err != nil {
		return nil, fmt.Errorf("create preferences: %w", err)
	}
	return &prefs, nil
}

// Update derives education/occupation/location signals from the viewed
// profile and bumps each map by weight, then persists and invalidates the
// owner's cached recommendations. Nil arguments are a no-op.
func (s *Service) Update(ctx context.Context, prefs *models.PreferencesModel, profile *models.UserModel, weight int) error {
	if prefs == nil || profile == nil {
		return nil
	}
	ensureMaps(prefs)

	education := ""
	if len(profile.Education) > 0 {
		education = profile.Education[0]
	}

	Bump(prefs.Education, education, weight)
	Bump(prefs.Occupation, profile.Occupation, weight)
	Bump(prefs.Location, profile.City, weight)

	now := time.Now()
	prefs.TotalInteractions++
	prefs.LastInteractionAt = &now

	if err := s.db.WithContext(ctx).Save(prefs).Error; err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, RecommendationCacheKey(prefs.UserID)); err != nil && s.logger != nil {
			s.logger.Warn("invalidate recommendation cache failed",
				zap.String("user_id", prefs.UserID), zap.Error(err))
		}
	}
	return nil
}

func ensureMaps(prefs *models.PreferencesModel) {
	if prefs.Education == nil {
		prefs.Education = models.WeightMap{}
	}
	if prefs.Occupation == nil {
		prefs.Occupation = models.WeightMap{}
	}
	if prefs.Location == nil {
		prefs.Location = models.WeightMap{}
	}
	if prefs.Income == nil {
		prefs.Income = models.WeightMap{}
	}
}
