package preference

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/reshimgathi/core/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}, &models.PreferencesModel{}))
	return db
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"Senior Software Engineer":   "senior_software_engineer",
		"senior.software_engineer!!": "senior_software_engineer",
		"  Navi Mumbai  ":            "navi_mumbai",
		"B.Tech":                     "b_tech",
		"MUMBAI":                     "mumbai",
		"a    b":                     "a_b",
		"...":                        "",
		"!!!":                        "",
		"":                           "",
		"_already_clean_":            "already_clean",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeKey(input), "input %q", input)
	}
}

func TestNormalizeKeyEquivalence(t *testing.T) {
	// Distinct spellings of the same label must accumulate into one bucket.
	assert.Equal(t,
		NormalizeKey("Senior Software Engineer"),
		NormalizeKey("senior.software_engineer!!"),
	)
}

func TestBumpAccumulatesAndCaps(t *testing.T) {
	m := models.WeightMap{}

	Bump(m, "Senior Software Engineer", 5)
	Bump(m, "senior.software_engineer!!", 8)
	assert.Equal(t, 13, m["senior_software_engineer"])

	Bump(m, "mumbai", 95)
	Bump(m, "Mumbai", 15)
	assert.Equal(t, MaxWeight, m["mumbai"])

	Bump(m, "!!!", 50)
	assert.Len(t, m, 2)

	Bump(nil, "mumbai", 5) // must not panic
}

func TestGetOrCreateSeedsAgeRange(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, nil, nil)
	ctx := context.Background()

	user := &models.UserModel{Email: "a@b.com", ExpectedAgeMin: 25, ExpectedAgeMax: 32}
	require.NoError(t, db.Create(user).Error)

	prefs, err := svc.GetOrCreate(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 25, prefs.AgeRangeMin)
	assert.Equal(t, 32, prefs.AgeRangeMax)
	assert.NotNil(t, prefs.Education)

	// Second call returns the same row, not a duplicate.
	again, err := svc.GetOrCreate(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, prefs.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.PreferencesModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetOrCreateDefaultsAgeRange(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, nil, nil)

	user := &models.UserModel{Email: "b@c.com"}
	require.NoError(t, db.Create(user).Error)

	prefs, err := svc.GetOrCreate(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, defaultAgeMin, prefs.AgeRangeMin)
	assert.Equal(t, defaultAgeMax, prefs.AgeRangeMax)
}

func TestUpdateLearnsFromProfile(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, nil, nil)
	ctx := context.Background()

	owner := &models.UserModel{Email: "owner@x.com"}
	require.NoError(t, db.Create(owner).Error)

	profile := &models.UserModel{
		Email:      "seen@x.com",
		Education:  models.StringArray{"B.Tech"},
		Occupation: "Software Engineer",
		City:       "Navi Mumbai",
	}

	prefs, err := svc.GetOrCreate(ctx, owner)
	require.NoError(t, err)
	require.NoError(t, svc.Update(ctx, prefs, profile, 5))
	require.NoError(t, svc.Update(ctx, prefs, profile, 8))

	var stored models.PreferencesModel
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&stored).Error)
	assert.Equal(t, 13, stored.Education["b_tech"])
	assert.Equal(t, 13, stored.Occupation["software_engineer"])
	assert.Equal(t, 13, stored.Location["navi_mumbai"])
	assert.Equal(t, 2, stored.TotalInteractions)
	assert.NotNil(t, stored.LastInteractionAt)
}

func TestUpdateNilArgsNoop(t *testing.T) {
	svc := NewService(nil, nil, nil)
	assert.NoError(t, svc.Update(context.Background(), nil, nil, 5))
}

func TestRecommendationCacheKey(t *testing.T) {
	assert.Equal(t, "recommendations:u-1:v1", RecommendationCacheKey("u-1"))
}
