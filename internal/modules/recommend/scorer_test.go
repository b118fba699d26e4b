package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reshimgathi/core/internal/models"
)

func TestBestMatchScore(t *testing.T) {
	prefs := models.WeightMap{
		"mumbai": 20,
		"pune":   5,
	}

	// Bidirectional containment after normalization.
	assert.Equal(t, 20, BestMatchScore(prefs, "Mumbai Suburban"))
	assert.Equal(t, 20, BestMatchScore(prefs, "mumbai"))
	assert.Equal(t, 5, BestMatchScore(prefs, "Pune"))
	assert.Equal(t, 0, BestMatchScore(prefs, "Delhi"))
	assert.Equal(t, 0, BestMatchScore(prefs, ""))
	assert.Equal(t, 0, BestMatchScore(nil, "Mumbai"))
}

func TestBestMatchScorePicksMaxWeight(t *testing.T) {
	prefs := models.WeightMap{
		"navi_mumbai": 30,
		"mumbai":      10,
	}
	// "navi_mumbai" contains "mumbai" is false, but the candidate
	// "Navi Mumbai" normalizes to "navi_mumbai" which matches both keys;
	// the larger weight wins.
	assert.Equal(t, 30, BestMatchScore(prefs, "Navi Mumbai"))
}

func TestCalculateScoreSumsDimensions(t *testing.T) {
	prefs := &models.PreferencesModel{
		Education:  models.WeightMap{"b_tech": 13},
		Occupation: models.WeightMap{"software_engineer": 8},
		Location:   models.WeightMap{"mumbai": 20},
	}
	candidate := &models.UserModel{
		Education:  models.StringArray{"B.Tech"},
		Occupation: "Senior Software Engineer",
		City:       "Mumbai Suburban",
	}

	assert.Equal(t, 13+8+20, CalculateScore(candidate, prefs))
	assert.Equal(t, 0, CalculateScore(nil, prefs))
	assert.Equal(t, 0, CalculateScore(candidate, nil))
}

func TestCalculateScorePartialMatches(t *testing.T) {
	prefs := &models.PreferencesModel{
		Education:  models.WeightMap{"mba": 10},
		Occupation: models.WeightMap{},
		Location:   models.WeightMap{"pune": 7},
	}
	candidate := &models.UserModel{
		Education: models.StringArray{"PhD"},
		City:      "Pune",
	}
	assert.Equal(t, 7, CalculateScore(candidate, prefs))
}

func TestLikePatterns(t *testing.T) {
	assert.Equal(t, []string{"%navi%mumbai%", "%pune%"}, likePatterns([]string{"navi_mumbai", "pune"}))
	assert.Empty(t, likePatterns([]string{""}))
	assert.Empty(t, likePatterns(nil))
}
