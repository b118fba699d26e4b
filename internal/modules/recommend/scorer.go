package recommend

import (
	"strings"

	"github.com/reshimgathi/core/internal/models"
	"github.com/reshimgathi/core/internal/modules/preference"
)

// BestMatchScore normalizes candidateValue and returns the maximum weight
// among preference keys where either string contains the other. The
// bidirectional containment deliberately tolerates normalization artifacts:
// a "mumbai" preference matches a "Mumbai Suburban" profile and vice versa.
func BestMatchScore(prefMap models.WeightMap, candidateValue string) int {
	if len(prefMap) == 0 {
		return 0
	}
	valueKey := preference.NormalizeKey(candidateValue)
	if valueKey == "" {
		return 0
	}

	maxScore := 0
	for prefKey, weight := range prefMap {
		if prefKey == "" {
			continue
		}
		if strings.Contains(valueKey, prefKey) || strings.Contains(prefKey, valueKey) {
			if weight > maxScore {
				maxScore = weight
			}
		}
	}
	return maxScore
}

// dimension binds one scored axis of a candidate profile to the preference
// map it is matched against. Adding an axis (e.g. income) is appending an
// entry here; CalculateScore's contract does not change.
type dimension struct {
	name  string
	prefs func(*models.PreferencesModel) models.WeightMap
	value func(*models.UserModel) string
}

var scoreDimensions = []dimension{
	{
		name:  "education",
		prefs: func(p *models.PreferencesModel) models.WeightMap { return p.Education },
		value: func(u *models.UserModel) string {
			if len(u.Education) == 0 {
				return ""
			}
			return u.Education[0]
		},
	},
	{
		name:  "occupation",
		prefs: func(p *models.PreferencesModel) models.WeightMap { return p.Occupation },
		value: func(u *models.UserModel) string { return u.Occupation },
	},
	{
		name:  "location",
		prefs: func(p *models.PreferencesModel) models.WeightMap { return p.Location },
		value: func(u *models.UserModel) string { return u.City },
	},
}

// CalculateScore sums the best match independently across all scored
// dimensions; every dimension contributes equally.
func CalculateScore(candidate *models.UserModel, prefs *models.PreferencesModel) int {
	if candidate == nil || prefs == nil {
		return 0
	}
	score := 0
	for _, d := range scoreDimensions {
		score += BestMatchScore(d.prefs(prefs), d.value(candidate))
	}
	return score
}
