package models

import "time"

// PreferencesModel is the per-user accumulated interest record, created
// lazily on first need and mutated only through the preference accumulator.
type PreferencesModel struct {
	Base
	UserID string `json:"user_id" gorm:"uniqueIndex;not null"`

	Education  WeightMap `json:"education"  gorm:"type:longtext"`
	Occupation WeightMap `json:"occupation" gorm:"type:longtext"`
	Location   WeightMap `json:"location"   gorm:"type:longtext"`
	Income     WeightMap `json:"income"     gorm:"type:longtext"`

	AgeRangeMin int `json:"age_range_min" gorm:"default:18"`
	AgeRangeMax int `json:"age_range_max" gorm:"default:60"`

	TotalInteractions int        `json:"total_interactions" gorm:"default:0"`
	LastInteractionAt *time.Time `json:"last_interaction_at"`
}

func (PreferencesModel) TableName() string { return "user_preferences" }
