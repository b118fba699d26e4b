package models

import "time"

// UserModel represents a registered member.
type UserModel struct {
	Base
	Email          string      `json:"email"           gorm:"uniqueIndex;not null"`
	Password       string      `json:"-"               gorm:"not null"`
	Name           string      `json:"name"`
	Gender         string      `json:"gender"          gorm:"type:varchar(16)"`
	DOB            *time.Time  `json:"dob"`
	Bio            string      `json:"bio"             gorm:"type:text"`
	ProfilePicture string      `json:"profile_picture"`
	IsVerified     bool        `json:"is_verified"     gorm:"default:false"`
	LastLoginTime  *time.Time  `json:"last_login_time"`

	// Professional and location details used by the recommendation scorer.
	Education    StringArray `json:"education"     gorm:"type:longtext"`
	Occupation   string      `json:"occupation"`
	AnnualIncome string      `json:"annual_income"`
	City         string      `json:"city"          gorm:"index"`
	State        string      `json:"state"`

	// Stated partner expectations, used to seed default preferences.
	ExpectedAgeMin int `json:"expected_age_min" gorm:"default:0"`
	ExpectedAgeMax int `json:"expected_age_max" gorm:"default:0"`
}

func (UserModel) TableName() string { return "users" }
