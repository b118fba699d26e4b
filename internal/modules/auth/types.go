package auth

import "github.com/reshimgathi/core/internal/models"

// CredentialsDTO is the sign-in/sign-up request body.
type CredentialsDTO struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceID   string `json:"deviceId"`
	DeviceType string `json:"deviceType"`
}

// RefreshDTO is the refresh request body.
type RefreshDTO struct {
	RefreshToken string `json:"refreshToken"`
}

// PushTokenDTO binds a push-messaging token to the current session.
type PushTokenDTO struct {
	PushToken string `json:"pushToken"`
}

// TokenPair is returned by the refresh protocol. RefreshToken may or may
// not differ from the input depending on rotation.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by sign-in and sign-up.
type AuthResult struct {
	User         *models.UserModel `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}
