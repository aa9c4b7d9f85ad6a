// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	UserID   string `json:"userId"   validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=128"`
}

type RegisterRequest struct {
	UserID          string `json:"userId"          validate:"required,min=3,max=50"`
	Name            string `json:"name"            validate:"required,max=100"`
	Email           string `json:"email"           validate:"required,email,max=255"`
	Password        string `json:"password"        validate:"required,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	PhoneNumber     string `json:"phoneNumber"     validate:"omitempty,max=20"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type DeleteAccountRequest struct {
	UserID   string `json:"userId"   validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	TokenType             string    `json:"tokenType"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

type LogoutResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMeta is recorded alongside each refresh token.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}
