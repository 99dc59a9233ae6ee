package models

import "time"

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GoogleAuthSignIn struct {
	IdToken  string `json:"idToken" validate:"required"`
	Platform string `json:"platform" validate:"required,platform"`
}

type AppleAuthRequest struct {
	IdentityToken     string `json:"identity_token" validate:"required"`
	Platform          string `json:"platform" validate:"required,platform"`
	AuthorizationCode string `json:"authorization_code" validate:"required"`
}

type SignInOut struct {
	Id           string `json:"id"`
	Email        string `json:"email"`
	New          bool   `json:"new"`
	Avatar       string `json:"avatar"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshIn struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UserMeOut struct {
	Id                   string       `json:"id"`
	Name                 string       `json:"name"`
	Email                string       `json:"email"`
	AvatarURL            string       `json:"avatar_url"`
	Subscription         Subscription `json:"subscription"`
	ReceiveNotifications bool         `json:"receive_notifications"`
	Department           string       `json:"department"`
	Undertone            string       `json:"undertone"`
	Height               string       `json:"height"`
	WardrobeItemCount    int64        `json:"wardrobe_item_count"`
	TasteInitialized     bool         `json:"taste_initialized"`
}
