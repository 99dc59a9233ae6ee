package models

import "time"

type UserAccount struct {
	JsonModel
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"`
	Banned   bool   `gorm:"default:false" json:"-"`
	LastIp   string `json:"-"`
	//"STARTED_AUTH", "FINISHED_AUTH"
	Status              string       `json:"-"`
	GoogleID            string       `json:"-"`
	AppleID             string       `json:"-"`
	UTMSource           string       `json:"utm_source"`
	Platform            Platform     `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Subscription        Subscription `gorm:"default:free" json:"subscription"`
	ExpirationDate      *time.Time   `json:"-"`
	ConfirmedDeleteDate *time.Time   `json:"-"`
	// Notifications settings
	ReceiveNotifications bool `json:"receive_notifications"`
	// mainly for LLM model overrides, token usage inspection etc
	IsSuperadmin bool `json:"is_superadmin"`
	// user app image/avatar
	AvatarURL string `json:"avatar_url"`

	// Style profile, filled during onboarding. All optional - generation
	// degrades gracefully when empty.
	Department string `json:"department"` // male, female, unisex
	Undertone  string `json:"undertone"`  // warm, cool, neutral
	Height     string `json:"height"`     // short, average, tall

	// set once the first auto-generated outfits were produced after
	// the wardrobe reached the minimum size
	FirstOutfitsGeneratedAt *time.Time `json:"-"`
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"user_account"`
	Platform      Platform    `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

type UserPushIn struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type UserSettingsIn struct {
	ReceiveNotifications bool `json:"receive_notifications"`
}

type StyleProfileIn struct {
	Department *string `json:"department" validate:"omitempty,department"`
	Undertone  *string `json:"undertone" validate:"omitempty,undertone"`
	Height     *string `json:"height" validate:"omitempty,heightband"`
}
