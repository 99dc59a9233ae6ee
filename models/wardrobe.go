package models

import (
	"time"

	"github.com/lib/pq"
)

type WardrobeItem struct {
	JsonModel
	Name        string      `json:"name"`
	Description *string     `gorm:"type:text" json:"description"`
	Owner       UserAccount `json:"-"`
	OwnerID     uint        `json:"-"`

	// free text, lowercased before slot matching
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`

	// primary color first, then secondary/accent
	Colors  pq.StringArray `gorm:"type:text[]" json:"colors"`
	Pattern string         `json:"pattern"`

	// 0..10, casual to black tie
	Formality int            `json:"formality"`
	Seasons   pq.StringArray `gorm:"type:text[]" json:"seasons"` // summer, fall, winter, spring, all
	Fit       string         `json:"fit"`                        // oversized, relaxed, regular, fitted, slim
	Length    string         `json:"length"`                     // cropped, regular, longline
	Vibes     pq.StringArray `gorm:"type:text[]" json:"vibes"`
	Gender    string         `json:"gender"` // male, female, unisex

	// visual/style embedding from upstream image analysis, 768 dims
	Embedding pq.Float64Array `gorm:"type:float8[]" json:"-"`

	TimesWorn  int        `json:"times_worn"`
	LastWornAt *time.Time `json:"last_worn_at"`
	Archived   bool       `gorm:"default:false" json:"archived"`

	ImageURL            *string `json:"image_url"`
	ImageStatus         string  `json:"image_status"`      // draft, uploaded
	ProcessingStatus    string  `json:"processing_status"` // idle, generating, completed, failed
	ProcessRetryTimes   int     `json:"process_retry_times"`
	ProcessErrorMessage *string `json:"process_error_message"`
}

// curated style reference images shown during onboarding, seeded out of band
type StyleRefImage struct {
	JsonModel
	Slug       string          `gorm:"unique" json:"slug"`
	ImageURL   string          `json:"image_url"`
	Tags       pq.StringArray  `gorm:"type:text[]" json:"tags"`
	Department string          `json:"department"`
	Embedding  pq.Float64Array `gorm:"type:float8[]" json:"-"`
}
