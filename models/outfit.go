package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	OutfitSourceOnDemand     = "on_demand"
	OutfitSourcePreGenerated = "pre_generated"
	OutfitSourceFirstAuto    = "first_outfit_auto"
	OutfitSourceRegenerated  = "regenerated"
)

type GeneratedOutfit struct {
	JsonModel
	UserAccountID uint        `json:"-"`
	UserAccount   UserAccount `json:"-"`

	// top, bottom, footwear first, then optional outerwear/accessories
	ItemIDs pq.Int64Array `gorm:"type:bigint[]" json:"item_ids"`

	Name        string  `json:"name"`
	Vibe        string  `json:"vibe"`
	Reasoning   string  `gorm:"type:text" json:"reasoning"`
	StylingTip  *string `gorm:"type:text" json:"styling_tip"`
	ColorNote   *string `gorm:"type:text" json:"color_note"`
	Occasion    string  `json:"occasion"`
	Mood        string  `json:"mood"`
	Source      string  `json:"source"` // on_demand, pre_generated, first_outfit_auto, regenerated
	ComposedBy  string  `json:"composed_by"` // rules, llm
	OccasionFit bool    `json:"occasion_fit"`

	StyleScore        float64 `json:"style_score"`
	ColorHarmonyScore float64 `json:"color_harmony_score"`
	TasteScore        float64 `json:"taste_score"`
	WeatherScore      float64 `json:"weather_score"`
	ConfidenceScore   float64 `json:"confidence_score"`

	// weather snapshot used at generation time
	WeatherTempC     *float64 `json:"weather_temp_c"`
	WeatherCondition *string  `json:"weather_condition"`
	SeasonSuggestion *string  `json:"season_suggestion"`

	LLMModel            *string `json:"-"`
	LLMInputTokenCount  *int32  `json:"-"`
	LLMOutputTokenCount *int32  `json:"-"`
	LLMTotalTokenCount  *int32  `json:"-"`

	ExpiresAt *time.Time `json:"expires_at"`
	IsSaved   bool       `gorm:"default:false" json:"is_saved"`
	IsWorn    bool       `gorm:"default:false" json:"is_worn"`
	WornAt    *time.Time `json:"worn_at"`
}

type TasteVector struct {
	JsonModel
	UserAccountID    uint            `gorm:"uniqueIndex" json:"-"`
	UserAccount      UserAccount     `json:"-"`
	Vector           pq.Float64Array `gorm:"type:float8[]" json:"-"`
	InteractionCount int             `json:"interaction_count"`
}

type OutfitInteraction struct {
	JsonModel
	UserAccountID     uint            `json:"-"`
	UserAccount       UserAccount     `json:"-"`
	GeneratedOutfitID uint            `json:"outfit_id"`
	GeneratedOutfit   GeneratedOutfit `json:"-"`
	Type              string          `json:"type"` // wear, save, like, edit, skip, reject
}
