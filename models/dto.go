package models

type WardrobeItemIn struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description"`
	Category    string   `json:"category" validate:"required"`
	Subcategory string   `json:"subcategory"`
	Colors      []string `json:"colors"`
	Pattern     string   `json:"pattern"`
	Formality   *int     `json:"formality" validate:"omitempty,min=0,max=10"`
	Seasons     []string `json:"seasons"`
	Fit         string   `json:"fit"`
	Length      string   `json:"length"`
	Vibes       []string `json:"vibes"`
	Gender      string   `json:"gender" validate:"omitempty,department"`
	FileName    string   `json:"file_name"`
}

type WardrobeItemOut struct {
	WardrobeItem
	Slot             string  `json:"slot"`
	PresignedableURL *string `json:"presigned_url"`
}

type WardrobeListOut struct {
	// keyed by slot: top, bottom, footwear, outerwear, accessory
	Slots map[string][]WardrobeItemOut `json:"slots"`
	Total int                          `json:"total"`
}

type WardrobeCreateOut struct {
	Item      WardrobeItem `json:"item"`
	UploadUrl *string      `json:"upload_url"`
}

type GenerateOutfitsIn struct {
	Occasion       string   `json:"occasion"`
	Mood           string   `json:"mood"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	Count          int      `json:"count" validate:"omitempty,min=1,max=6"`
	ExcludeItemIds []uint   `json:"exclude_item_ids"`
	PreferredVibes []string `json:"preferred_vibes"`
	MinFormality   *int     `json:"min_formality" validate:"omitempty,min=0,max=10"`
	MaxFormality   *int     `json:"max_formality" validate:"omitempty,min=0,max=10"`
	AvoidColors    bool     `json:"avoid_color_clashes"`
}

type RegenerateOutfitsIn struct {
	GenerateOutfitsIn
	// outfit the user disliked; its items get excluded from the rerun
	OutfitId uint `json:"outfit_id" validate:"required"`
}

type WeatherOut struct {
	TempC            float64 `json:"temp_c"`
	Condition        string  `json:"condition"`
	Humidity         int     `json:"humidity"`
	WindSpeed        float64 `json:"wind_speed"`
	SeasonSuggestion string  `json:"season_suggestion"`
	IsDefault        bool    `json:"is_default"`
}

type OutfitOut struct {
	GeneratedOutfit
	Items []WardrobeItemOut `json:"items"`
}

type GenerateOutfitsOut struct {
	Outfits []OutfitOut `json:"outfits"`
	Weather WeatherOut  `json:"weather"`
}

type OutfitInteractionIn struct {
	Type string `json:"type" validate:"required,interaction"`
}

type TasteInitIn struct {
	LikedImageIds    []uint `json:"liked_image_ids" validate:"required,min=1"`
	DislikedImageIds []uint `json:"disliked_image_ids"`
}
