package outfit

import "vestiqapi/models"

// fixed partition of the color table by temperature. Colors in neither set
// contribute nothing either way.
var warmColors = map[string]bool{
	"red": true, "scarlet": true, "maroon": true, "burgundy": true, "wine": true,
	"salmon": true, "coral": true, "peach": true, "orange": true,
	"burnt orange": true, "rust": true, "terracotta": true, "amber": true,
	"gold": true, "mustard": true, "yellow": true, "olive": true,
	"brown": true, "chocolate": true, "coffee": true, "camel": true,
	"caramel": true, "copper": true, "bronze": true, "cream": true,
	"ivory": true, "beige": true, "tan": true, "khaki": true,
}

var coolColors = map[string]bool{
	"blue": true, "navy": true, "royal blue": true, "cobalt": true,
	"sky blue": true, "light blue": true, "denim": true, "indigo": true,
	"teal": true, "turquoise": true, "cyan": true, "aqua": true, "mint": true,
	"emerald": true, "forest green": true, "sage": true, "lavender": true,
	"lilac": true, "purple": true, "violet": true, "plum": true,
	"magenta": true, "fuchsia": true, "pink": true, "hot pink": true,
	"crimson": true, "gray": true, "grey": true, "charcoal": true,
	"silver": true, "white": true, "black": true,
}

var neutralCompatible = map[string]bool{
	"black": true, "white": true, "off-white": true, "off white": true,
	"gray": true, "grey": true, "charcoal": true, "navy": true, "beige": true,
	"cream": true, "ivory": true, "taupe": true, "stone": true, "sand": true,
	"denim": true, "camel": true, "tan": true, "khaki": true,
}

// UndertoneBoost scores one item's primary color against a skin undertone.
// Clamped to [-0.15, 0.15].
func UndertoneBoost(undertone string, item models.WardrobeItem) float64 {
	if undertone == "" || len(item.Colors) == 0 {
		return 0
	}
	color := normalizeName(item.Colors[0])
	var boost float64
	switch undertone {
	case "warm":
		if warmColors[color] {
			boost = 0.12
		} else if coolColors[color] {
			boost = -0.08
		}
	case "cool":
		if coolColors[color] {
			boost = 0.12
		} else if warmColors[color] {
			boost = -0.08
		}
	case "neutral":
		if neutralCompatible[color] {
			boost = 0.05
		}
	}
	return clamp(boost, -0.15, 0.15)
}

// fallbacks when an item carries no explicit fit/length attribute
var categoryFitDefaults = map[string]string{
	"hoodie": "relaxed", "sweatshirt": "relaxed", "joggers": "relaxed",
	"sweatpants": "relaxed", "parka": "relaxed", "puffer": "oversized",
	"leggings": "slim", "crop top": "fitted", "bodysuit": "fitted",
	"dress shirt": "fitted", "turtleneck": "fitted", "blazer": "regular",
	"t-shirt": "regular", "jeans": "regular", "chinos": "regular",
}

var categoryLengthDefaults = map[string]string{
	"coat": "longline", "trench coat": "longline", "overcoat": "longline",
	"cardigan": "longline", "tunic": "longline", "crop top": "cropped",
	"shorts": "cropped",
}

func itemFit(item models.WardrobeItem) string {
	if item.Fit != "" {
		return normalizeName(item.Fit)
	}
	if fit, ok := categoryFitDefaults[normalizeName(item.Category)]; ok {
		return fit
	}
	return "regular"
}

func itemLength(item models.WardrobeItem) string {
	if item.Length != "" {
		return normalizeName(item.Length)
	}
	if l, ok := categoryLengthDefaults[normalizeName(item.Category)]; ok {
		return l
	}
	return "regular"
}

var shortFitBoosts = map[string]float64{
	"slim": 0.10, "fitted": 0.08, "regular": 0.02, "relaxed": -0.05, "oversized": -0.12,
}

var shortLengthBoosts = map[string]float64{
	"cropped": 0.06, "regular": 0.02, "longline": -0.08,
}

var tallFitBoosts = map[string]float64{
	"oversized": 0.08, "relaxed": 0.05, "regular": 0.02, "fitted": 0.02, "slim": 0.02,
}

var tallLengthBoosts = map[string]float64{
	"longline": 0.06, "regular": 0.02, "cropped": 0.02,
}

// HeightBoost scores one item's silhouette against a stature band.
// Clamped to [-0.15, 0.15]. Average stature gets no adjustment.
func HeightBoost(height string, item models.WardrobeItem) float64 {
	fit := itemFit(item)
	length := itemLength(item)
	var boost float64
	switch height {
	case "short":
		boost = shortFitBoosts[fit] + shortLengthBoosts[length]
	case "tall":
		boost = tallFitBoosts[fit] + tallLengthBoosts[length]
	default:
		return 0
	}
	return clamp(boost, -0.15, 0.15)
}

// outfit-level aggregates: per-item boost averaged across the outfit
func outfitUndertoneBoost(undertone string, items []models.WardrobeItem) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range items {
		total += UndertoneBoost(undertone, item)
	}
	return total / float64(len(items))
}

func outfitHeightBoost(height string, items []models.WardrobeItem) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range items {
		total += HeightBoost(height, item)
	}
	return total / float64(len(items))
}
