package outfit

import (
	"math"
	"strings"

	"vestiqapi/models"
)

// approximate hue (degrees), saturation and lightness per curated color name
type hsl struct {
	H float64
	S float64
	L float64
}

var colorTable = map[string]hsl{
	"red":          {0, 0.85, 0.45},
	"crimson":      {348, 0.83, 0.47},
	"scarlet":      {8, 0.88, 0.5},
	"maroon":       {0, 0.7, 0.25},
	"burgundy":     {345, 0.65, 0.28},
	"wine":         {340, 0.6, 0.3},
	"pink":         {350, 0.8, 0.75},
	"hot pink":     {330, 0.9, 0.6},
	"blush":        {352, 0.5, 0.82},
	"rose":         {345, 0.6, 0.65},
	"salmon":       {6, 0.75, 0.7},
	"coral":        {16, 0.85, 0.65},
	"peach":        {28, 0.8, 0.78},
	"orange":       {30, 0.9, 0.55},
	"burnt orange": {22, 0.8, 0.45},
	"rust":         {18, 0.7, 0.4},
	"terracotta":   {14, 0.55, 0.5},
	"amber":        {45, 0.9, 0.5},
	"gold":         {46, 0.85, 0.48},
	"mustard":      {48, 0.75, 0.45},
	"yellow":       {55, 0.9, 0.6},
	"lemon":        {58, 0.85, 0.7},
	"lime":         {80, 0.8, 0.55},
	"chartreuse":   {90, 0.85, 0.5},
	"olive":        {70, 0.45, 0.35},
	"green":        {120, 0.6, 0.4},
	"forest green": {130, 0.55, 0.25},
	"emerald":      {145, 0.7, 0.4},
	"mint":         {150, 0.5, 0.8},
	"sage":         {110, 0.2, 0.6},
	"teal":         {180, 0.6, 0.35},
	"turquoise":    {175, 0.7, 0.5},
	"cyan":         {185, 0.8, 0.55},
	"aqua":         {185, 0.7, 0.65},
	"sky blue":     {200, 0.7, 0.72},
	"light blue":   {205, 0.6, 0.75},
	"blue":         {220, 0.75, 0.5},
	"royal blue":   {225, 0.8, 0.45},
	"cobalt":       {218, 0.85, 0.42},
	"indigo":       {245, 0.6, 0.35},
	"violet":       {270, 0.6, 0.5},
	"purple":       {280, 0.6, 0.4},
	"plum":         {300, 0.4, 0.35},
	"lavender":     {265, 0.45, 0.78},
	"lilac":        {283, 0.4, 0.75},
	"magenta":      {300, 0.85, 0.5},
	"fuchsia":      {310, 0.9, 0.5},
	"brown":        {25, 0.5, 0.3},
	"chocolate":    {24, 0.6, 0.25},
	"coffee":       {28, 0.45, 0.3},
	"camel":        {33, 0.4, 0.55},
	"caramel":      {30, 0.55, 0.5},
	"copper":       {20, 0.65, 0.45},
	"bronze":       {28, 0.6, 0.4},
}

// defined to harmonize with everything
var neutralColors = map[string]bool{
	"black":      true,
	"white":      true,
	"off-white":  true,
	"off white":  true,
	"gray":       true,
	"grey":       true,
	"light gray": true,
	"light grey": true,
	"dark gray":  true,
	"dark grey":  true,
	"charcoal":   true,
	"silver":     true,
	"navy":       true,
	"beige":      true,
	"cream":      true,
	"ivory":      true,
	"khaki":      true,
	"tan":        true,
	"taupe":      true,
	"stone":      true,
	"sand":       true,
	"denim":      true,
}

func IsNeutralColor(name string) bool {
	return neutralColors[normalizeName(name)]
}

func lookupColor(name string) (hsl, bool) {
	if c, ok := colorTable[name]; ok {
		return c, true
	}
	// partial match, e.g. "dusty rose" -> "rose"
	best := ""
	for key := range colorTable {
		if strings.Contains(name, key) || strings.Contains(key, name) {
			if len(key) > len(best) {
				best = key
			}
		}
	}
	if best != "" {
		return colorTable[best], true
	}
	return hsl{}, false
}

func hueDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// ScorePair rates how well two color names sit together, 0..1.
func ScorePair(colorA, colorB string) float64 {
	a := normalizeName(colorA)
	b := normalizeName(colorB)
	if a == b {
		return 1.0
	}
	if neutralColors[a] || neutralColors[b] {
		return 0.95
	}
	ca, okA := lookupColor(a)
	cb, okB := lookupColor(b)
	if !okA || !okB {
		// agnostic about colors we have no opinion on
		return 0.7
	}

	dist := hueDistance(ca.H, cb.H)
	var score float64
	switch {
	case dist < 15: // monochromatic, decays with lightness gap
		score = 0.9 - 0.2*math.Abs(ca.L-cb.L)
	case dist >= 25 && dist <= 65: // analogous
		score = 0.85
	case dist >= 160: // complementary
		score = 0.85
	case dist >= 130: // split-complementary
		score = 0.8
	case dist >= 110: // triadic
		score = 0.75
	case dist >= 80: // square/tetradic
		score = 0.7
	default:
		score = 0.5
	}

	satDiff := math.Abs(ca.S - cb.S)
	if satDiff < 0.15 {
		score += 0.05
	} else if satDiff > 0.5 {
		score -= 0.10
	}
	return clamp(score, 0, 1)
}

// OutfitHarmony averages pairwise primary-color scores across the outfit.
// Secondary colors clashing with any primary knock a flat 0.1 off.
func OutfitHarmony(items []models.WardrobeItem) float64 {
	if len(items) <= 1 {
		return 1.0
	}
	primaries := make([]string, 0, len(items))
	secondaries := make([]string, 0)
	for _, item := range items {
		if len(item.Colors) > 0 {
			primaries = append(primaries, item.Colors[0])
		}
		if len(item.Colors) > 1 {
			secondaries = append(secondaries, item.Colors[1:]...)
		}
	}
	if len(primaries) < 2 {
		return 0.9
	}

	total := 0.0
	pairs := 0
	for i := 0; i < len(primaries); i++ {
		for j := i + 1; j < len(primaries); j++ {
			total += ScorePair(primaries[i], primaries[j])
			pairs++
		}
	}
	score := total / float64(pairs)

	for _, sec := range secondaries {
		clashes := false
		for _, pri := range primaries {
			if ScorePair(sec, pri) < 0.5 {
				clashes = true
				break
			}
		}
		if clashes {
			score -= 0.1
			break
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
