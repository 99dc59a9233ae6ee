package outfit

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vestiqapi/models"
)

// per-slot selection weights, re-centered so the signed boosts stay positive
const (
	selectTasteWeight     = 0.45
	selectSeasonalWeight  = 0.30
	selectUndertoneWeight = 0.13
	selectHeightWeight    = 0.12
	boostRecenter         = 0.15

	recentWearPenalty = 0.3 // multiplier for items worn inside the cooldown

	colorPairThreshold       = 0.6
	strictColorPairThreshold = 0.75

	topSampleWindow       = 5
	outerwearSampleWindow = 3

	outerwearTempThreshold = 15.0
)

// outfit-level style score weights
const (
	styleTasteWeight    = 0.35
	styleHarmonyWeight  = 0.25
	styleWeatherWeight  = 0.20
	styleOccasionWeight = 0.10
)

var occasionFormalityBands = map[string][2]int{
	"casual":       {0, 5},
	"smart casual": {3, 7},
	"work":         {4, 8},
	"business":     {5, 9},
	"formal":       {8, 10},
	"wedding":      {7, 10},
	"date":         {3, 8},
	"party":        {4, 9},
	"brunch":       {2, 6},
	"travel":       {0, 6},
	"sport":        {0, 3},
	"gym":          {0, 3},
	"athleisure":   {0, 4},
}

// FormalityBand maps an occasion to an inclusive [min, max] formality range.
// Unrecognized occasions are unrestricted.
func FormalityBand(occasion string) (int, int, bool) {
	if band, ok := occasionFormalityBands[normalizeName(occasion)]; ok {
		return band[0], band[1], true
	}
	return 0, 10, false
}

// Constraints bias a single generation call. Transient, never persisted.
type Constraints struct {
	ExcludeItemIds []uint
	MinFormality   *int
	MaxFormality   *int
	PreferredVibes []string
	// per-slot forced swaps: slot -> item id that must not be reused
	SwapSlots map[string]uint
	// raise the color pairing threshold for cautious palettes
	AvoidColorClashes bool
}

// ComposedOutfit is one proposed combination before persistence.
type ComposedOutfit struct {
	Items      []Candidate // top, bottom, footwear, then optional slots
	Name       string
	Vibe       string
	Reasoning  string
	StylingTip *string
	ColorNote  *string

	StyleScore        float64
	ColorHarmonyScore float64
	TasteScore        float64
	WeatherScore      float64
	ConfidenceScore   float64
	OccasionMatch     bool

	ComposedBy          string // rules, llm
	LLMModel            *string
	LLMInputTokenCount  *int32
	LLMOutputTokenCount *int32
	LLMTotalTokenCount  *int32
}

func (o *ComposedOutfit) ItemIDs() []uint {
	ids := make([]uint, 0, len(o.Items))
	for _, c := range o.Items {
		ids = append(ids, c.Item.ID)
	}
	return ids
}

func (o *ComposedOutfit) wardrobeItems() []models.WardrobeItem {
	items := make([]models.WardrobeItem, 0, len(o.Items))
	for _, c := range o.Items {
		items = append(items, c.Item)
	}
	return items
}

type composeInput struct {
	pool        map[string][]Candidate
	user        models.UserAccount
	weather     Weather
	occasion    string
	constraints Constraints
	exclude     map[uint]bool
	rng         *rand.Rand
}

func (in composeInput) formalityBounds() (int, int, bool) {
	minF, maxF, known := FormalityBand(in.occasion)
	if in.constraints.MinFormality != nil && *in.constraints.MinFormality > minF {
		minF = *in.constraints.MinFormality
	}
	if in.constraints.MaxFormality != nil && *in.constraints.MaxFormality < maxF {
		maxF = *in.constraints.MaxFormality
	}
	return minF, maxF, known
}

func wornRecently(item models.WardrobeItem) bool {
	return item.LastWornAt != nil &&
		time.Since(*item.LastWornAt) < time.Duration(CooldownDays)*24*time.Hour
}

func selectionScore(c Candidate, user models.UserAccount) float64 {
	score := c.TasteScore*selectTasteWeight +
		c.SeasonalFit*selectSeasonalWeight +
		(UndertoneBoost(user.Undertone, c.Item)+boostRecenter)*selectUndertoneWeight +
		(HeightBoost(user.Height, c.Item)+boostRecenter)*selectHeightWeight
	if wornRecently(c.Item) {
		score *= recentWearPenalty
	}
	return score
}

type scoredCandidate struct {
	Candidate
	score float64
}

// weightedPick samples among the top `window` candidates proportionally to
// score, so repeated calls vary instead of always returning the argmax.
func weightedPick(rng *rand.Rand, scored []scoredCandidate, window int) Candidate {
	if len(scored) > window {
		scored = scored[:window]
	}
	total := 0.0
	for _, s := range scored {
		total += s.score + 1e-6
	}
	r := rng.Float64() * total
	for _, s := range scored {
		r -= s.score + 1e-6
		if r <= 0 {
			return s.Candidate
		}
	}
	return scored[len(scored)-1].Candidate
}

// fillSlot filters, scores and samples one slot. relaxWeather is the
// footwear exception: off-season shoes beat no outfit at all.
func fillSlot(in composeInput, slot string, chosen []Candidate, relaxWeather bool, window int) (Candidate, bool) {
	minF, maxF, _ := in.formalityBounds()
	threshold := colorPairThreshold
	if in.constraints.AvoidColorClashes {
		threshold = strictColorPairThreshold
	}

	usedColors := make([]string, 0, len(chosen))
	usedIds := map[uint]bool{}
	for _, c := range chosen {
		usedIds[c.Item.ID] = true
		if len(c.Item.Colors) > 0 {
			usedColors = append(usedColors, c.Item.Colors[0])
		}
	}

	filter := func(requireWeather bool) []scoredCandidate {
		var out []scoredCandidate
		for _, c := range in.pool[slot] {
			if usedIds[c.Item.ID] || in.exclude[c.Item.ID] {
				continue
			}
			if swapId, ok := in.constraints.SwapSlots[slot]; ok && c.Item.ID == swapId {
				continue
			}
			if c.Item.Formality < minF || c.Item.Formality > maxF {
				continue
			}
			if requireWeather && !c.WeatherOK {
				continue
			}
			if len(c.Item.Colors) > 0 {
				clash := false
				for _, used := range usedColors {
					if ScorePair(c.Item.Colors[0], used) < threshold {
						clash = true
						break
					}
				}
				if clash {
					continue
				}
			}
			out = append(out, scoredCandidate{c, selectionScore(c, in.user)})
		}
		return out
	}

	candidates := filter(true)
	if len(candidates) == 0 && relaxWeather {
		candidates = filter(false)
	}
	// items inside the wear cooldown compete only when the slot has nothing
	// fresh left; the score penalty then orders that fallback
	if fresh := freshCandidates(candidates); len(fresh) > 0 {
		candidates = fresh
	}
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	sortScoredDesc(candidates)
	return weightedPick(in.rng, candidates, window), true
}

func freshCandidates(scored []scoredCandidate) []scoredCandidate {
	var out []scoredCandidate
	for _, s := range scored {
		if !wornRecently(s.Item) {
			out = append(out, s)
		}
	}
	return out
}

// ComposeRuleBased is the deterministic fallback composer. Returns nil when
// any required slot cannot be filled - no partial outfits.
func ComposeRuleBased(in composeInput) *ComposedOutfit {
	var chosen []Candidate
	for _, slot := range RequiredSlots {
		relax := slot == SlotFootwear
		pick, ok := fillSlot(in, slot, chosen, relax, topSampleWindow)
		if !ok {
			return nil
		}
		chosen = append(chosen, pick)
	}

	minF, _, _ := in.formalityBounds()
	if in.weather.TempC < outerwearTempThreshold || minF >= 7 {
		if pick, ok := fillSlot(in, SlotOuterwear, chosen, false, outerwearSampleWindow); ok {
			chosen = append(chosen, pick)
		}
	}
	if pick, ok := fillSlot(in, SlotAccessory, chosen, false, outerwearSampleWindow); ok {
		chosen = append(chosen, pick)
	}

	out := &ComposedOutfit{
		Items:           chosen,
		ComposedBy:      "rules",
		ConfidenceScore: 0.7,
	}
	scoreOutfit(out, in)
	describeOutfit(out, in)
	return out
}

func scoreOutfit(out *ComposedOutfit, in composeInput) {
	items := out.wardrobeItems()
	taste, weather := 0.0, 0.0
	for _, c := range out.Items {
		taste += c.TasteScore
		weather += c.SeasonalFit
	}
	if len(out.Items) > 0 {
		taste /= float64(len(out.Items))
		weather /= float64(len(out.Items))
	}

	minF, maxF, known := in.formalityBounds()
	occasionMatch := known
	for _, item := range items {
		if item.Formality < minF || item.Formality > maxF {
			occasionMatch = false
			break
		}
	}

	harmony := OutfitHarmony(items)
	uBoost := outfitUndertoneBoost(in.user.Undertone, items)
	hBoost := outfitHeightBoost(in.user.Height, items)

	out.TasteScore = taste
	out.WeatherScore = weather
	out.ColorHarmonyScore = harmony
	out.OccasionMatch = occasionMatch

	style := taste*styleTasteWeight + harmony*styleHarmonyWeight + weather*styleWeatherWeight
	if occasionMatch {
		style += styleOccasionWeight
	}
	out.StyleScore = style + uBoost + hBoost
}

var titleCaser = cases.Title(language.English)

func describeOutfit(out *ComposedOutfit, in composeInput) {
	items := out.wardrobeItems()
	occasion := normalizeName(in.occasion)
	if occasion == "" {
		occasion = "everyday"
	}
	out.Name = titleCaser.String(occasion) + " " + dominantVibe(items) + " Look"
	out.Vibe = dominantVibe(items)
	primary := "neutral"
	if len(items) > 0 && len(items[0].Colors) > 0 {
		primary = normalizeName(items[0].Colors[0])
	}
	out.Reasoning = fmt.Sprintf("Built around your %s with %s tones, dressed for %v°C and %s.",
		normalizeName(items[0].Name), primary, int(in.weather.TempC), in.weather.Condition)
}

func dominantVibe(items []models.WardrobeItem) string {
	counts := map[string]int{}
	for _, item := range items {
		for _, vibe := range item.Vibes {
			counts[normalizeName(vibe)]++
		}
	}
	best, bestCount := "Effortless", 0
	for vibe, count := range counts {
		if count > bestCount || (count == bestCount && vibe < strings.ToLower(best)) {
			best = titleCaser.String(vibe)
			bestCount = count
		}
	}
	return best
}

func sortScoredDesc(scored []scoredCandidate) {
	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
}
