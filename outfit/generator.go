package outfit

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"vestiqapi/models"
)

const (
	DefaultOutfitCount = 3
	MaxOutfitCount     = 6
	OutfitTTL          = 24 * time.Hour
)

// Engine wires the stores and providers the generation pipeline needs.
// LLM and Weather may be nil - both paths degrade cleanly.
type Engine struct {
	DB      *gorm.DB
	LLM     LLMProvider
	Weather WeatherProvider
	// overridable for deterministic tests
	Rand *rand.Rand
}

type Options struct {
	Occasion       string
	Mood           string
	Lat            *float64
	Lon            *float64
	Count          int
	ExcludeItemIds []uint
	Constraints    *Constraints
}

type Result struct {
	Outfits []*ComposedOutfit
	Weather Weather
}

func (e *Engine) rng() *rand.Rand {
	if e.Rand != nil {
		return e.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (e *Engine) resolveWeather(ctx context.Context, lat, lon *float64) Weather {
	if e.Weather == nil || lat == nil || lon == nil {
		return DefaultWeather()
	}
	w, err := e.Weather.ByCoords(ctx, *lat, *lon)
	if err != nil || w == nil {
		if err != nil {
			fmt.Printf("[Weather] fetch failed: %v\n", err)
			sentry.CaptureException(err)
		}
		return DefaultWeather()
	}
	return *w
}

// GenerateOutfits is the single entry point used by handlers and jobs. It
// never persists anything; callers save via SaveOutfits. The only hard
// failure is the wardrobe fetch itself - everything else degrades.
func (e *Engine) GenerateOutfits(ctx context.Context, user models.UserAccount, opts Options) (*Result, error) {
	count := opts.Count
	if count <= 0 {
		count = DefaultOutfitCount
	}
	if count > MaxOutfitCount {
		count = MaxOutfitCount
	}
	constraints := Constraints{}
	if opts.Constraints != nil {
		constraints = *opts.Constraints
	}

	weather := e.resolveWeather(ctx, opts.Lat, opts.Lon)
	result := &Result{Weather: weather}

	taste := GetTasteVector(e.DB, user.ID)
	genders := GenderFilter(user.Department)
	cooldown := FetchRecentlyWorn(e.DB, user.ID, CooldownDays)

	exclude := map[uint]bool{}
	for _, id := range opts.ExcludeItemIds {
		exclude[id] = true
	}
	for _, id := range constraints.ExcludeItemIds {
		exclude[id] = true
	}
	retrievalExclude := make([]uint, 0, len(exclude)+len(cooldown))
	for id := range exclude {
		retrievalExclude = append(retrievalExclude, id)
	}
	retrievalExclude = append(retrievalExclude, cooldown...)

	items, err := e.retrieveCandidates(user, taste, genders, weather, retrievalExclude)
	if err != nil {
		return nil, err
	}
	if len(items) < MinInventorySize {
		return result, nil
	}

	pool := BuildCandidates(items, taste, weather.SeasonSuggestion)
	if opts.Mood != "" {
		reorderByMood(pool, opts.Mood, constraints.PreferredVibes)
	}
	for _, slot := range RequiredSlots {
		if len(pool[slot]) == 0 {
			return result, nil
		}
	}

	in := composeInput{
		pool:        pool,
		user:        user,
		weather:     weather,
		occasion:    opts.Occasion,
		constraints: constraints,
		exclude:     exclude,
		rng:         e.rng(),
	}

	outfits := composeWithLLM(ctx, e.LLM, in, count, items)
	for _, o := range outfits {
		for _, id := range o.ItemIDs() {
			in.exclude[id] = true
		}
	}

	// backfill the shortfall, excluding items already placed in this batch
	for attempts := 0; len(outfits) < count && attempts < count*3; attempts++ {
		o := ComposeRuleBased(in)
		if o == nil {
			break
		}
		outfits = append(outfits, o)
		for _, id := range o.ItemIDs() {
			in.exclude[id] = true
		}
	}

	sort.SliceStable(outfits, func(i, j int) bool {
		return outfits[i].StyleScore > outfits[j].StyleScore
	})
	if len(outfits) > count {
		outfits = outfits[:count]
	}
	result.Outfits = outfits
	return result, nil
}

func (e *Engine) retrieveCandidates(user models.UserAccount, taste []float64, genders []string,
	weather Weather, excludeIds []uint) ([]models.WardrobeItem, error) {

	if len(taste) > 0 {
		seasons := []string{weather.SeasonSuggestion}
		items, err := FetchCandidatesByVector(e.DB, user.ID, taste, genders, PerSlotLimit, seasons, excludeIds)
		if err != nil {
			fmt.Printf("[Outfit: %v] vector retrieval failed: %v\n", user.ID, err)
			sentry.CaptureException(err)
		} else if len(items) >= MinInventorySize {
			return items, nil
		}
	}
	return FetchEligibleItems(e.DB, user.ID, genders)
}

// reorderByMood bubbles vibe-matching candidates to the front of each slot
// group without dropping anything.
func reorderByMood(pool map[string][]Candidate, mood string, preferredVibes []string) {
	wanted := map[string]bool{normalizeName(mood): true}
	for _, v := range preferredVibes {
		wanted[normalizeName(v)] = true
	}
	matches := func(c Candidate) bool {
		for _, vibe := range c.Item.Vibes {
			if wanted[normalizeName(vibe)] {
				return true
			}
		}
		return false
	}
	for slot, group := range pool {
		sort.SliceStable(group, func(i, j int) bool {
			return matches(group[i]) && !matches(group[j])
		})
		pool[slot] = group
	}
}

// SaveOutfits persists a generation result with provenance. It lives outside
// GenerateOutfits so pipelines that only preview never write.
func SaveOutfits(db *gorm.DB, userID uint, result *Result, occasion, mood, source string) ([]models.GeneratedOutfit, error) {
	saved := make([]models.GeneratedOutfit, 0, len(result.Outfits))
	for _, o := range result.Outfits {
		ids := make(pq.Int64Array, 0, len(o.Items))
		for _, c := range o.Items {
			ids = append(ids, int64(c.Item.ID))
		}
		expires := time.Now().Add(OutfitTTL)
		temp := result.Weather.TempC
		condition := result.Weather.Condition
		season := result.Weather.SeasonSuggestion
		record := models.GeneratedOutfit{
			UserAccountID:       userID,
			ItemIDs:             ids,
			Name:                o.Name,
			Vibe:                o.Vibe,
			Reasoning:           o.Reasoning,
			StylingTip:          o.StylingTip,
			ColorNote:           o.ColorNote,
			Occasion:            occasion,
			Mood:                mood,
			Source:              source,
			ComposedBy:          o.ComposedBy,
			OccasionFit:         o.OccasionMatch,
			StyleScore:          o.StyleScore,
			ColorHarmonyScore:   o.ColorHarmonyScore,
			TasteScore:          o.TasteScore,
			WeatherScore:        o.WeatherScore,
			ConfidenceScore:     o.ConfidenceScore,
			WeatherTempC:        &temp,
			WeatherCondition:    &condition,
			SeasonSuggestion:    &season,
			LLMModel:            o.LLMModel,
			LLMInputTokenCount:  o.LLMInputTokenCount,
			LLMOutputTokenCount: o.LLMOutputTokenCount,
			LLMTotalTokenCount:  o.LLMTotalTokenCount,
			ExpiresAt:           &expires,
		}
		if err := db.Create(&record).Error; err != nil {
			return saved, err
		}
		saved = append(saved, record)
	}
	return saved, nil
}
