package outfit

import (
	"fmt"
	"sort"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"vestiqapi/models"
)

const (
	// vector retrieval keeps this many items per slot before composition
	PerSlotLimit = 15
	// items worn within this many days sit out of new outfits
	CooldownDays = 3
	// hard floor: fewer eligible items than this and generation returns empty
	MinInventorySize = 3
)

// Candidate is a wardrobe item annotated with everything the composers score.
type Candidate struct {
	Item        models.WardrobeItem
	Slot        string
	TasteScore  float64 // cosine alignment remapped to 0..1, 0.5 when no taste signal
	SeasonalFit float64
	WeatherOK   bool
}

// GenderFilter maps the user's department preference to an allow-list.
// Unisex is always included; no preference allows everything.
func GenderFilter(department string) []string {
	switch department {
	case "male", "female":
		return []string{department, "unisex"}
	default:
		return []string{"male", "female", "unisex"}
	}
}

// FetchEligibleItems returns the user's wardrobe items that can enter
// composition: processed, not archived, matching the gender allow-list.
// This is the one fetch whose failure surfaces to the caller.
func FetchEligibleItems(db *gorm.DB, userID uint, genders []string) ([]models.WardrobeItem, error) {
	var items []models.WardrobeItem
	err := db.Where("owner_id = ?", userID).
		Where("processing_status = ?", "completed").
		Where("archived = ?", false).
		Where("gender IN ? OR gender = ''", genders).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FetchRecentlyWorn flattens item ids out of outfits worn within the window,
// plus items marked worn directly. Failures degrade to an empty cooldown set.
func FetchRecentlyWorn(db *gorm.DB, userID uint, days int) []uint {
	cutoff := time.Now().AddDate(0, 0, -days)
	seen := map[uint]bool{}

	var outfits []models.GeneratedOutfit
	err := db.Where("user_account_id = ?", userID).
		Where("is_worn = ?", true).
		Where("worn_at > ?", cutoff).
		Find(&outfits).Error
	if err != nil {
		fmt.Printf("[Cooldown: %v] outfit history scan failed: %v\n", userID, err)
		sentry.CaptureException(err)
	} else {
		for _, o := range outfits {
			for _, id := range o.ItemIDs {
				seen[uint(id)] = true
			}
		}
	}

	var itemIds []uint
	err = db.Model(&models.WardrobeItem{}).
		Where("owner_id = ?", userID).
		Where("last_worn_at > ?", cutoff).
		Pluck("id", &itemIds).Error
	if err != nil {
		fmt.Printf("[Cooldown: %v] worn item scan failed: %v\n", userID, err)
		sentry.CaptureException(err)
	}
	for _, id := range itemIds {
		seen[id] = true
	}

	out := make([]uint, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// FetchCandidatesByVector narrows the eligible wardrobe by taste similarity:
// season-filtered fetch, cooldown exclusion, then per-slot cosine ranking.
// Wardrobes are small enough that ranking happens in process.
func FetchCandidatesByVector(db *gorm.DB, userID uint, taste []float64, genders []string,
	perSlotLimit int, seasons []string, excludeIds []uint) ([]models.WardrobeItem, error) {

	q := db.Where("owner_id = ?", userID).
		Where("processing_status = ?", "completed").
		Where("archived = ?", false).
		Where("gender IN ? OR gender = ''", genders)
	if len(seasons) > 0 {
		q = q.Where("seasons && ? OR 'all' = ANY(seasons) OR cardinality(seasons) = 0",
			pq.StringArray(seasons))
	}
	if len(excludeIds) > 0 {
		q = q.Where("id NOT IN ?", excludeIds)
	}

	var items []models.WardrobeItem
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}

	type ranked struct {
		item models.WardrobeItem
		sim  float64
	}
	bySlot := map[string][]ranked{}
	for _, item := range items {
		slot := ItemSlot(item)
		if slot == SlotUnknown {
			continue
		}
		bySlot[slot] = append(bySlot[slot], ranked{item, Cosine(taste, item.Embedding)})
	}

	out := make([]models.WardrobeItem, 0, len(items))
	for _, group := range bySlot {
		sort.Slice(group, func(i, j int) bool { return group[i].sim > group[j].sim })
		if len(group) > perSlotLimit {
			group = group[:perSlotLimit]
		}
		for _, r := range group {
			out = append(out, r.item)
		}
	}
	return out, nil
}

// BuildCandidates annotates and groups items by slot, dropping slotless ones.
// Output groups are sorted descending by seasonal fit.
func BuildCandidates(items []models.WardrobeItem, taste []float64, season string) map[string][]Candidate {
	groups := map[string][]Candidate{}
	for _, item := range items {
		slot := ItemSlot(item)
		if slot == SlotUnknown {
			continue
		}
		tasteScore := 0.5
		if len(taste) > 0 && len(item.Embedding) == len(taste) {
			tasteScore = Alignment(Cosine(taste, item.Embedding))
		}
		fit := SeasonalFit(item, season)
		groups[slot] = append(groups[slot], Candidate{
			Item:        item,
			Slot:        slot,
			TasteScore:  tasteScore,
			SeasonalFit: fit,
			WeatherOK:   fit >= 0.5,
		})
	}
	for slot := range groups {
		group := groups[slot]
		sort.Slice(group, func(i, j int) bool { return group[i].SeasonalFit > group[j].SeasonalFit })
	}
	return groups
}
