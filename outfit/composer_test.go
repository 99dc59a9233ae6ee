package outfit

import (
	"math/rand"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vestiqapi/models"
)

func TestFormalityBand(t *testing.T) {
	minF, maxF, known := FormalityBand("formal")
	assert.True(t, known)
	assert.Equal(t, 8, minF)
	assert.Equal(t, 10, maxF)

	minF, maxF, known = FormalityBand("Casual")
	assert.True(t, known)
	assert.Equal(t, 0, minF)
	assert.Equal(t, 5, maxF)

	minF, maxF, known = FormalityBand("space walk")
	assert.False(t, known)
	assert.Equal(t, 0, minF)
	assert.Equal(t, 10, maxF)
}

func composerTestItem(id uint, name, category string, colors []string, formality int) models.WardrobeItem {
	item := models.WardrobeItem{
		Name:      name,
		Category:  category,
		Colors:    pq.StringArray(colors),
		Formality: formality,
		Seasons:   pq.StringArray{"all"},
	}
	item.ID = id
	return item
}

func composerTestInput(items []models.WardrobeItem, occasion string) composeInput {
	return composeInput{
		pool:     BuildCandidates(items, nil, SeasonSpring),
		user:     models.UserAccount{},
		weather:  DefaultWeather(),
		occasion: occasion,
		exclude:  map[uint]bool{},
		rng:      rand.New(rand.NewSource(7)),
	}
}

func casualCloset() []models.WardrobeItem {
	return []models.WardrobeItem{
		composerTestItem(1, "White Tee", "t-shirt", []string{"white"}, 2),
		composerTestItem(2, "Navy Oxford", "shirt", []string{"navy"}, 5),
		composerTestItem(3, "Khaki Chinos", "chinos", []string{"khaki"}, 4),
		composerTestItem(4, "White Sneakers", "sneakers", []string{"white"}, 2),
		composerTestItem(5, "Brown Loafers", "loafers", []string{"brown"}, 5),
	}
}

func TestComposeRuleBasedFillsRequiredSlots(t *testing.T) {
	in := composerTestInput(casualCloset(), "casual")
	out := ComposeRuleBased(in)
	require.NotNil(t, out)

	slots := map[string]bool{}
	seen := map[uint]bool{}
	for _, c := range out.Items {
		assert.False(t, seen[c.Item.ID], "item %v reused", c.Item.ID)
		seen[c.Item.ID] = true
		slots[c.Slot] = true
	}
	for _, slot := range RequiredSlots {
		assert.True(t, slots[slot], "missing slot %s", slot)
	}
	assert.Equal(t, "rules", out.ComposedBy)
	assert.True(t, out.OccasionMatch)
	assert.NotEmpty(t, out.Name)
	assert.NotEmpty(t, out.Reasoning)
	assert.GreaterOrEqual(t, out.StyleScore, 0.0)
	assert.GreaterOrEqual(t, out.ColorHarmonyScore, 0.85)
}

func TestComposeRuleBasedFormalityFiltering(t *testing.T) {
	// nothing in a casual closet survives the formal band
	in := composerTestInput(casualCloset(), "formal")
	assert.Nil(t, ComposeRuleBased(in))
}

func TestComposeRuleBasedMissingSlot(t *testing.T) {
	items := []models.WardrobeItem{
		composerTestItem(1, "White Tee", "t-shirt", []string{"white"}, 2),
		composerTestItem(2, "Khaki Chinos", "chinos", []string{"khaki"}, 4),
	}
	in := composerTestInput(items, "casual")
	assert.Nil(t, ComposeRuleBased(in))
}

func TestComposeRuleBasedExclusions(t *testing.T) {
	items := casualCloset()
	in := composerTestInput(items, "casual")
	in.exclude[1] = true
	in.exclude[2] = true // every top is out
	assert.Nil(t, ComposeRuleBased(in))
}

func TestComposeRuleBasedColorClash(t *testing.T) {
	items := []models.WardrobeItem{
		composerTestItem(1, "Red Tee", "t-shirt", []string{"red"}, 2),
		composerTestItem(2, "Rust Chinos", "chinos", []string{"rust"}, 2),
		composerTestItem(3, "White Sneakers", "sneakers", []string{"white"}, 2),
	}
	in := composerTestInput(items, "casual")
	// red on rust fails the pairing threshold; no alternate bottom exists
	assert.Nil(t, ComposeRuleBased(in))

	items[1] = composerTestItem(2, "Navy Chinos", "chinos", []string{"navy"}, 2)
	in = composerTestInput(items, "casual")
	assert.NotNil(t, ComposeRuleBased(in))
}

func TestComposeRuleBasedAddsOuterwearWhenCold(t *testing.T) {
	items := append(casualCloset(),
		composerTestItem(6, "Denim Jacket", "denim jacket", []string{"navy"}, 3))

	in := composerTestInput(items, "casual")
	in.weather.TempC = 5
	out := ComposeRuleBased(in)
	require.NotNil(t, out)
	slots := map[string]bool{}
	for _, c := range out.Items {
		slots[c.Slot] = true
	}
	assert.True(t, slots[SlotOuterwear])

	in = composerTestInput(items, "casual")
	in.weather.TempC = 25
	out = ComposeRuleBased(in)
	require.NotNil(t, out)
	slots = map[string]bool{}
	for _, c := range out.Items {
		slots[c.Slot] = true
	}
	assert.False(t, slots[SlotOuterwear])
}

func TestComposeRuleBasedSkipsRecentlyWorn(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)
	wornTee := composerTestItem(1, "Worn White Tee", "t-shirt", []string{"white"}, 2)
	wornTee.LastWornAt = &yesterday
	items := []models.WardrobeItem{
		wornTee,
		composerTestItem(2, "Fresh White Tee", "t-shirt", []string{"white"}, 2),
		composerTestItem(3, "Khaki Chinos", "chinos", []string{"khaki"}, 4),
		composerTestItem(4, "White Sneakers", "sneakers", []string{"white"}, 2),
	}

	for seed := int64(0); seed < 500; seed++ {
		in := composerTestInput(items, "casual")
		in.rng = rand.New(rand.NewSource(seed))
		out := ComposeRuleBased(in)
		require.NotNil(t, out)
		for _, c := range out.Items {
			assert.NotEqual(t, uint(1), c.Item.ID, "worn item picked over a fresh alternative, seed %v", seed)
		}
	}
}

func TestComposeRuleBasedWornOnlyFallback(t *testing.T) {
	// when every candidate in a slot is inside the cooldown, the slot still fills
	yesterday := time.Now().Add(-24 * time.Hour)
	wornTee := composerTestItem(1, "Worn White Tee", "t-shirt", []string{"white"}, 2)
	wornTee.LastWornAt = &yesterday
	items := []models.WardrobeItem{
		wornTee,
		composerTestItem(2, "Khaki Chinos", "chinos", []string{"khaki"}, 4),
		composerTestItem(3, "White Sneakers", "sneakers", []string{"white"}, 2),
	}
	in := composerTestInput(items, "casual")
	out := ComposeRuleBased(in)
	require.NotNil(t, out)
	seen := map[uint]bool{}
	for _, c := range out.Items {
		seen[c.Item.ID] = true
	}
	assert.True(t, seen[1])
}

func TestSelectionScoreCooldownPenalty(t *testing.T) {
	fresh := Candidate{
		Item:        composerTestItem(1, "White Tee", "t-shirt", []string{"white"}, 2),
		Slot:        SlotTop,
		TasteScore:  0.8,
		SeasonalFit: 1.0,
	}
	worn := fresh
	now := time.Now()
	worn.Item.LastWornAt = &now

	user := models.UserAccount{}
	assert.Greater(t, selectionScore(fresh, user), selectionScore(worn, user))
}

func TestWeightedPickWindow(t *testing.T) {
	scored := []scoredCandidate{
		{Candidate{Item: composerTestItem(1, "a", "t-shirt", nil, 0), Slot: SlotTop}, 0.9},
		{Candidate{Item: composerTestItem(2, "b", "t-shirt", nil, 0), Slot: SlotTop}, 0.5},
		{Candidate{Item: composerTestItem(3, "c", "t-shirt", nil, 0), Slot: SlotTop}, 0.1},
	}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		pick := weightedPick(rng, scored, 2)
		assert.NotEqual(t, uint(3), pick.Item.ID, "picked outside the sampling window")
	}
}

func TestWeightedPickFavorsHigherScores(t *testing.T) {
	scored := []scoredCandidate{
		{Candidate{Item: composerTestItem(1, "a", "t-shirt", nil, 0), Slot: SlotTop}, 0.9},
		{Candidate{Item: composerTestItem(2, "b", "t-shirt", nil, 0), Slot: SlotTop}, 0.5},
		{Candidate{Item: composerTestItem(3, "c", "t-shirt", nil, 0), Slot: SlotTop}, 0.3},
		{Candidate{Item: composerTestItem(4, "d", "t-shirt", nil, 0), Slot: SlotTop}, 0.2},
		{Candidate{Item: composerTestItem(5, "e", "t-shirt", nil, 0), Slot: SlotTop}, 0.1},
	}
	rng := rand.New(rand.NewSource(99))
	counts := map[uint]int{}
	for i := 0; i < 5000; i++ {
		counts[weightedPick(rng, scored, topSampleWindow).Item.ID]++
	}
	assert.Greater(t, counts[1], counts[5], "best candidate should win more often than the worst")
	assert.Greater(t, counts[1], counts[3])
	for id := uint(1); id <= 5; id++ {
		assert.Greater(t, counts[id], 0, "candidate %v never sampled", id)
	}
}

func TestWeightedPickSingleCandidate(t *testing.T) {
	scored := []scoredCandidate{
		{Candidate{Item: composerTestItem(9, "only", "t-shirt", nil, 0), Slot: SlotTop}, 0.0},
	}
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, uint(9), weightedPick(rng, scored, 5).Item.ID)
}
