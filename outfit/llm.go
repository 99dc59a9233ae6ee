package outfit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getsentry/sentry-go"

	"vestiqapi/models"
)

// LLMCompletion is one model response plus usage accounting.
type LLMCompletion struct {
	Text             string
	Model            string
	InputTokenCount  int32
	OutputTokenCount int32
	TotalTokenCount  int32
}

// LLMProvider is the text-completion boundary. Implementations carry their
// own timeout and model fallback chain; callers must tolerate non-JSON text.
type LLMProvider interface {
	Available() bool
	Complete(ctx context.Context, systemInstruction string, prompt string, maxTokens int32, temperature float32) (*LLMCompletion, error)
}

const (
	llmMaxCandidatesPerSlot = 10
	llmMaxOutputTokens      = 4096
	llmTemperature          = float32(0.7)
)

const stylistSystemInstruction = `You are a personal fashion stylist. You compose outfits only from the wardrobe items listed in the prompt, referencing them strictly by their numeric ids. Respond with raw JSON only - no markdown, no commentary outside the JSON object.`

type llmOutfitIn struct {
	Top        uint    `json:"top"`
	Bottom     uint    `json:"bottom"`
	Footwear   uint    `json:"footwear"`
	Outerwear  *uint   `json:"outerwear"`
	Accessory  *uint   `json:"accessory"`
	Name       string  `json:"name"`
	Vibe       string  `json:"vibe"`
	Reasoning  string  `json:"reasoning"`
	StylingTip string  `json:"styling_tip"`
	ColorNote  string  `json:"color_harmony"`
	Confidence float64 `json:"confidence"`
}

type llmOutfitsPayload struct {
	Outfits []llmOutfitIn `json:"outfits"`
}

func buildStylistPrompt(in composeInput, count int, allItems []models.WardrobeItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Compose %v distinct outfits for this wardrobe.\n\n", count)
	fmt.Fprintf(&b, "Context:\n- occasion: %s\n- weather: %v°C, %s (season: %s)\n",
		emptyAs(in.occasion, "everyday"), int(in.weather.TempC), in.weather.Condition,
		in.weather.SeasonSuggestion)

	minF, maxF, known := in.formalityBounds()
	if known || in.constraints.MinFormality != nil || in.constraints.MaxFormality != nil {
		fmt.Fprintf(&b, "- formality range: %v to %v (0=loungewear, 10=black tie)\n", minF, maxF)
	}
	if vibes := dominantVibes(allItems, 3); len(vibes) > 0 {
		fmt.Fprintf(&b, "- the user gravitates to: %s\n", strings.Join(vibes, ", "))
	}
	if colors := preferredColors(allItems, 3); len(colors) > 0 {
		fmt.Fprintf(&b, "- colors they own most: %s\n", strings.Join(colors, ", "))
	}
	if len(in.constraints.PreferredVibes) > 0 {
		fmt.Fprintf(&b, "- requested vibe: %s\n", strings.Join(in.constraints.PreferredVibes, ", "))
	}
	if len(in.constraints.SwapSlots) > 0 {
		for slot, id := range in.constraints.SwapSlots {
			fmt.Fprintf(&b, "- do not use item %v for the %s slot\n", id, slot)
		}
	}

	b.WriteString("\nCandidates by slot:\n")
	for _, slot := range []string{SlotTop, SlotBottom, SlotFootwear, SlotOuterwear, SlotAccessory} {
		group := in.pool[slot]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", slot)
		limit := len(group)
		if limit > llmMaxCandidatesPerSlot {
			limit = llmMaxCandidatesPerSlot
		}
		for _, c := range group[:limit] {
			if in.exclude[c.Item.ID] {
				continue
			}
			fmt.Fprintf(&b, "- id=%v %s (colors: %s; pattern: %s; vibes: %s; formality: %v; taste: %.2f)\n",
				c.Item.ID, normalizeName(c.Item.Name),
				emptyAs(strings.Join(c.Item.Colors, ", "), "unknown"),
				emptyAs(c.Item.Pattern, "solid"),
				emptyAs(strings.Join(c.Item.Vibes, ", "), "-"),
				c.Item.Formality, c.TasteScore)
		}
	}

	b.WriteString(`
Return JSON exactly in this shape:
{"outfits": [{"top": <id>, "bottom": <id>, "footwear": <id>, "outerwear": <id or null>, "accessory": <id or null>, "name": "...", "vibe": "one word", "reasoning": "1-2 sentences", "styling_tip": "...", "color_harmony": "...", "confidence": 0.0-1.0}]}
Required per outfit: top, bottom and footwear ids. Never reuse an item across outfits in the same response.`)
	return b.String()
}

// ExtractJSONObject tolerates markdown fences and prose around the payload:
// it strips fences and slices from the first '{' to the last '}'.
func ExtractJSONObject(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return cleaned[start : end+1]
}

// composeWithLLM asks the model for up to `count` outfits and validates them
// against the candidate pool. Any failure returns what was salvageable; the
// orchestrator backfills with the rule-based composer.
func composeWithLLM(ctx context.Context, llm LLMProvider, in composeInput, count int, allItems []models.WardrobeItem) []*ComposedOutfit {
	if llm == nil || !llm.Available() {
		return nil
	}

	prompt := buildStylistPrompt(in, count, allItems)
	completion, err := llm.Complete(ctx, stylistSystemInstruction, prompt, llmMaxOutputTokens, llmTemperature)
	if err != nil {
		fmt.Printf("[Outfit: %v] llm completion failed: %v\n", in.user.ID, err)
		sentry.CaptureException(err)
		return nil
	}

	raw := ExtractJSONObject(completion.Text)
	if raw == "" {
		fmt.Printf("[Outfit: %v] llm returned no JSON object\n", in.user.ID)
		return nil
	}
	var payload llmOutfitsPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		fmt.Printf("[Outfit: %v] llm JSON parse failed: %v\n", in.user.ID, err)
		sentry.CaptureException(err)
		return nil
	}

	byId := map[uint]Candidate{}
	for _, group := range in.pool {
		for _, c := range group {
			byId[c.Item.ID] = c
		}
	}

	var results []*ComposedOutfit
	usedInResponse := map[uint]bool{}
	for _, o := range payload.Outfits {
		if len(results) >= count {
			break
		}
		out, ok := resolveLLMOutfit(o, byId, in, usedInResponse, completion)
		if !ok {
			continue
		}
		results = append(results, out)
	}
	return results
}

// resolveLLMOutfit turns one model selection into a scored outfit, dropping
// it on any missing required slot, unknown id or duplicate item.
func resolveLLMOutfit(o llmOutfitIn, byId map[uint]Candidate, in composeInput,
	usedInResponse map[uint]bool, completion *LLMCompletion) (*ComposedOutfit, bool) {

	ids := []uint{o.Top, o.Bottom, o.Footwear}
	slots := []string{SlotTop, SlotBottom, SlotFootwear}
	if o.Outerwear != nil {
		ids = append(ids, *o.Outerwear)
		slots = append(slots, SlotOuterwear)
	}
	if o.Accessory != nil {
		ids = append(ids, *o.Accessory)
		slots = append(slots, SlotAccessory)
	}

	seen := map[uint]bool{}
	chosen := make([]Candidate, 0, len(ids))
	for i, id := range ids {
		c, known := byId[id]
		if !known || c.Slot != slots[i] || seen[id] || usedInResponse[id] || in.exclude[id] {
			return nil, false
		}
		seen[id] = true
		chosen = append(chosen, c)
	}

	out := &ComposedOutfit{
		Items:           chosen,
		Name:            o.Name,
		Vibe:            o.Vibe,
		Reasoning:       o.Reasoning,
		ComposedBy:      "llm",
		ConfidenceScore: clamp(o.Confidence, 0, 1),
	}
	if o.StylingTip != "" {
		tip := o.StylingTip
		out.StylingTip = &tip
	}
	if o.ColorNote != "" {
		note := o.ColorNote
		out.ColorNote = &note
	}
	model := completion.Model
	out.LLMModel = &model
	out.LLMInputTokenCount = &completion.InputTokenCount
	out.LLMOutputTokenCount = &completion.OutputTokenCount
	out.LLMTotalTokenCount = &completion.TotalTokenCount

	// scores come from the resolved items, not from the model's own opinion
	scoreOutfit(out, in)
	if out.Name == "" {
		describeOutfit(out, in)
	}

	for id := range seen {
		usedInResponse[id] = true
	}
	return out, true
}

func dominantVibes(items []models.WardrobeItem, limit int) []string {
	return topByFrequency(items, limit, func(item models.WardrobeItem) []string { return item.Vibes })
}

func preferredColors(items []models.WardrobeItem, limit int) []string {
	return topByFrequency(items, limit, func(item models.WardrobeItem) []string {
		if len(item.Colors) == 0 {
			return nil
		}
		return item.Colors[:1]
	})
}

func topByFrequency(items []models.WardrobeItem, limit int, pick func(models.WardrobeItem) []string) []string {
	counts := map[string]int{}
	for _, item := range items {
		for _, v := range pick(item) {
			if n := normalizeName(v); n != "" {
				counts[n]++
			}
		}
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func emptyAs(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
