package outfit

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vestiqapi/models"
)

const (
	SlotTop       = "top"
	SlotBottom    = "bottom"
	SlotFootwear  = "footwear"
	SlotOuterwear = "outerwear"
	SlotAccessory = "accessory"
	SlotUnknown   = "unknown"
)

var RequiredSlots = []string{SlotTop, SlotBottom, SlotFootwear}

var lowerCaser = cases.Lower(language.English)

func normalizeName(s string) string {
	return strings.TrimSpace(lowerCaser.String(s))
}

var slotTable = map[string]string{
	// tops
	"t-shirt": SlotTop, "tshirt": SlotTop, "tee": SlotTop, "shirt": SlotTop,
	"dress shirt": SlotTop, "button-up": SlotTop, "button down": SlotTop,
	"polo": SlotTop, "blouse": SlotTop, "top": SlotTop, "tank top": SlotTop,
	"tank": SlotTop, "camisole": SlotTop, "crop top": SlotTop,
	"hoodie": SlotTop, "sweater": SlotTop, "jumper": SlotTop,
	"sweatshirt": SlotTop, "pullover": SlotTop, "turtleneck": SlotTop,
	"knit": SlotTop, "henley": SlotTop, "longsleeve": SlotTop,
	"long sleeve": SlotTop, "bodysuit": SlotTop, "tunic": SlotTop,

	// bottoms
	"jeans": SlotBottom, "pants": SlotBottom, "trousers": SlotBottom,
	"chinos": SlotBottom, "shorts": SlotBottom, "skirt": SlotBottom,
	"leggings": SlotBottom, "joggers": SlotBottom, "sweatpants": SlotBottom,
	"cargo pants": SlotBottom, "culottes": SlotBottom, "slacks": SlotBottom,
	"bottom": SlotBottom, "denim": SlotBottom,

	// footwear
	"sneakers": SlotFootwear, "shoes": SlotFootwear, "boots": SlotFootwear,
	"loafers": SlotFootwear, "heels": SlotFootwear, "sandals": SlotFootwear,
	"flats": SlotFootwear, "oxfords": SlotFootwear, "mules": SlotFootwear,
	"trainers": SlotFootwear, "pumps": SlotFootwear, "slides": SlotFootwear,
	"footwear": SlotFootwear, "espadrilles": SlotFootwear,

	// outerwear
	"jacket": SlotOuterwear, "coat": SlotOuterwear, "blazer": SlotOuterwear,
	"trench coat": SlotOuterwear, "trench": SlotOuterwear, "parka": SlotOuterwear,
	"puffer": SlotOuterwear, "windbreaker": SlotOuterwear, "cardigan": SlotOuterwear,
	"overcoat": SlotOuterwear, "bomber": SlotOuterwear, "denim jacket": SlotOuterwear,
	"leather jacket": SlotOuterwear, "raincoat": SlotOuterwear, "vest": SlotOuterwear,
	"gilet": SlotOuterwear, "outerwear": SlotOuterwear,

	// accessories
	"belt": SlotAccessory, "hat": SlotAccessory, "cap": SlotAccessory,
	"beanie": SlotAccessory, "scarf": SlotAccessory, "bag": SlotAccessory,
	"tote": SlotAccessory, "backpack": SlotAccessory, "watch": SlotAccessory,
	"sunglasses": SlotAccessory, "jewelry": SlotAccessory, "necklace": SlotAccessory,
	"earrings": SlotAccessory, "bracelet": SlotAccessory, "tie": SlotAccessory,
	"bow tie": SlotAccessory, "gloves": SlotAccessory, "accessory": SlotAccessory,
}

// longest keys first so "denim jacket" never resolves through "denim"
var slotKeysByLength = func() []string {
	keys := make([]string, 0, len(slotTable))
	for k := range slotTable {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// ClassifySlot maps a garment's category/subcategory to a composition slot.
// Category wins over subcategory, exact match wins over substring match.
// Anything unmatched goes to "unknown" and sits out of composition.
func ClassifySlot(category, subcategory string) string {
	for _, name := range []string{normalizeName(category), normalizeName(subcategory)} {
		if name == "" {
			continue
		}
		if slot, ok := slotTable[name]; ok {
			return slot
		}
		for _, key := range slotKeysByLength {
			if strings.Contains(name, key) {
				return slotTable[key]
			}
		}
	}
	return SlotUnknown
}

func ItemSlot(item models.WardrobeItem) string {
	return ClassifySlot(item.Category, item.Subcategory)
}
