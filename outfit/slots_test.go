package outfit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vestiqapi/models"
)

func TestClassifySlotExactMatch(t *testing.T) {
	assert.Equal(t, SlotTop, ClassifySlot("t-shirt", ""))
	assert.Equal(t, SlotBottom, ClassifySlot("jeans", ""))
	assert.Equal(t, SlotFootwear, ClassifySlot("sneakers", ""))
	assert.Equal(t, SlotOuterwear, ClassifySlot("blazer", ""))
	assert.Equal(t, SlotAccessory, ClassifySlot("belt", ""))
}

func TestClassifySlotCaseAndWhitespace(t *testing.T) {
	assert.Equal(t, SlotTop, ClassifySlot("  Hoodie ", ""))
	assert.Equal(t, SlotFootwear, ClassifySlot("LOAFERS", ""))
}

func TestClassifySlotSubstringMatch(t *testing.T) {
	assert.Equal(t, SlotTop, ClassifySlot("graphic tee", ""))
	assert.Equal(t, SlotFootwear, ClassifySlot("chelsea boots", ""))
	assert.Equal(t, SlotBottom, ClassifySlot("wide leg trousers", ""))
}

func TestClassifySlotLongestKeyWins(t *testing.T) {
	// "denim jacket" must resolve through the outerwear entry, never
	// through the bare "denim" bottom entry
	assert.Equal(t, SlotOuterwear, ClassifySlot("denim jacket", ""))
	assert.Equal(t, SlotBottom, ClassifySlot("denim", ""))
	assert.Equal(t, SlotOuterwear, ClassifySlot("leather jacket", ""))
}

func TestClassifySlotCategoryWinsOverSubcategory(t *testing.T) {
	assert.Equal(t, SlotTop, ClassifySlot("shirt", "oxford"))
	assert.Equal(t, SlotBottom, ClassifySlot("", "chinos"))
}

func TestClassifySlotUnknown(t *testing.T) {
	assert.Equal(t, SlotUnknown, ClassifySlot("spaceship", ""))
	assert.Equal(t, SlotUnknown, ClassifySlot("", ""))
}

func TestItemSlot(t *testing.T) {
	item := models.WardrobeItem{Category: "Sweater"}
	assert.Equal(t, SlotTop, ItemSlot(item))

	item = models.WardrobeItem{Category: "misc", Subcategory: "tote"}
	assert.Equal(t, SlotAccessory, ItemSlot(item))
}

func TestRequiredSlots(t *testing.T) {
	assert.Equal(t, []string{SlotTop, SlotBottom, SlotFootwear}, RequiredSlots)
}
