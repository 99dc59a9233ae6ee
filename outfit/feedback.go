package outfit

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"gorm.io/gorm"

	"vestiqapi/models"
)

// RecordInteraction is the only path by which user behavior feeds back into
// future scoring. It records the signal, averages the outfit's item
// embeddings and forwards the result to the taste store with the
// type-specific weight. Items without an embedding are skipped; an outfit
// with none is a taste no-op (the interaction row is still written).
func RecordInteraction(db *gorm.DB, userID uint, outfitID uint, interactionType string) error {
	if _, ok := InteractionWeights[interactionType]; !ok {
		return fmt.Errorf("unknown interaction type %q", interactionType)
	}

	var o models.GeneratedOutfit
	if err := db.Where("id = ? AND user_account_id = ?", outfitID, userID).First(&o).Error; err != nil {
		return err
	}

	interaction := models.OutfitInteraction{
		UserAccountID:     userID,
		GeneratedOutfitID: o.ID,
		Type:              interactionType,
	}
	if err := db.Create(&interaction).Error; err != nil {
		return err
	}

	ids := make([]uint, 0, len(o.ItemIDs))
	for _, id := range o.ItemIDs {
		ids = append(ids, uint(id))
	}
	var items []models.WardrobeItem
	if err := db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		fmt.Printf("[Taste: %v] item load failed for outfit %v: %v\n", userID, outfitID, err)
		sentry.CaptureException(err)
		return nil
	}

	embeddings := make([][]float64, 0, len(items))
	for _, item := range items {
		if len(item.Embedding) > 0 {
			embeddings = append(embeddings, item.Embedding)
		}
	}
	if len(embeddings) == 0 {
		return nil
	}

	if err := UpdateTaste(db, userID, meanVector(embeddings), interactionType); err != nil {
		// taste drift is best effort, the interaction itself is recorded
		fmt.Printf("[Taste: %v] update failed: %v\n", userID, err)
		sentry.CaptureException(err)
	}
	return nil
}
