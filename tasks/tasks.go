package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"vestiqapi/models"
	"vestiqapi/outfit"
	"vestiqapi/services"
	"vestiqapi/telegram"
)

type WardrobeItemPayload struct {
	ItemID uint `json:"item_id"`
}
type UserOutfitsPayload struct {
	UserID uint `json:"user_id"`
}

// Client initializes an asynq client for enqueuing tasks
func NewClient() (*asynq.Client, error) {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}), nil
}

func NewWardrobeItemProcessingTask(itemID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(WardrobeItemPayload{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("wardrobe:process_item", payload), nil
}

func NewFirstOutfitTask(userID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(UserOutfitsPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("outfits:first_auto", payload), nil
}

func NewPregenerateOutfitsTask() (*asynq.Task, error) {
	return asynq.NewTask("outfits:pregenerate", nil), nil
}

func NewCleanupExpiredOutfitsTask() (*asynq.Task, error) {
	return asynq.NewTask("outfits:cleanup_expired", nil), nil
}

const itemExtractionSystemInstruction = `You are a fashion cataloguing assistant. Given the name and description of a single
clothing item, respond with ONLY a JSON object, no markdown, with the fields:
{"category": string, "subcategory": string, "colors": [string], "pattern": string,
"formality": int 0-10, "seasons": [string among "spring","summer","fall","winter","all"],
"fit": string among "slim","fitted","regular","relaxed","oversized",
"length": string among "cropped","regular","longline", "vibes": [string]}.
Colors are lowercase common color names, most dominant first. Leave a field empty ("" or [])
when it cannot be inferred.`

type itemAttributes struct {
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Colors      []string `json:"colors"`
	Pattern     string   `json:"pattern"`
	Formality   int      `json:"formality"`
	Seasons     []string `json:"seasons"`
	Fit         string   `json:"fit"`
	Length      string   `json:"length"`
	Vibes       []string `json:"vibes"`
}

// HandleProcessWardrobeItemTask fills in item attributes with the LLM, embeds the item
// and chains the first-outfit check for its owner.
func HandleProcessWardrobeItemTask(ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.GeminiStylist, fbApp *firebase.App) error {
	if os.Getenv("GOOGLE_API_KEY") == "" {
		sentry.CaptureException(fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload()))
	}
	var payload WardrobeItemPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Item: %v] Start Processing\n", payload.ItemID)
	var item models.WardrobeItem
	res := db.First(&item, payload.ItemID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving wardrobe item for processing %v", payload.ItemID))
		return res.Error
	}

	item.ProcessingStatus = "generating"
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on saving item mid processing %v", payload.ItemID, err))
		return err
	}

	prompt := fmt.Sprintf("Item name: %s\nDescription: %s\nCategory hint: %s", item.Name, item.Description, item.Category)
	completion, err := stylist.Complete(ctx, itemExtractionSystemInstruction, prompt, 1024, 0.2)
	if err != nil {
		saveItemProcessingFail(db, item, "Failed to analyze this item, please try again later", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on extracting attributes: %v", payload.ItemID, err))
		return err
	}
	if completion == nil {
		saveItemProcessingFail(db, item, "Failed to analyze this item, please try again later", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Response is nil but no error provided on extraction", payload.ItemID))
		return fmt.Errorf("[Item: %v] Response is nil but no error provided on extraction", payload.ItemID)
	}

	cleanContent := outfit.ExtractJSONObject(completion.Text)
	fmt.Printf("[Item: %v] LLM Processed: %q, IT: %d, OT: %d, TOT: %d\n", payload.ItemID, cleanContent, completion.InputTokenCount, completion.OutputTokenCount, completion.TotalTokenCount)
	var parsed itemAttributes
	if err := json.Unmarshal([]byte(cleanContent), &parsed); err != nil {
		fmt.Printf("[Item: %v] Error on parsing Gemini %s AI json %s\n", payload.ItemID, completion.Model, completion.Text)
		saveItemProcessingFail(db, item, "Failed to analyze this item, please try again later", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on parsing Gemini %s AI json %s", payload.ItemID, completion.Model, completion.Text))
		return err
	}

	applyItemAttributes(&item, parsed)

	embeddingText := strings.TrimSpace(fmt.Sprintf("%s %s %s %s %s %s",
		item.Name, item.Category, item.Subcategory, strings.Join(item.Colors, " "), item.Pattern, strings.Join(item.Vibes, " ")))
	embedding, err := stylist.EmbedText(ctx, embeddingText)
	if err != nil {
		// embedding is optional, retrieval falls back to a plain fetch without it
		fmt.Printf("[Item: %v] Error on embedding item: %v\n", payload.ItemID, err)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on embedding item: %v", payload.ItemID, err))
	} else {
		item.Embedding = pq.Float64Array(embedding)
	}

	item.ProcessingStatus = "completed"
	item.ProcessErrorMessage = nil
	tx := db.Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving wardrobe item %v", payload.ItemID))
		return tx.Error
	}
	fmt.Printf("[Item: %v] Processing finished succesfully..\n", payload.ItemID)

	enqueueFirstOutfitCheck(item.OwnerID, payload.ItemID)
	return nil
}

func applyItemAttributes(item *models.WardrobeItem, parsed itemAttributes) {
	if parsed.Category != "" {
		item.Category = strings.ToLower(parsed.Category)
	}
	if parsed.Subcategory != "" {
		item.Subcategory = strings.ToLower(parsed.Subcategory)
	}
	if len(parsed.Colors) > 0 && len(item.Colors) == 0 {
		item.Colors = pq.StringArray(lowerAll(parsed.Colors))
	}
	if parsed.Pattern != "" {
		item.Pattern = strings.ToLower(parsed.Pattern)
	}
	if item.Formality == 0 && parsed.Formality > 0 {
		formality := parsed.Formality
		if formality > 10 {
			formality = 10
		}
		item.Formality = formality
	}
	if len(parsed.Seasons) > 0 && len(item.Seasons) == 0 {
		item.Seasons = pq.StringArray(lowerAll(parsed.Seasons))
	}
	if parsed.Fit != "" && item.Fit == "" {
		item.Fit = strings.ToLower(parsed.Fit)
	}
	if parsed.Length != "" && item.Length == "" {
		item.Length = strings.ToLower(parsed.Length)
	}
	if len(parsed.Vibes) > 0 && len(item.Vibes) == 0 {
		item.Vibes = pq.StringArray(lowerAll(parsed.Vibes))
	}
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func enqueueFirstOutfitCheck(userID uint, itemID uint) {
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")})
	if asynqClient == nil {
		err := fmt.Errorf("failed to create asynq client")
		fmt.Printf("[Item: %v] Error on creating asynq client %v\n", itemID, err)
		sentry.CaptureException(err)
		return
	}
	defer asynqClient.Close()

	firstOutfitTask, err := NewFirstOutfitTask(userID)
	if err != nil {
		fmt.Printf("[Item: %v] Error on creating first outfit task %v\n", itemID, err)
		sentry.CaptureException(err)
		return
	}
	taskInfo, err := asynqClient.Enqueue(firstOutfitTask, asynq.MaxRetry(3), asynq.ProcessIn(1*time.Second), asynq.Queue("outfits"))
	if err != nil {
		fmt.Printf("[Item: %v] Error on enqueuing first outfit task %v\n", itemID, err)
		sentry.CaptureException(err)
		return
	}
	fmt.Printf("[Item: %v] First outfit task enqueued: %s\n", itemID, taskInfo.ID)
}

func saveItemProcessingFail(db *gorm.DB, item models.WardrobeItem, msg string, shouldRetry bool) error {
	item.ProcessRetryTimes = item.ProcessRetryTimes + 1
	item.ProcessErrorMessage = &msg
	item.ProcessingStatus = "idle"
	if !shouldRetry || item.ProcessRetryTimes >= 3 {

		item.ProcessingStatus = "failed"
	}
	tx := db.Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Item %v] Error on saving wardrobe item for failed status", item.ID))
		return tx.Error
	}
	return nil
}

// HandleFirstOutfitTask generates the very first outfit batch for a user once their
// wardrobe is large enough. Runs at most once per user.
func HandleFirstOutfitTask(ctx context.Context, t *asynq.Task, db *gorm.DB, llm outfit.LLMProvider, weather outfit.WeatherProvider, fbApp *firebase.App) error {
	var payload UserOutfitsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[First Outfit: %v] Checking user\n", payload.UserID)

	var user models.UserAccount
	res := db.First(&user, payload.UserID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving user for first outfit %v", payload.UserID))
		return res.Error
	}
	if user.FirstOutfitsGeneratedAt != nil {
		fmt.Printf("[First Outfit: %v] Already generated at %v, skipping\n", payload.UserID, user.FirstOutfitsGeneratedAt)
		return nil
	}

	var itemCount int64
	db.Model(&models.WardrobeItem{}).
		Where("owner_id = ? AND processing_status = ? AND archived = ?", user.ID, "completed", false).
		Count(&itemCount)
	if itemCount < int64(outfit.MinInventorySize) {
		fmt.Printf("[First Outfit: %v] Only %d items ready, waiting for more\n", payload.UserID, itemCount)
		return nil
	}

	engine := outfit.Engine{DB: db, LLM: llm, Weather: weather}
	result, err := engine.GenerateOutfits(ctx, user, outfit.Options{Occasion: "casual"})
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[First Outfit: %v] Error on generating outfits: %v", payload.UserID, err))
		return err
	}
	if len(result.Outfits) == 0 {
		fmt.Printf("[First Outfit: %v] No outfits could be composed\n", payload.UserID)
		return nil
	}
	if _, err := outfit.SaveOutfits(db, user.ID, result, "casual", "", models.OutfitSourceFirstAuto); err != nil {
		sentry.CaptureException(fmt.Errorf("[First Outfit: %v] Error on saving outfits: %v", payload.UserID, err))
		return err
	}

	now := time.Now()
	user.FirstOutfitsGeneratedAt = &now
	if err := db.Save(&user).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[First Outfit: %v] Error on saving user %v", payload.UserID, err))
		return err
	}
	fmt.Printf("[First Outfit: %v] Generated %d outfits\n", payload.UserID, len(result.Outfits))

	if user.ReceiveNotifications {
		services.SendNotification(fbApp, db, user.ID, "Your first outfits are here",
			fmt.Sprintf("We styled %d looks from your wardrobe, come take a look", len(result.Outfits)),
			map[string]string{"type": "first_outfits_ready"})
	}
	return nil
}

const pregenerateBatchSize = 10

// ScheduledPregenerateTask composes a fresh outfit batch for every eligible user.
func ScheduledPregenerateTask(ctx context.Context, t *asynq.Task, db *gorm.DB, llm outfit.LLMProvider, weather outfit.WeatherProvider, fbApp *firebase.App) error {
	fmt.Printf("[Pregenerate] Processing for all users\n")

	var users []models.UserAccount
	result := db.Where("banned = ? AND first_outfits_generated_at IS NOT NULL", false).Find(&users)
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Pregenerate] Error fetching users: %v", result.Error))
		return result.Error
	}
	fmt.Printf("[Pregenerate] Found %d users\n", len(users))

	var generated, skipped, failed int32
	for start := 0; start < len(users); start += pregenerateBatchSize {
		end := start + pregenerateBatchSize
		if end > len(users) {
			end = len(users)
		}
		var wg sync.WaitGroup
		for _, user := range users[start:end] {
			wg.Add(1)
			go func(user models.UserAccount) {
				defer wg.Done()
				count, err := pregenerateForUser(ctx, db, llm, weather, fbApp, user)
				if err != nil {
					fmt.Printf("[Pregenerate] Failed for user %d: %v\n", user.ID, err)
					sentry.CaptureException(fmt.Errorf("[Pregenerate] Failed for user %d: %v", user.ID, err))
					atomic.AddInt32(&failed, 1)
					return
				}
				if count == 0 {
					atomic.AddInt32(&skipped, 1)
					return
				}
				atomic.AddInt32(&generated, 1)
			}(user)
		}
		wg.Wait()
		time.Sleep(1 * time.Second) // To avoid hitting rate limits
	}

	summary := fmt.Sprintf("Pregenerate run: %d users, %d generated, %d skipped, %d failed",
		len(users), generated, skipped, failed)
	fmt.Printf("[Pregenerate] %s\n", summary)
	telegram.NotifyOps(summary)
	return nil
}

func pregenerateForUser(ctx context.Context, db *gorm.DB, llm outfit.LLMProvider, weather outfit.WeatherProvider, fbApp *firebase.App, user models.UserAccount) (int, error) {
	var itemCount int64
	db.Model(&models.WardrobeItem{}).
		Where("owner_id = ? AND processing_status = ? AND archived = ?", user.ID, "completed", false).
		Count(&itemCount)
	if itemCount < int64(outfit.MinInventorySize) {
		return 0, nil
	}

	engine := outfit.Engine{DB: db, LLM: llm, Weather: weather}
	result, err := engine.GenerateOutfits(ctx, user, outfit.Options{Occasion: "casual"})
	if err != nil {
		return 0, err
	}
	if len(result.Outfits) == 0 {
		return 0, nil
	}
	if _, err := outfit.SaveOutfits(db, user.ID, result, "casual", "", models.OutfitSourcePreGenerated); err != nil {
		return 0, err
	}
	if user.ReceiveNotifications {
		services.SendNotification(fbApp, db, user.ID, "Your outfits are ready",
			"Fresh looks for today are waiting in Vestiq",
			map[string]string{"type": "outfits_pregenerated"})
	}
	return len(result.Outfits), nil
}

// ScheduledCleanupExpiredOutfitsTask drops expired generated outfits the user never kept.
func ScheduledCleanupExpiredOutfitsTask(ctx context.Context, t *asynq.Task, db *gorm.DB) error {
	tx := db.Where("expires_at < ? AND is_saved = ? AND is_worn = ?", time.Now(), false, false).
		Delete(&models.GeneratedOutfit{})
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Cleanup] Error deleting expired outfits: %v", tx.Error))
		return tx.Error
	}
	fmt.Printf("[Cleanup] Deleted %d expired outfits\n", tx.RowsAffected)
	return nil
}
