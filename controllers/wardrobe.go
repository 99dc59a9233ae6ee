package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"vestiqapi/models"
	"vestiqapi/outfit"
	"vestiqapi/services"
	"vestiqapi/tasks"
)

type WardrobeController struct {
	AWSService  services.AWSServiceProvider
	FirebaseApp *firebase.App
	URLCache    services.URLCacheServiceProvider
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.POST("/create", controller.CreateItem)
	g.GET("/list", controller.ListItems)
	g.POST("/:itemId/archive", controller.ArchiveItem)
	g.POST("/:itemId/worn", controller.MarkItemWorn)
}

func (controller *WardrobeController) CreateItem(c echo.Context) error {
	var req models.WardrobeItemIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	if string(user.Subscription) == "free" {
		var totalItemCount int64
		if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ? AND archived = ?", user.ID, false).Count(&totalItemCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
		}
		fmt.Printf("[User %v] Free plan, item count: %v\n", user.ID, totalItemCount)
		if totalItemCount >= models.FreeWardrobeItemLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of %v wardrobe items, please subscribe", models.FreeWardrobeItemLimit)})
		}
	}

	formality := 0
	if req.Formality != nil {
		formality = *req.Formality
	}
	item := models.WardrobeItem{
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Subcategory:      req.Subcategory,
		Colors:           pq.StringArray(req.Colors),
		Pattern:          req.Pattern,
		Formality:        formality,
		Seasons:          pq.StringArray(req.Seasons),
		Fit:              req.Fit,
		Length:           req.Length,
		Vibes:            pq.StringArray(req.Vibes),
		Gender:           req.Gender,
		OwnerID:          user.ID,
		ImageStatus:      "draft",
		ProcessingStatus: "idle",
	}

	var uploadUrl *string
	if req.FileName != "" {
		if !services.IsAllowedImageFile(req.FileName) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, only image files are supported"})
		}
		if err := db.Create(&item).Error; err != nil {
			sentry.CaptureException(err)
			return err
		}
		var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
		safeFileName := services.WardrobeImageKey(user.ID, item.ID, req.FileName)
		url, presignErr := controller.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
		if presignErr != nil {
			log.Printf("Unable to presign generate for %s!, %s", item.Name, presignErr)
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"message": "Error while creating item with attachment",
			})
		}
		item.ImageURL = &safeFileName
		uploadUrl = &url
		if err := db.Save(&item).Error; err != nil {
			sentry.CaptureException(err)
			return err
		}
	} else {
		if err := db.Create(&item).Error; err != nil {
			sentry.CaptureException(err)
			return err
		}
	}

	task, err := tasks.NewWardrobeItemProcessingTask(item.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process item, please try again"})
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process item, please try again"})
	}
	fmt.Println("[Queue] Process wardrobe item task submitted, Item ID: ", item.ID, " Task ID: ", info.ID)

	return c.JSON(http.StatusCreated, models.WardrobeCreateOut{
		Item:      item,
		UploadUrl: uploadUrl,
	})
}

// populatePresignedItemImages enriches raw items with presigned URLs concurrently,
// with a manual R2 fallback for when the cache system itself fails.
func (controller *WardrobeController) populatePresignedItemImages(ctx context.Context, items []models.WardrobeItem) []models.WardrobeItemOut {
	if len(items) == 0 {
		return []models.WardrobeItemOut{}
	}

	var wg sync.WaitGroup
	processed := make([]models.WardrobeItemOut, len(items))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")

	for i, wardrobeItem := range items {
		wg.Add(1)
		go func(index int, item models.WardrobeItem) {
			defer wg.Done()

			var imageUrl string
			if item.ImageURL != nil && *item.ImageURL != "" {
				objectKey := *item.ImageURL
				url, err := controller.URLCache.GetReadURL(ctx, objectKey)
				if err == nil {
					imageUrl = url
				} else {
					log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)
					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("failure_type", "cache_system")
						scope.SetExtra("objectKey", objectKey)
						sentry.CaptureException(err)
					})
					fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
					if fallbackErr != nil {
						log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
						sentry.CaptureException(fallbackErr)
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processed[index] = models.WardrobeItemOut{
				WardrobeItem:     item,
				Slot:             outfit.ItemSlot(item),
				PresignedableURL: &imageUrl,
			}
		}(i, wardrobeItem)
	}

	wg.Wait()
	return processed
}

func (controller *WardrobeController) ListItems(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var items []models.WardrobeItem
	if err := db.Where("owner_id = ? AND archived = ?", user.ID, false).Order("created_at desc").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
	}
	processed := controller.populatePresignedItemImages(c.Request().Context(), items)

	response := models.WardrobeListOut{
		Slots: map[string][]models.WardrobeItemOut{
			outfit.SlotTop:       {},
			outfit.SlotBottom:    {},
			outfit.SlotFootwear:  {},
			outfit.SlotOuterwear: {},
			outfit.SlotAccessory: {},
		},
		Total: len(processed),
	}
	for _, out := range processed {
		slot := out.Slot
		if slot == outfit.SlotUnknown {
			slot = outfit.SlotAccessory
		}
		response.Slots[slot] = append(response.Slots[slot], out)
	}
	return c.JSON(http.StatusOK, response)
}

func (controller *WardrobeController) ArchiveItem(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	var item models.WardrobeItem
	result := db.Where("id = ? AND owner_id = ?", itemId, user.ID).First(&item)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
	}
	item.Archived = true
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to archive item"})
	}
	fmt.Println("Archived wardrobe item ", item.ID, " for user ", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "archived",
	})
}

func (controller *WardrobeController) MarkItemWorn(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	var item models.WardrobeItem
	result := db.Where("id = ? AND owner_id = ?", itemId, user.ID).First(&item)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
	}
	now := time.Now()
	item.TimesWorn = item.TimesWorn + 1
	item.LastWornAt = &now
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update item"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "worn",
		"times_worn": item.TimesWorn,
	})
}
