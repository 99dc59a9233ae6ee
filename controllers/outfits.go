package controllers

import (
	"fmt"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"vestiqapi/models"
	"vestiqapi/outfit"
	"vestiqapi/services"
)

type OutfitsController struct {
	LLM         outfit.LLMProvider
	Weather     outfit.WeatherProvider
	FirebaseApp *firebase.App
	URLCache    services.URLCacheServiceProvider
}

func (controller *OutfitsController) OutfitRoutes(g *echo.Group) {
	g.POST("/generate", controller.GenerateOutfits)
	g.POST("/regenerate", controller.RegenerateOutfits)
	g.GET("/list", controller.ListOutfits)
	g.POST("/:outfitId/save", controller.SaveOutfit)
	g.POST("/:outfitId/wear", controller.WearOutfit)
	g.POST("/:outfitId/interactions", controller.RecordOutfitInteraction)
}

func (controller *OutfitsController) dailyGenerationsUsed(db *gorm.DB, userID uint) (int64, error) {
	var count int64
	today := time.Now().UTC().Format("2006-01-02")
	err := db.Model(&models.GeneratedOutfit{}).
		Where("user_account_id = ? AND source IN ? AND DATE(created_at) = ?",
			userID, []string{models.OutfitSourceOnDemand, models.OutfitSourceRegenerated}, today).
		Distinct("DATE_TRUNC('second', created_at)").
		Count(&count).Error
	return count, err
}

func (controller *OutfitsController) generationOptions(req models.GenerateOutfitsIn) outfit.Options {
	return outfit.Options{
		Occasion:       req.Occasion,
		Mood:           req.Mood,
		Lat:            req.Lat,
		Lon:            req.Lon,
		Count:          req.Count,
		ExcludeItemIds: req.ExcludeItemIds,
		Constraints: &outfit.Constraints{
			MinFormality:      req.MinFormality,
			MaxFormality:      req.MaxFormality,
			PreferredVibes:    req.PreferredVibes,
			AvoidColorClashes: req.AvoidColors,
		},
	}
}

func (controller *OutfitsController) outfitItemsOut(c echo.Context, db *gorm.DB, record models.GeneratedOutfit) []models.WardrobeItemOut {
	ids := make([]int64, 0, len(record.ItemIDs))
	ids = append(ids, record.ItemIDs...)
	var items []models.WardrobeItem
	if err := db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		fmt.Println("Error fetching outfit items ", record.ID, err)
		sentry.CaptureException(err)
		return []models.WardrobeItemOut{}
	}
	// keep the outfit's slot order, not the db order
	byId := map[int64]models.WardrobeItem{}
	for _, item := range items {
		byId[int64(item.ID)] = item
	}
	out := make([]models.WardrobeItemOut, 0, len(ids))
	for _, id := range ids {
		item, ok := byId[id]
		if !ok {
			continue
		}
		var presigned *string
		if item.ImageURL != nil && *item.ImageURL != "" {
			url, err := controller.URLCache.GetReadURL(c.Request().Context(), *item.ImageURL)
			if err != nil {
				fmt.Println("Error presigning outfit item image ", item.ID, err)
			} else {
				presigned = &url
			}
		}
		out = append(out, models.WardrobeItemOut{
			WardrobeItem:     item,
			Slot:             outfit.ItemSlot(item),
			PresignedableURL: presigned,
		})
	}
	return out
}

func (controller *OutfitsController) respondWithSaved(c echo.Context, db *gorm.DB, saved []models.GeneratedOutfit, weather outfit.Weather) error {
	outfits := make([]models.OutfitOut, 0, len(saved))
	for _, record := range saved {
		outfits = append(outfits, models.OutfitOut{
			GeneratedOutfit: record,
			Items:           controller.outfitItemsOut(c, db, record),
		})
	}
	return c.JSON(http.StatusOK, models.GenerateOutfitsOut{
		Outfits: outfits,
		Weather: models.WeatherOut{
			TempC:            weather.TempC,
			Condition:        weather.Condition,
			Humidity:         weather.Humidity,
			WindSpeed:        weather.WindSpeed,
			SeasonSuggestion: weather.SeasonSuggestion,
			IsDefault:        weather.IsDefault,
		},
	})
}

func (controller *OutfitsController) GenerateOutfits(c echo.Context) error {
	var req models.GenerateOutfitsIn
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

	if string(user.Subscription) == "free" {
		used, err := controller.dailyGenerationsUsed(db, user.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get generation data"})
		}
		fmt.Printf("[User %v] Free plan, generations today: %v\n", user.ID, used)
		if used >= models.FreeDailyGenerationLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of %v daily generations, please subscribe", models.FreeDailyGenerationLimit)})
		}
	}

	engine := outfit.Engine{DB: db, LLM: controller.LLM, Weather: controller.Weather}
	result, err := engine.GenerateOutfits(c.Request().Context(), user, controller.generationOptions(req))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch your wardrobe, please try again"})
	}
	if len(result.Outfits) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "Not enough wardrobe items to style an outfit yet, add a few more pieces"})
	}

	saved, err := outfit.SaveOutfits(db, user.ID, result, req.Occasion, req.Mood, models.OutfitSourceOnDemand)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save outfits, please try again"})
	}
	return controller.respondWithSaved(c, db, saved, result.Weather)
}

func (controller *OutfitsController) RegenerateOutfits(c echo.Context) error {
	var req models.RegenerateOutfitsIn
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

	var previous models.GeneratedOutfit
	if err := db.Where("id = ? AND user_account_id = ?", req.OutfitId, user.ID).First(&previous).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Outfit not found"})
	}

	if string(user.Subscription) == "free" {
		used, err := controller.dailyGenerationsUsed(db, user.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get generation data"})
		}
		if used >= models.FreeDailyGenerationLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of %v daily generations, please subscribe", models.FreeDailyGenerationLimit)})
		}
	}

	// asking for another take is a soft negative signal on the previous one
	if err := outfit.RecordInteraction(db, user.ID, previous.ID, models.InteractionEdit); err != nil {
		fmt.Println("Error recording regenerate feedback ", previous.ID, err)
		sentry.CaptureException(err)
	}

	opts := controller.generationOptions(req.GenerateOutfitsIn)
	for _, id := range previous.ItemIDs {
		opts.ExcludeItemIds = append(opts.ExcludeItemIds, uint(id))
	}
	if opts.Occasion == "" {
		opts.Occasion = previous.Occasion
	}
	if opts.Mood == "" {
		opts.Mood = previous.Mood
	}

	engine := outfit.Engine{DB: db, LLM: controller.LLM, Weather: controller.Weather}
	result, err := engine.GenerateOutfits(c.Request().Context(), user, opts)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch your wardrobe, please try again"})
	}
	if len(result.Outfits) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "Could not style a different outfit from the remaining pieces"})
	}
	saved, err := outfit.SaveOutfits(db, user.ID, result, opts.Occasion, opts.Mood, models.OutfitSourceRegenerated)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save outfits, please try again"})
	}
	return controller.respondWithSaved(c, db, saved, result.Weather)
}

func (controller *OutfitsController) ListOutfits(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	query := db.Where("user_account_id = ?", user.ID)
	if c.QueryParam("saved") == "true" {
		query = query.Where("is_saved = ?", true)
	} else {
		query = query.Where("is_saved = ? OR expires_at > ?", true, time.Now())
	}
	var records []models.GeneratedOutfit
	if err := query.Order("created_at desc").Limit(50).Find(&records).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch outfits"})
	}
	outfits := make([]models.OutfitOut, 0, len(records))
	for _, record := range records {
		outfits = append(outfits, models.OutfitOut{
			GeneratedOutfit: record,
			Items:           controller.outfitItemsOut(c, db, record),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"outfits": outfits,
	})
}

func (controller *OutfitsController) SaveOutfit(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	var outfitId uint
	if err := echo.PathParamsBinder(c).Uint("outfitId", &outfitId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	var record models.GeneratedOutfit
	if err := db.Where("id = ? AND user_account_id = ?", outfitId, user.ID).First(&record).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Outfit not found"})
	}
	record.IsSaved = true
	if err := db.Save(&record).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save outfit"})
	}
	if err := outfit.RecordInteraction(db, user.ID, record.ID, models.InteractionSave); err != nil {
		fmt.Println("Error recording save interaction ", record.ID, err)
		sentry.CaptureException(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "saved",
	})
}

func (controller *OutfitsController) WearOutfit(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	var outfitId uint
	if err := echo.PathParamsBinder(c).Uint("outfitId", &outfitId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	var record models.GeneratedOutfit
	if err := db.Where("id = ? AND user_account_id = ?", outfitId, user.ID).First(&record).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Outfit not found"})
	}
	now := time.Now()
	record.IsWorn = true
	record.WornAt = &now
	if err := db.Save(&record).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update outfit"})
	}

	// wearing an outfit wears all of its items, which also starts their cooldown
	ids := make([]int64, 0, len(record.ItemIDs))
	ids = append(ids, record.ItemIDs...)
	if err := db.Model(&models.WardrobeItem{}).
		Where("id IN ? AND owner_id = ?", ids, user.ID).
		Updates(map[string]interface{}{
			"times_worn":   gorm.Expr("times_worn + 1"),
			"last_worn_at": now,
		}).Error; err != nil {
		fmt.Println("Error updating worn items for outfit ", record.ID, err)
		sentry.CaptureException(err)
	}

	if err := outfit.RecordInteraction(db, user.ID, record.ID, models.InteractionWear); err != nil {
		fmt.Println("Error recording wear interaction ", record.ID, err)
		sentry.CaptureException(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "worn",
	})
}

func (controller *OutfitsController) RecordOutfitInteraction(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	var outfitId uint
	if err := echo.PathParamsBinder(c).Uint("outfitId", &outfitId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	var req models.OutfitInteractionIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := outfit.RecordInteraction(db, user.ID, outfitId, req.Type); err != nil {
		fmt.Println("Error recording interaction ", outfitId, req.Type, err)
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Outfit not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "recorded",
		"type":    req.Type,
	})
}
