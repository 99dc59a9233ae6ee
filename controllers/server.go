package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"vestiqapi/models"
	"vestiqapi/outfit"
	"vestiqapi/services"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		// Optionally, you could return the error to give each route more control over the status code
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func SetupServer(
	db *gorm.DB,
	googleService services.GoogleServiceProvider,
	awsService services.AWSServiceProvider,
	urlCache services.URLCacheServiceProvider,
	llm outfit.LLMProvider,
	weather outfit.WeatherProvider,
	firebaseApp *firebase.App,
	asynqClient *asynq.Client,
	asynqInspector *asynq.Inspector,
) *echo.Echo {

	fmt.Println(firebaseApp, "Firebase app")
	err := awsService.InitPresignClient(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize AWS provider: S3")
	}

	e := echo.New()
	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("subscription", models.ValidateSubscription)
	v.RegisterValidation("interaction", models.ValidateInteractionType)
	v.RegisterValidation("department", models.ValidateDepartment)
	v.RegisterValidation("undertone", models.ValidateUndertone)
	v.RegisterValidation("heightband", models.ValidateHeightBand)
	e.Validator = &CustomValidator{validator: v}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			c.Set("__asynqclient", asynqClient)
			c.Set("__asynqinspector", asynqInspector)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	authGroup := e.Group("auth")
	authController := AuthController{Google: googleService, FirebaseApp: firebaseApp}
	authController.AuthRoutes(authGroup)

	wardrobeController := WardrobeController{AWSService: awsService, FirebaseApp: firebaseApp, URLCache: urlCache}
	wardrobeGroup := e.Group("/wardrobe", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)
	wardrobeController.WardrobeRoutes(wardrobeGroup)

	outfitsController := OutfitsController{LLM: llm, Weather: weather, FirebaseApp: firebaseApp, URLCache: urlCache}
	outfitsGroup := e.Group("/outfits", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)
	outfitsController.OutfitRoutes(outfitsGroup)

	webhooksController := WebhooksController{Google: googleService, FirebaseApp: firebaseApp}
	webhookGroup := e.Group("/webhooks")
	webhooksController.SetupRoutes(webhookGroup)

	return e
}
