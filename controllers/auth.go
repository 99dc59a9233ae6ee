package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	firebase "firebase.google.com/go/v4"
	apple "github.com/Timothylock/go-signin-with-apple/apple"
	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"vestiqapi/models"
	"vestiqapi/outfit"
	"vestiqapi/services"
)

const defaultAvatarURL = "https://pub-df730af6a36c46a58d6d948f149dae31.r2.dev/user-circle.png"

type AuthController struct {
	Google      services.GoogleServiceProvider
	FirebaseApp *firebase.App
}

func (m *AuthController) AuthRoutes(g *echo.Group) {
	g.POST("/google", func(c echo.Context) (err error) {
		googleCreds := new(models.GoogleAuthSignIn)
		if err := c.Bind(googleCreds); err != nil {
			return err
		}
		if err = c.Validate(googleCreds); err != nil {
			return err
		}
		payload, err := m.Google.ValidateIdToken(context.Background(), googleCreds.IdToken, os.Getenv("GOOGLE_CLIENT_ID"))
		if err != nil {
			fmt.Println(err)
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials"})
		}
		sub, ok := payload.Claims["sub"]
		if !ok {
			sentry.CaptureMessage(fmt.Sprintf("Error when fetching user data %s", payload.Claims))
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials"})
		}
		var googleId string = sub.(string)

		googleEmail, ok := payload.Claims["email"].(string)
		if !ok {
			sentry.CaptureMessage(fmt.Sprintf("Error when fetching user data email %s", payload.Claims))
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials"})
		}
		pictureUrl, _ := payload.Claims["picture"].(string)
		googleName, _ := payload.Claims["name"].(string)

		db := c.Get("__db").(*gorm.DB)
		var user *models.UserAccount
		r := db.Where("google_id = ? or email = ?", googleId, googleEmail).Limit(1).Find(&user)
		if r.Error != nil {
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Internal server error"})
		}
		newUser := r.RowsAffected == 0
		if newUser {
			user = &models.UserAccount{
				Name:      googleName,
				Email:     googleEmail,
				GoogleID:  googleId,
				Platform:  models.ScanPlatform(googleCreds.Platform),
				LastIp:    c.RealIP(),
				Status:    "FINISHED_AUTH",
				AvatarURL: pictureUrl,
			}
			if user.AvatarURL == "" {
				user.AvatarURL = defaultAvatarURL
			}
			db.Create(&user)
			fmt.Println("User onboarding finished google: ", googleEmail, googleId)
		} else {
			if user.Banned {
				return echo.ErrForbidden
			}
			user.GoogleID = googleId
			if pictureUrl != "" {
				user.AvatarURL = pictureUrl
			}
			user.LastIp = c.RealIP()
			user.Platform = models.ScanPlatform(googleCreds.Platform)
			db.Save(&user)
		}
		refreshToken, err := GenerateRefreshToken(fmt.Sprint(user.ID))
		if err != nil {
			fmt.Println(err)
			return echo.ErrInternalServerError
		}
		return c.JSON(http.StatusOK, models.SignInOut{
			Id:           fmt.Sprint(user.ID),
			Email:        user.Email,
			New:          newUser,
			Avatar:       user.AvatarURL,
			AccessToken:  GenerateUserToken(fmt.Sprint(user.ID), c, 72),
			RefreshToken: refreshToken,
		})
	})

	g.POST("/apple", func(c echo.Context) error {
		var req models.AppleAuthRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}
		if err := c.Validate(req); err != nil {
			return err
		}

		teamID := os.Getenv("APPLE_TEAM_ID")
		keyID := os.Getenv("APPLE_SIGNIN_KEY_ID")
		// ClientID is the "Services ID" value of the sign-in-with-Apple enabled app
		clientID := "com.vestiq.app"

		secret, err := services.DecodeBase64EnvPrivateKey("APPLE_SIGNIN_PKEY_BASE64")
		if err != nil {
			log.Println("Error getting Apple private key:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		secret, err = apple.GenerateClientSecret(secret, teamID, clientID, keyID)
		if err != nil {
			log.Println("Error generating Apple client secret:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		client := apple.New()

		vReq := apple.AppValidationTokenRequest{
			ClientID:     clientID,
			ClientSecret: secret,
			Code:         req.AuthorizationCode,
		}
		var resp apple.ValidationResponse
		err = client.VerifyAppToken(context.Background(), vReq, &resp)
		if err != nil {
			fmt.Println("error verifying: " + err.Error())
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials"})
		}
		if resp.Error != "" {
			fmt.Printf("apple returned an error: %s - %s\n", resp.Error, resp.ErrorDescription)
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials through Apple"})
		}

		unique, err := apple.GetUniqueID(resp.IDToken)
		if err != nil {
			fmt.Println("failed to get unique ID: " + err.Error())
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't get your unique identifier"})
		}
		claim, err := apple.GetClaims(resp.IDToken)
		if err != nil {
			fmt.Println("failed to get claims: " + err.Error())
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't get your information"})
		}
		appleEmail, ok := (*claim)["email"].(string)
		if !ok {
			fmt.Printf("[Apple signin] no email in token %v\n", claim)
		}

		db := c.Get("__db").(*gorm.DB)
		var user *models.UserAccount
		var r *gorm.DB
		if appleEmail == "" {
			r = db.Where("apple_id = ?", unique).Limit(1).Find(&user)
		} else {
			r = db.Where("apple_id = ? or email = ?", unique, appleEmail).Limit(1).Find(&user)
		}
		if r.Error != nil {
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Internal server error"})
		}
		newUser := r.RowsAffected == 0
		if newUser {
			if appleEmail == "" {
				fmt.Println("[Apple signin] New user but no email in claims:", resp.IDToken)
				return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "It seems that you sign in the first time and no email was provided by Apple. Please try again or contact us at support@vestiq.app."})
			}
			user = &models.UserAccount{
				Name:      appleEmail,
				Email:     appleEmail,
				AppleID:   unique,
				Platform:  models.ScanPlatform(req.Platform),
				LastIp:    c.RealIP(),
				Status:    "FINISHED_AUTH",
				AvatarURL: defaultAvatarURL,
			}
			db.Create(&user)
			fmt.Println("User onboarding finished apple: ", appleEmail, unique)
		} else {
			if user.Banned {
				return echo.ErrForbidden
			}
			user.AppleID = unique
			if user.AvatarURL == "" {
				user.AvatarURL = defaultAvatarURL
			}
			user.LastIp = c.RealIP()
			user.Platform = models.ScanPlatform(req.Platform)
			db.Save(&user)
		}
		refreshToken, err := GenerateRefreshToken(fmt.Sprint(user.ID))
		if err != nil {
			fmt.Println(err)
			return echo.ErrInternalServerError
		}
		return c.JSON(http.StatusOK, models.SignInOut{
			Id:           fmt.Sprint(user.ID),
			Email:        user.Email,
			New:          newUser,
			Avatar:       user.AvatarURL,
			AccessToken:  GenerateUserToken(fmt.Sprint(user.ID), c, 72),
			RefreshToken: refreshToken,
		})
	})

	g.POST("/refresh-token", func(c echo.Context) error {
		tokenReq := new(models.RefreshIn)
		if err := c.Bind(&tokenReq); err != nil {
			fmt.Println(err)
			return echo.ErrBadRequest
		}
		if tokenReq.RefreshToken == "" {
			fmt.Println("Refresh token is empty")
			return echo.ErrBadRequest
		}
		token, err := jwt.Parse(tokenReq.RefreshToken, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil {
			fmt.Println(err)
			return echo.ErrBadRequest
		}
		if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
			db := c.Get("__db").(*gorm.DB)
			data, okConvert := claims["sub"].(string)
			if !okConvert {
				fmt.Println("Cannot convert sub to string!", err)
				return echo.ErrInternalServerError
			}
			userId, err := strconv.Atoi(data)
			if err != nil {
				fmt.Println("Error parsing sub of the user!!", err)
				return echo.ErrInternalServerError
			}
			if userId < 1 {
				fmt.Println("Refresh: sub is:", userId)
				return echo.ErrBadRequest
			}
			var user *models.UserAccount
			result := db.First(&user, userId)
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				fmt.Println("Requested user not found!", userId)
				return echo.ErrForbidden
			}
			if result.Error != nil {
				fmt.Println("Error getting user while refreshing token", userId)
				return echo.ErrInternalServerError
			}
			if user.Banned {
				return echo.ErrUnauthorized
			}
			t := GenerateUserToken(fmt.Sprint(userId), c, 72)
			rt, err := GenerateRefreshToken(fmt.Sprint(userId))
			if err != nil {
				fmt.Println("Error refreshing token ", err)
				return echo.ErrInternalServerError
			}
			return c.JSON(http.StatusOK, echo.Map{
				"access_token":  t,
				"refresh_token": rt,
			})
		}
		return err
	})

	g.GET("/me", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)

		var itemCount int64
		db.Model(&models.WardrobeItem{}).Where("owner_id = ? AND archived = ?", user.ID, false).Count(&itemCount)
		var tasteCount int64
		db.Model(&models.TasteVector{}).Where("user_account_id = ?", user.ID).Count(&tasteCount)

		return c.JSON(http.StatusOK, models.UserMeOut{
			Id:                   fmt.Sprint(user.ID),
			Name:                 user.Name,
			Email:                user.Email,
			AvatarURL:            user.AvatarURL,
			Subscription:         user.Subscription,
			ReceiveNotifications: user.ReceiveNotifications,
			Department:           user.Department,
			Undertone:            user.Undertone,
			Height:               user.Height,
			WardrobeItemCount:    itemCount,
			TasteInitialized:     tasteCount > 0,
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/settings", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		var settingsIn = new(models.UserSettingsIn)
		db := c.Get("__db").(*gorm.DB)
		if err := c.Bind(settingsIn); err != nil {
			return err
		}
		user.ReceiveNotifications = settingsIn.ReceiveNotifications
		db.Save(&user)
		return c.JSON(http.StatusOK, settingsIn)
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/style-profile", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var profileIn = new(models.StyleProfileIn)
		if err := c.Bind(profileIn); err != nil {
			return err
		}
		if err := c.Validate(profileIn); err != nil {
			return err
		}
		if profileIn.Department != nil {
			user.Department = *profileIn.Department
		}
		if profileIn.Undertone != nil {
			user.Undertone = *profileIn.Undertone
		}
		if profileIn.Height != nil {
			user.Height = *profileIn.Height
		}
		db.Save(&user)
		return c.JSON(http.StatusOK, echo.Map{
			"department": user.Department,
			"undertone":  user.Undertone,
			"height":     user.Height,
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/taste/init", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var tasteIn = new(models.TasteInitIn)
		if err := c.Bind(tasteIn); err != nil {
			return err
		}
		if err := c.Validate(tasteIn); err != nil {
			return err
		}
		if err := outfit.InitializeTaste(db, user.ID, tasteIn.LikedImageIds, tasteIn.DislikedImageIds); err != nil {
			fmt.Println("Error initializing taste for user ", user.ID, err)
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Could not save your style picks, please try again"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "taste initialized",
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/register-push", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var tokenRequest = new(models.UserPushIn)
		if err := c.Bind(tokenRequest); err != nil {
			return err
		}
		if !models.ValidatePlatformRaw(tokenRequest.Platform) {
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Please provide proper platform parameter"})
		}
		var pushData models.UserPushToken = models.UserPushToken{
			Platform:      models.ScanPlatform(tokenRequest.Platform),
			Token:         tokenRequest.Token,
			UserAccountID: user.ID,
			Active:        true,
		}

		// same token/device can sign in to diff accs and still receive pushes.
		// we try to delete other session but we cannot errly on that
		result := db.Where("token = ? and user_account_id = ?", tokenRequest.Token, user.ID).FirstOrCreate(&pushData)
		if result.Error != nil {
			log.Println(result.Error)
			return echo.ErrInternalServerError
		}
		if result.RowsAffected >= 1 {
			fmt.Println("Token created for user ", user.ID, "Platform: ", tokenRequest.Platform)
		}
		fmt.Println("Push id ", pushData.ID, " Token ", pushData.Token, " Platform: ", pushData.Platform, "User ID:", pushData.UserAccountID)
		return c.JSON(http.StatusOK, echo.Map{
			"message": "registered",
			"push_id": pushData.ID,
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/delete-push", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var tokenRequest = new(models.UserPushIn)
		if err := c.Bind(tokenRequest); err != nil {
			return err
		}
		if !models.ValidatePlatformRaw(tokenRequest.Platform) {
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Please provide proper platform parameter"})
		}
		result := db.Where("token = ? and user_account_id = ? and platform = ?", tokenRequest.Token, user.ID, tokenRequest.Platform).Delete(&models.UserPushToken{})
		if result.Error != nil {
			log.Println(result.Error)
			return echo.ErrInternalServerError
		}
		if result.RowsAffected >= 1 {
			fmt.Println("Token deleted for user ", user.ID, "Platform: ", tokenRequest.Platform)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "deleted",
			"deleted": result.RowsAffected > 0,
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/logout", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var tokenRequest = new(models.UserPushIn)
		if err := c.Bind(tokenRequest); err != nil {
			return err
		}
		db.Where("user_account_id = ? and token = ?", user.ID, tokenRequest.Token).Delete(&models.UserPushToken{})
		return c.JSON(http.StatusOK, echo.Map{
			"message": "logged out",
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	g.POST("/delete-account", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		now := time.Now()
		user.ConfirmedDeleteDate = &now
		db.Save(&user)
		return c.JSON(http.StatusOK, echo.Map{
			"message": "scheduled for deletion",
		})
	}, echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)
}
