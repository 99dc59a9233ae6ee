package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"
	"vestiqapi/models"
	"vestiqapi/outfit"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	log.Println(JsonString(param))
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewJSONAuthRequestCustomAuth(method string, target string, authorizationString string, param interface{}) *http.Request {
	log.Println(JsonString(param))
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", authorizationString)
	return req
}

func NewRefString(data string) *string {
	return &data
}

func FakeUser(db *gorm.DB) *models.UserAccount {
	return FakeUserV2(db, "OurName", fmt.Sprintf("email%v@example.com", rand.Intn(1000000)))
}

func FakeUserV2(db *gorm.DB, userName string, email string) *models.UserAccount {

	if email == "" {
		email = "email@example.com"
	}
	user := &models.UserAccount{
		Name:                 userName,
		Email:                email,
		GoogleID:             "12232",
		Platform:             models.PlatformIOS,
		LastIp:               "123.122.122.122",
		Status:               "FINISHED_AUTH",
		AvatarURL:            "pictureurl",
		ReceiveNotifications: true,
	}
	db.Create(&user)
	tokenDb := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      "android",
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU-rqG1sxS8_WCF5cGZchf",
		Active:        true,
	}
	db.Save(&tokenDb)
	db.First(&user, user.ID)
	return user
}

// FakeItem creates a fully processed wardrobe item ready for styling.
func FakeItem(db *gorm.DB, ownerID uint, name string, category string, colors []string, formality int) *models.WardrobeItem {
	item := &models.WardrobeItem{
		Name:             name,
		OwnerID:          ownerID,
		Category:         category,
		Colors:           pq.StringArray(colors),
		Pattern:          "solid",
		Formality:        formality,
		Seasons:          pq.StringArray{"all"},
		Fit:              "regular",
		Vibes:            pq.StringArray{"casual"},
		ImageStatus:      "uploaded",
		ProcessingStatus: "completed",
	}
	db.Create(&item)
	return item
}

// FakeWardrobe seeds a small but complete closet: tops, bottoms,
// footwear plus one jacket. Enough for any composition path.
func FakeWardrobe(db *gorm.DB, ownerID uint) []*models.WardrobeItem {
	items := []*models.WardrobeItem{
		FakeItem(db, ownerID, "White Tee", "t-shirt", []string{"white"}, 2),
		FakeItem(db, ownerID, "Navy Oxford Shirt", "shirt", []string{"navy"}, 5),
		FakeItem(db, ownerID, "Khaki Chinos", "chinos", []string{"khaki"}, 4),
		FakeItem(db, ownerID, "Dark Jeans", "jeans", []string{"blue"}, 3),
		FakeItem(db, ownerID, "White Sneakers", "sneakers", []string{"white"}, 2),
		FakeItem(db, ownerID, "Brown Loafers", "loafers", []string{"brown"}, 6),
		FakeItem(db, ownerID, "Denim Jacket", "jacket", []string{"blue"}, 3),
	}
	return items
}

type GoogleServiceMock struct{}

func (gsm GoogleServiceMock) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {

	return &idtoken.Payload{Issuer: "Issue", Audience: "AAA", Expires: 119919191919, IssuedAt: 12312321321, Subject: "fake@example.com", Claims: map[string]interface{}{
		"email":   "fake@example.com",
		"picture": "pictureurl",
		"sub":     "123googleid",
	}}, nil

}

func (gsm GoogleServiceMock) GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error) {
	data := `
	{
		"request_date": "2024-05-11T06:50:56Z",
		"request_date_ms": 1715410256322,
		"subscriber": {
		  "entitlements": {
			"pro": {
			  "expires_date": "2029-05-11T06:51:15Z",
			  "grace_period_expires_date": null,
			  "product_identifier": "vestiq_pro",
			  "product_plan_identifier": "monthly-autorenew",
			  "purchase_date": "2024-05-11T06:49:05Z"
			}
		  },
		  "first_seen": "2024-05-07T12:41:57Z",
		  "last_seen": "2024-05-10T20:43:21Z",
		  "management_url": "https://play.google.com/store/account/subscriptions",
		  "non_subscriptions": {},
		  "original_app_user_id": "$RCAnonymousID:60ad7a0c84694890b4b272b5654efa1f",
		  "original_application_version": null,
		  "original_purchase_date": null,
		  "other_purchases": {},
		  "subscriptions": {
			"vestiq_pro": {
			  "auto_resume_date": null,
			  "billing_issues_detected_at": null,
			  "expires_date": "2029-05-11T06:51:15Z",
			  "grace_period_expires_date": null,
			  "is_sandbox": true,
			  "original_purchase_date": "2024-05-11T06:49:05Z",
			  "period_type": "normal",
			  "product_plan_identifier": "monthly-autorenew",
			  "purchase_date": "2024-05-11T06:49:05Z",
			  "refunded_at": null,
			  "store": "play_store",
			  "store_transaction_id": "GPA.3308-7668-0800-70257",
			  "unsubscribe_detected_at": null
			}
		  }
		}
	  }
	  `

	return []byte(data), nil
}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {

	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return awsService.MockUrl, nil
}

type URLCacheMock struct{}

func (m URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/%s", objectKey), nil
}

// StylistMock plays the completion provider. Zero value behaves like a
// healthy model returning Response; set Err or Unavailable to exercise
// the rule-based fallback paths.
type StylistMock struct {
	Response    string
	Err         error
	Unavailable bool
}

func (m StylistMock) Available() bool {
	return !m.Unavailable
}

func (m StylistMock) Complete(ctx context.Context, systemInstruction string, prompt string, maxTokens int32, temperature float32) (*outfit.LLMCompletion, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &outfit.LLMCompletion{
		Text:             m.Response,
		Model:            "gemini-2.5-flash",
		InputTokenCount:  10,
		OutputTokenCount: 13,
		TotalTokenCount:  23,
	}, nil
}

// StylistOutfitJSON builds a canned completion picking the given ids.
func StylistOutfitJSON(top, bottom, footwear uint) string {
	return fmt.Sprintf(`{
		"outfits": [
			{
				"top": %v,
				"bottom": %v,
				"footwear": %v,
				"outerwear": null,
				"accessory": null,
				"name": "Weekend Classic",
				"vibe": "casual",
				"reasoning": "Clean neutrals that always work together.",
				"styling_tip": "Roll the sleeves once.",
				"color_harmony": "navy and white stay crisp",
				"confidence": 0.9
			}
		]
	}`, top, bottom, footwear)
}

type WeatherMock struct {
	TempC     float64
	Condition string
}

func (m WeatherMock) ByCoords(ctx context.Context, lat, lon float64) (*outfit.Weather, error) {
	condition := m.Condition
	if condition == "" {
		condition = outfit.ConditionClear
	}
	tempC := m.TempC
	if tempC == 0 {
		tempC = 21
	}
	return &outfit.Weather{
		TempC:            tempC,
		Condition:        condition,
		Humidity:         50,
		SeasonSuggestion: outfit.SuggestSeason(tempC, condition),
	}, nil
}

func InternalRequestJSON(e *echo.Echo, method string, url string, userPk string, param interface{}) []byte {
	var req *http.Request
	if userPk != "" {
		req = NewJSONAuthRequest(method, url, userPk, param)
	} else {
		req = NewJSONRequest(method, url, param)
	}
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)
	if rec.Code > 300 {

		log.Println(rec.Body.String())
	}
	return rec.Body.Bytes()

}
