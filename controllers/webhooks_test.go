package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vestiqapi/dbhelper"
	"vestiqapi/models"
	"vestiqapi/test"
)

func rcEvent(eventType string, appUserId string) map[string]interface{} {
	return map[string]interface{}{
		"event": map[string]interface{}{
			"type":        eventType,
			"app_user_id": appUserId,
		},
	}
}

func TestWebhookInvalidToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer wrong", rcEvent("INITIAL_PURCHASE", "1"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookTransferSkipped(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer fake", rcEvent("TRANSFER", "1"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "OK TRANSFER")
}

func TestWebhookProActivated(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	require.Equal(t, models.Free, user.Subscription)

	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer fake", rcEvent("INITIAL_PURCHASE", fmt.Sprint(user.ID)))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Pro is active")

	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.Equal(t, models.Pro, updated.Subscription)
	require.NotNil(t, updated.ExpirationDate)
	assert.True(t, updated.ExpirationDate.After(time.Now()))
}

func TestWebhookExpirationDowngrades(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	db.Model(user).Update("subscription", models.Pro)

	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer fake", rcEvent("EXPIRATION", fmt.Sprint(user.ID)))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "expire ok")

	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.Equal(t, models.Free, updated.Subscription)
}

func TestWebhookUnknownUser(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer fake", rcEvent("INITIAL_PURCHASE", "99999"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
