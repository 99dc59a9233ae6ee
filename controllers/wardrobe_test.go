package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vestiqapi/dbhelper"
	"vestiqapi/models"
	"vestiqapi/outfit"
	"vestiqapi/test"
)

func TestCreateItemOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	reqBody := models.WardrobeItemIn{
		Name:     "Navy Oxford Shirt",
		Category: "shirt",
		Colors:   []string{"navy"},
		Seasons:  []string{"all"},
		FileName: "oxford.jpg",
	}
	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", UIntToStr(user.ID), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var response models.WardrobeCreateOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Navy Oxford Shirt", response.Item.Name)
	assert.Equal(t, "draft", response.Item.ImageStatus)
	require.NotNil(t, response.UploadUrl)
	assert.Contains(t, *response.UploadUrl, "fakebucketurl.com")
	require.NotNil(t, response.Item.ImageURL)
	assert.Contains(t, *response.Item.ImageURL, fmt.Sprintf("wardrobe/%v/", user.ID))
}

func TestCreateItemNoFile(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	reqBody := models.WardrobeItemIn{
		Name:     "Khaki Chinos",
		Category: "chinos",
	}
	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", UIntToStr(user.ID), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var response models.WardrobeCreateOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Nil(t, response.UploadUrl)
}

func TestCreateItemMissingName(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	reqBody := models.WardrobeItemIn{Category: "shirt"}
	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", UIntToStr(user.ID), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateItemBadExtension(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	reqBody := models.WardrobeItemIn{
		Name:     "Weird Upload",
		Category: "shirt",
		FileName: "malware.exe",
	}
	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", UIntToStr(user.ID), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateItemUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	reqBody := models.WardrobeItemIn{Name: "White Tee", Category: "t-shirt"}
	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", "", reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateItemFreeLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	for i := 0; i < models.FreeWardrobeItemLimit; i++ {
		test.FakeItem(db, user.ID, fmt.Sprintf("Tee %v", i), "t-shirt", []string{"white"}, 2)
	}

	reqBody := models.WardrobeItemIn{Name: "One Too Many", Category: "t-shirt"}
	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", UIntToStr(user.ID), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "free limit")
}

func TestCreateItemProSkipsLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	db.Model(user).Update("subscription", models.Pro)
	for i := 0; i < models.FreeWardrobeItemLimit; i++ {
		test.FakeItem(db, user.ID, fmt.Sprintf("Tee %v", i), "t-shirt", []string{"white"}, 2)
	}

	reqBody := models.WardrobeItemIn{Name: "Pro Item", Category: "t-shirt"}
	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", UIntToStr(user.ID), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestListItemsGroupedBySlot(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	items := test.FakeWardrobe(db, user.ID)
	key := "wardrobe/1/tee.jpg"
	db.Model(items[0]).Update("image_url", key)

	req := test.NewJSONAuthRequest("GET", "/wardrobe/list", UIntToStr(user.ID), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response models.WardrobeListOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 7, response.Total)
	assert.Len(t, response.Slots[outfit.SlotTop], 2)
	assert.Len(t, response.Slots[outfit.SlotBottom], 2)
	assert.Len(t, response.Slots[outfit.SlotFootwear], 2)
	assert.Len(t, response.Slots[outfit.SlotOuterwear], 1)
	presigned := false
	for _, out := range response.Slots[outfit.SlotTop] {
		require.NotNil(t, out.PresignedableURL)
		if *out.PresignedableURL == fmt.Sprintf("https://fakebucketurl.com/%s", key) {
			presigned = true
		}
	}
	assert.True(t, presigned)
}

func TestListItemsSkipsArchived(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	item := test.FakeItem(db, user.ID, "Old Tee", "t-shirt", []string{"white"}, 2)
	db.Model(item).Update("archived", true)

	req := test.NewJSONAuthRequest("GET", "/wardrobe/list", UIntToStr(user.ID), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response models.WardrobeListOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 0, response.Total)
}

func TestArchiveItem(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	item := test.FakeItem(db, user.ID, "White Tee", "t-shirt", []string{"white"}, 2)

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/wardrobe/%v/archive", item.ID), UIntToStr(user.ID), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.WardrobeItem
	db.First(&updated, item.ID)
	assert.True(t, updated.Archived)
}

func TestArchiveItemWrongOwner(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	owner := test.FakeUserV2(db, "Owner", "owner@example.com")
	other := test.FakeUserV2(db, "Other", "other@example.com")
	item := test.FakeItem(db, owner.ID, "White Tee", "t-shirt", []string{"white"}, 2)

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/wardrobe/%v/archive", item.ID), UIntToStr(other.ID), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkItemWorn(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	item := test.FakeItem(db, user.ID, "Dark Jeans", "jeans", []string{"indigo"}, 3)

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/wardrobe/%v/worn", item.ID), UIntToStr(user.ID), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.WardrobeItem
	db.First(&updated, item.ID)
	assert.Equal(t, 1, updated.TimesWorn)
	assert.NotNil(t, updated.LastWornAt)
}

func TestMarkItemWornNotFound(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := setupTestServer(db, test.StylistMock{Unavailable: true})

	user := test.FakeUser(db)
	req := test.NewJSONAuthRequest("POST", "/wardrobe/99999/worn", UIntToStr(user.ID), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
