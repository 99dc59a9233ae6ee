package outfit

import (
	"math"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vestiqapi/dbhelper"
	"vestiqapi/models"
)

func TestNormalize(t *testing.T) {
	v := []float64{3, 4}
	ok := Normalize(v)
	assert.True(t, ok)
	assert.InDelta(t, 0.6, v[0], 1e-9)
	assert.InDelta(t, 0.8, v[1], 1e-9)
	assert.InDelta(t, 1.0, vectorNorm(v), 1e-9)
}

func TestNormalizeZeroVector(t *testing.T) {
	v := []float64{0, 0, 0}
	ok := Normalize(v)
	assert.False(t, ok)
	assert.Equal(t, []float64{0, 0, 0}, v)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-1, 0}), 1e-9)
}

func TestCosineDimensionMismatch(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float64{1, 2}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
}

func TestAlignmentRange(t *testing.T) {
	assert.InDelta(t, 0.0, Alignment(-1), 1e-9)
	assert.InDelta(t, 0.5, Alignment(0), 1e-9)
	assert.InDelta(t, 1.0, Alignment(1), 1e-9)
}

func TestInteractionWeightsSigns(t *testing.T) {
	assert.Greater(t, InteractionWeights[models.InteractionWear], InteractionWeights[models.InteractionSave])
	assert.Greater(t, InteractionWeights[models.InteractionSave], InteractionWeights[models.InteractionLike])
	assert.Less(t, InteractionWeights[models.InteractionSkip], 0.0)
	assert.Less(t, InteractionWeights[models.InteractionReject], InteractionWeights[models.InteractionSkip])
}

func tasteTestVector(dim int, hot ...int) pq.Float64Array {
	v := make(pq.Float64Array, dim)
	for _, i := range hot {
		v[i] = 1
	}
	return v
}

func TestInitializeTaste(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()

	user := models.UserAccount{Name: "Taste", Email: "taste@example.com"}
	db.Create(&user)

	liked := models.StyleRefImage{Slug: "minimal-1", Embedding: tasteTestVector(4, 0)}
	liked2 := models.StyleRefImage{Slug: "minimal-2", Embedding: tasteTestVector(4, 1)}
	disliked := models.StyleRefImage{Slug: "maximal-1", Embedding: tasteTestVector(4, 2)}
	db.Create(&liked)
	db.Create(&liked2)
	db.Create(&disliked)

	err := InitializeTaste(db, user.ID, []uint{liked.ID, liked2.ID}, []uint{disliked.ID})
	require.NoError(t, err)

	vector := GetTasteVector(db, user.ID)
	require.Len(t, vector, 4)
	assert.InDelta(t, 1.0, vectorNorm(vector), 1e-9)
	// liked dimensions pull positive, disliked pulls negative
	assert.Greater(t, vector[0], 0.0)
	assert.Greater(t, vector[1], 0.0)
	assert.Less(t, vector[2], 0.0)
	assert.InDelta(t, vector[0], vector[1], 1e-9)
}

func TestInitializeTasteNoLikes(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()

	user := models.UserAccount{Name: "Taste", Email: "taste2@example.com"}
	db.Create(&user)

	err := InitializeTaste(db, user.ID, []uint{9999999}, nil)
	assert.Error(t, err)
	assert.Nil(t, GetTasteVector(db, user.ID))
}

func TestInitializeTasteOverwrites(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()

	user := models.UserAccount{Name: "Taste", Email: "taste3@example.com"}
	db.Create(&user)

	ref1 := models.StyleRefImage{Slug: "street-1", Embedding: tasteTestVector(4, 0)}
	ref2 := models.StyleRefImage{Slug: "classic-1", Embedding: tasteTestVector(4, 3)}
	db.Create(&ref1)
	db.Create(&ref2)

	require.NoError(t, InitializeTaste(db, user.ID, []uint{ref1.ID}, nil))
	require.NoError(t, InitializeTaste(db, user.ID, []uint{ref2.ID}, nil))

	vector := GetTasteVector(db, user.ID)
	require.Len(t, vector, 4)
	assert.InDelta(t, 0.0, vector[0], 1e-9)
	assert.InDelta(t, 1.0, vector[3], 1e-9)

	var count int64
	db.Model(&models.TasteVector{}).Where("user_account_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateTasteLazyCreation(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()

	user := models.UserAccount{Name: "Taste", Email: "taste4@example.com"}
	db.Create(&user)

	// first negative signal carries no baseline, nothing to drift from
	require.NoError(t, UpdateTaste(db, user.ID, []float64{0, 1}, models.InteractionSkip))
	assert.Nil(t, GetTasteVector(db, user.ID))

	require.NoError(t, UpdateTaste(db, user.ID, []float64{0, 2}, models.InteractionWear))
	vector := GetTasteVector(db, user.ID)
	require.Len(t, vector, 2)
	assert.InDelta(t, 0.0, vector[0], 1e-9)
	assert.InDelta(t, 1.0, vector[1], 1e-9)
}

func TestUpdateTasteMovesTowardPositiveSignal(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()

	user := models.UserAccount{Name: "Taste", Email: "taste5@example.com"}
	db.Create(&user)

	tv := models.TasteVector{UserAccountID: user.ID, Vector: pq.Float64Array{1, 0}, InteractionCount: 1}
	db.Create(&tv)

	target := []float64{0, 1}
	require.NoError(t, UpdateTaste(db, user.ID, target, models.InteractionWear))

	vector := GetTasteVector(db, user.ID)
	require.Len(t, vector, 2)
	assert.InDelta(t, 1.0, vectorNorm(vector), 1e-9)
	before := Cosine([]float64{1, 0}, target)
	after := Cosine(vector, target)
	assert.Greater(t, after, before)
}

func TestUpdateTasteMovesAwayFromRejected(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()

	user := models.UserAccount{Name: "Taste", Email: "taste6@example.com"}
	db.Create(&user)

	start := []float64{math.Sqrt2 / 2, math.Sqrt2 / 2}
	tv := models.TasteVector{UserAccountID: user.ID, Vector: pq.Float64Array(start), InteractionCount: 1}
	db.Create(&tv)

	rejected := []float64{0, 1}
	require.NoError(t, UpdateTaste(db, user.ID, rejected, models.InteractionReject))

	vector := GetTasteVector(db, user.ID)
	require.Len(t, vector, 2)
	assert.Less(t, Cosine(vector, rejected), Cosine(start, rejected))
}

func TestUpdateTasteUnknownType(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()

	err := UpdateTaste(db, 1, []float64{1}, "shrug")
	assert.Error(t, err)
}

func TestUpdateTasteDimensionMismatch(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()

	user := models.UserAccount{Name: "Taste", Email: "taste7@example.com"}
	db.Create(&user)
	tv := models.TasteVector{UserAccountID: user.ID, Vector: pq.Float64Array{1, 0}, InteractionCount: 1}
	db.Create(&tv)

	err := UpdateTaste(db, user.ID, []float64{1, 2, 3}, models.InteractionWear)
	assert.Error(t, err)
}
