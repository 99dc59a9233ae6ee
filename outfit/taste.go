package outfit

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vestiqapi/models"
)

const TasteVectorDim = 768

const (
	tasteDailyDecay   = 0.95
	tasteLearningRate = 0.1
	dislikedRefWeight = 0.3
)

// interaction type -> taste update weight
var InteractionWeights = map[string]float64{
	models.InteractionWear:   1.0,
	models.InteractionSave:   0.7,
	models.InteractionLike:   0.5,
	models.InteractionEdit:   0.3,
	models.InteractionSkip:   -0.2,
	models.InteractionReject: -0.5,
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize scales v to unit length in place. Near-zero vectors are left
// untouched and reported.
func Normalize(v []float64) bool {
	norm := vectorNorm(v)
	if norm < 1e-9 {
		return false
	}
	for i := range v {
		v[i] /= norm
	}
	return true
}

// Cosine similarity, -1..1. Dimension mismatch scores 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	dot, na, nb := 0.0, 0.0, 0.0
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Alignment remaps cosine similarity to 0..1 so it composes with the other
// scoring terms.
func Alignment(cos float64) float64 {
	return (cos + 1) / 2
}

// GetTasteVector returns the user's taste vector, or nil when none exists or
// the read fails. Taste is an enhancement, never a hard dependency.
func GetTasteVector(db *gorm.DB, userID uint) []float64 {
	var tv models.TasteVector
	err := db.Where("user_account_id = ?", userID).First(&tv).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("[Taste: %v] read failed: %v\n", userID, err)
			sentry.CaptureException(err)
		}
		return nil
	}
	if len(tv.Vector) == 0 {
		return nil
	}
	return tv.Vector
}

// InitializeTaste seeds the taste vector from onboarding likes/dislikes:
// mean(liked) - 0.3*mean(disliked), unit-normalized.
func InitializeTaste(db *gorm.DB, userID uint, likedImageIds []uint, dislikedImageIds []uint) error {
	liked, err := refEmbeddings(db, likedImageIds)
	if err != nil {
		return err
	}
	if len(liked) == 0 {
		return fmt.Errorf("no reference embeddings for liked images")
	}
	disliked, err := refEmbeddings(db, dislikedImageIds)
	if err != nil {
		return err
	}

	vector := meanVector(liked)
	if len(disliked) > 0 {
		dm := meanVector(disliked)
		for i := range vector {
			vector[i] -= dislikedRefWeight * dm[i]
		}
	}
	if !Normalize(vector) {
		// degenerate combination, fall back to the liked signal alone
		vector = meanVector(liked)
		if !Normalize(vector) {
			return fmt.Errorf("degenerate taste seed for user %v", userID)
		}
	}

	tv := models.TasteVector{
		UserAccountID:    userID,
		Vector:           pq.Float64Array(vector),
		InteractionCount: len(likedImageIds) + len(dislikedImageIds),
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vector", "interaction_count", "updated_at"}),
	}).Create(&tv).Error
}

// UpdateTaste nudges the vector toward (or away from) an interacted item.
// The step size decays with days since the last update so stale taste
// profiles move faster than fresh ones stay put.
func UpdateTaste(db *gorm.DB, userID uint, itemEmbedding []float64, interactionType string) error {
	weight, ok := InteractionWeights[interactionType]
	if !ok {
		return fmt.Errorf("unknown interaction type %q", interactionType)
	}
	if len(itemEmbedding) == 0 {
		return nil
	}

	var tv models.TasteVector
	err := db.Where("user_account_id = ?", userID).First(&tv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// lazy creation on first positive signal; drifting away from an
		// item with no baseline is meaningless
		if weight <= 0 {
			return nil
		}
		seed := append([]float64(nil), itemEmbedding...)
		if !Normalize(seed) {
			return nil
		}
		tv = models.TasteVector{
			UserAccountID:    userID,
			Vector:           pq.Float64Array(seed),
			InteractionCount: 1,
		}
		return db.Create(&tv).Error
	}
	if err != nil {
		return err
	}
	if len(tv.Vector) != len(itemEmbedding) {
		return fmt.Errorf("embedding dimension mismatch: %v vs %v", len(tv.Vector), len(itemEmbedding))
	}

	days := time.Since(tv.UpdatedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	lr := tasteLearningRate * math.Pow(tasteDailyDecay, days)

	next := make([]float64, len(tv.Vector))
	for i := range tv.Vector {
		next[i] = tv.Vector[i] + lr*weight*(itemEmbedding[i]-tv.Vector[i])
	}
	if !Normalize(next) {
		// keep the previous vector rather than persist a degenerate one
		return nil
	}

	return db.Model(&tv).Updates(map[string]interface{}{
		"vector":            pq.Float64Array(next),
		"interaction_count": tv.InteractionCount + 1,
	}).Error
}

func refEmbeddings(db *gorm.DB, ids []uint) ([][]float64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var refs []models.StyleRefImage
	if err := db.Where("id IN ?", ids).Find(&refs).Error; err != nil {
		return nil, err
	}
	out := make([][]float64, 0, len(refs))
	for _, ref := range refs {
		if len(ref.Embedding) > 0 {
			out = append(out, ref.Embedding)
		}
	}
	return out, nil
}

func meanVector(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	mean := make([]float64, len(vectors[0]))
	count := 0
	for _, v := range vectors {
		if len(v) != len(mean) {
			continue
		}
		for i := range v {
			mean[i] += v[i]
		}
		count++
	}
	if count == 0 {
		return mean
	}
	for i := range mean {
		mean[i] /= float64(count)
	}
	return mean
}
