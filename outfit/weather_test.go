package outfit

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"vestiqapi/models"
)

func TestSuggestSeason(t *testing.T) {
	assert.Equal(t, SeasonSummer, SuggestSeason(28, ConditionClear))
	assert.Equal(t, SeasonSpring, SuggestSeason(18, ConditionClear))
	assert.Equal(t, SeasonFall, SuggestSeason(8, ConditionClouds))
	assert.Equal(t, SeasonWinter, SuggestSeason(-2, ConditionClear))
}

func TestSuggestSeasonPrecipitationPullsColder(t *testing.T) {
	assert.Equal(t, SeasonWinter, SuggestSeason(18, ConditionSnow))
	assert.Equal(t, SeasonFall, SuggestSeason(28, ConditionRain))
	// rain below the summer band leaves the season alone
	assert.Equal(t, SeasonSpring, SuggestSeason(18, ConditionRain))
}

func seasonedItem(tags ...string) models.WardrobeItem {
	return models.WardrobeItem{Seasons: pq.StringArray(tags)}
}

func TestSeasonalFit(t *testing.T) {
	assert.Equal(t, 1.0, SeasonalFit(seasonedItem("summer"), SeasonSummer))
	assert.Equal(t, 1.0, SeasonalFit(seasonedItem("all"), SeasonWinter))
	assert.Equal(t, 0.7, SeasonalFit(seasonedItem(), SeasonSummer))
	assert.Equal(t, 0.6, SeasonalFit(seasonedItem("spring"), SeasonSummer))
	assert.Equal(t, 0.25, SeasonalFit(seasonedItem("winter"), SeasonSummer))
}

func TestWeatherAppropriate(t *testing.T) {
	assert.True(t, WeatherAppropriate(seasonedItem("all"), SeasonFall))
	assert.True(t, WeatherAppropriate(seasonedItem(), SeasonFall))
	assert.False(t, WeatherAppropriate(seasonedItem("summer"), SeasonWinter))
}

func TestDefaultWeather(t *testing.T) {
	w := DefaultWeather()
	assert.True(t, w.IsDefault)
	assert.Equal(t, ConditionClear, w.Condition)
	assert.Equal(t, SeasonSpring, w.SeasonSuggestion)
}
