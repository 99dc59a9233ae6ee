package outfit

import (
	"context"

	"vestiqapi/models"
)

const (
	ConditionClear        = "clear"
	ConditionClouds       = "clouds"
	ConditionRain         = "rain"
	ConditionDrizzle      = "drizzle"
	ConditionThunderstorm = "thunderstorm"
	ConditionSnow         = "snow"
	ConditionMist         = "mist"
	ConditionFog          = "fog"
)

const (
	SeasonSummer = "summer"
	SeasonFall   = "fall"
	SeasonWinter = "winter"
	SeasonSpring = "spring"
	SeasonAll    = "all"
)

type Weather struct {
	TempC            float64
	Condition        string
	Humidity         int
	WindSpeed        float64
	SeasonSuggestion string
	// true when no coordinates were given or the upstream fetch failed
	IsDefault bool
}

// WeatherProvider fetches current conditions. A nil result means the caller
// substitutes DefaultWeather.
type WeatherProvider interface {
	ByCoords(ctx context.Context, lat, lon float64) (*Weather, error)
}

func DefaultWeather() Weather {
	return Weather{
		TempC:            20,
		Condition:        ConditionClear,
		Humidity:         50,
		SeasonSuggestion: SeasonSpring,
		IsDefault:        true,
	}
}

// SuggestSeason derives a dressing season from temperature, with rain and
// snow pulling the suggestion colder.
func SuggestSeason(tempC float64, condition string) string {
	var season string
	switch {
	case tempC >= 25:
		season = SeasonSummer
	case tempC >= 15:
		season = SeasonSpring
	case tempC >= 5:
		season = SeasonFall
	default:
		season = SeasonWinter
	}
	switch condition {
	case ConditionSnow:
		season = SeasonWinter
	case ConditionRain, ConditionDrizzle, ConditionThunderstorm:
		if season == SeasonSummer {
			season = SeasonFall
		}
	}
	return season
}

var adjacentSeasons = map[string][]string{
	SeasonSummer: {SeasonSpring},
	SeasonSpring: {SeasonSummer, SeasonFall},
	SeasonFall:   {SeasonSpring, SeasonWinter},
	SeasonWinter: {SeasonFall},
}

// SeasonalFit scores how well an item's season tags match the current
// suggestion, 0..1. Untagged items are treated as mostly fine.
func SeasonalFit(item models.WardrobeItem, season string) float64 {
	if len(item.Seasons) == 0 {
		return 0.7
	}
	adjacent := adjacentSeasons[season]
	best := 0.25
	for _, tag := range item.Seasons {
		t := normalizeName(tag)
		if t == SeasonAll || t == season {
			return 1.0
		}
		for _, adj := range adjacent {
			if t == adj && best < 0.6 {
				best = 0.6
			}
		}
	}
	return best
}

// WeatherAppropriate is the boolean gate used by the composer filters.
func WeatherAppropriate(item models.WardrobeItem, season string) bool {
	return SeasonalFit(item, season) >= 0.5
}
