package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"vestiqapi/outfit"
)

// OpenWeatherService implements outfit.WeatherProvider against the
// OpenWeatherMap current-conditions API. Failures return an error and the
// engine substitutes its neutral default.
type OpenWeatherService struct {
}

type openWeatherResponse struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

var weatherConditions = map[string]string{
	"Clear":        outfit.ConditionClear,
	"Clouds":       outfit.ConditionClouds,
	"Rain":         outfit.ConditionRain,
	"Drizzle":      outfit.ConditionDrizzle,
	"Thunderstorm": outfit.ConditionThunderstorm,
	"Snow":         outfit.ConditionSnow,
	"Mist":         outfit.ConditionMist,
	"Fog":          outfit.ConditionFog,
}

func (ws OpenWeatherService) ByCoords(ctx context.Context, lat, lon float64) (*outfit.Weather, error) {
	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY not set")
	}

	url := fmt.Sprintf("https://api.openweathermap.org/data/2.5/weather?lat=%v&lon=%v&units=metric&appid=%s",
		lat, lon, apiKey)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		fmt.Println("[Weather] fetch error:", err)
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("weather upstream returned %v: %s", res.StatusCode, string(b))
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}

	condition := outfit.ConditionClear
	if len(payload.Weather) > 0 {
		if mapped, ok := weatherConditions[payload.Weather[0].Main]; ok {
			condition = mapped
		} else {
			condition = outfit.ConditionClouds
		}
	}

	return &outfit.Weather{
		TempC:            payload.Main.Temp,
		Condition:        condition,
		Humidity:         payload.Main.Humidity,
		WindSpeed:        payload.Wind.Speed,
		SeasonSuggestion: outfit.SuggestSeason(payload.Main.Temp, condition),
	}, nil
}
