// Package openmeteo implements the keyless Open-Meteo weather provider.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/greenpulse/greenpulse/internal/provider/resilience"
	"github.com/greenpulse/greenpulse/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openmeteo"

	// DefaultBaseURL is the Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	currentFields = "temperature_2m,relative_humidity_2m,wind_speed_10m,wind_direction_10m,surface_pressure,weather_code"
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL is the forecast endpoint (optional).
	BaseURL string

	// HTTPClient is the resilient client to use (optional).
	HTTPClient *resilience.Client

	Clock  clockwork.Clock
	Logger zerolog.Logger
}

// Client is an Open-Meteo API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	clock      clockwork.Clock
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		clock:      clock,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetCurrentWeather fetches current conditions for a location. Wind speed is
// requested in m/s.
func (c *Client) GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error) {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current=%s&wind_speed_unit=ms&timezone=UTC",
		c.baseURL, lat, lon, currentFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var omResp forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&omResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if omResp.Current.Temperature == nil {
		return nil, fmt.Errorf("response lacks current conditions")
	}

	return c.toObservation(&omResp), nil
}

func (c *Client) toObservation(resp *forecastResponse) *weather.Observation {
	cur := resp.Current

	observedAt := c.clock.Now()
	if t, err := time.Parse("2006-01-02T15:04", cur.Time); err == nil {
		observedAt = t
	}

	return &weather.Observation{
		Lat:           resp.Latitude,
		Lon:           resp.Longitude,
		Temperature:   *cur.Temperature,
		Humidity:      cur.Humidity,
		WindSpeed:     cur.WindSpeed,
		WindDirection: cur.WindDirection,
		Pressure:      cur.Pressure,
		Condition:     mapWeatherCode(cur.WeatherCode),
		Source:        ProviderName,
		ObservedAt:    observedAt,
		FetchedAt:     c.clock.Now(),
	}
}

// mapWeatherCode maps WMO weather interpretation codes to domain conditions.
func mapWeatherCode(code int) weather.Condition {
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionClouds
	case code == 45 || code == 48:
		return weather.ConditionFog
	case code >= 51 && code <= 57:
		return weather.ConditionDrizzle
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95 && code <= 99:
		return weather.ConditionThunderstorm
	default:
		return weather.ConditionUnknown
	}
}

type forecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   struct {
		Time          string   `json:"time"`
		Temperature   *float64 `json:"temperature_2m"`
		Humidity      float64  `json:"relative_humidity_2m"`
		WindSpeed     float64  `json:"wind_speed_10m"`
		WindDirection float64  `json:"wind_direction_10m"`
		Pressure      float64  `json:"surface_pressure"`
		WeatherCode   int      `json:"weather_code"`
	} `json:"current"`
}
