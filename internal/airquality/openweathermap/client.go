// Package openweathermap implements the air quality provider on top of the
// OpenWeatherMap air_pollution API.
package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/greenpulse/greenpulse/internal/airquality"
	"github.com/greenpulse/greenpulse/internal/provider/resilience"
)

const (
	// ProviderName identifies this pollutant provider.
	ProviderName = "openweathermap-air"

	// DefaultBaseURL is the OpenWeatherMap API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
)

// ClientConfig holds configuration for the air pollution client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the resilient client to use (optional).
	HTTPClient *resilience.Client

	Clock  clockwork.Clock
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap air pollution client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	clock      clockwork.Clock
	logger     zerolog.Logger
}

// NewClient creates a new air pollution client.
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
		apiKey:     cfg.APIKey,
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

// GetPollution fetches current pollutant concentrations for a location.
func (c *Client) GetPollution(ctx context.Context, lat, lon float64) (*airquality.Reading, error) {
	url := fmt.Sprintf("%s/air_pollution?lat=%.4f&lon=%.4f&appid=%s", c.baseURL, lat, lon, c.apiKey)

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

	var owmResp airPollutionResponse
	if err := json.NewDecoder(resp.Body).Decode(&owmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(owmResp.List) == 0 {
		return nil, airquality.ErrNoMeasurements
	}

	return c.toReading(&owmResp)
}

func (c *Client) toReading(resp *airPollutionResponse) (*airquality.Reading, error) {
	item := resp.List[0]
	comp := item.Components
	if comp.PM25 == nil || comp.PM10 == nil {
		return nil, errors.New("response lacks particulate matter")
	}

	return &airquality.Reading{
		PM25:        *comp.PM25,
		PM10:        *comp.PM10,
		NO2:         comp.NO2,
		SO2:         comp.SO2,
		CO:          comp.CO,
		O3:          comp.O3,
		ProviderAQI: item.Main.AQI,
		Lat:         resp.Coord.Lat,
		Lon:         resp.Coord.Lon,
		Source:      ProviderName,
		ObservedAt:  time.Unix(item.Dt, 0),
		FetchedAt:   c.clock.Now(),
	}, nil
}

type airPollutionResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"` // 1 (good) to 5 (very poor)
		} `json:"main"`
		Components struct {
			CO   float64  `json:"co"`
			NO   float64  `json:"no"`
			NO2  float64  `json:"no2"`
			O3   float64  `json:"o3"`
			SO2  float64  `json:"so2"`
			PM25 *float64 `json:"pm2_5"`
			PM10 *float64 `json:"pm10"`
			NH3  float64  `json:"nh3"`
		} `json:"components"`
	} `json:"list"`
}
