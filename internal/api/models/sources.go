package models

import (
	"time"

	"github.com/greenpulse/greenpulse/internal/airquality"
	"github.com/greenpulse/greenpulse/internal/attribution"
	"github.com/greenpulse/greenpulse/internal/weather"
)

// StationRequest is the body of POST /forecast/station.
type StationRequest struct {
	StationName string `json:"station_name"`
}

// SourcesRequest is the body of POST /sources/station.
type SourcesRequest struct {
	StationName string   `json:"station_name"`
	CurrentAQI  *float64 `json:"current_aqi,omitempty"`
}

// BatchRequest is the body of POST /forecast/batch.
type BatchRequest struct {
	Stations []string `json:"stations"`
}

// Pollutants is the wire form of an airquality.Reading.
type Pollutants struct {
	PM25       float64   `json:"pm25"`
	PM10       float64   `json:"pm10"`
	NO2        float64   `json:"no2"`
	SO2        float64   `json:"so2"`
	CO         float64   `json:"co"`
	O3         float64   `json:"o3"`
	AQI        int       `json:"aqi"`
	Source     string    `json:"source"`
	ObservedAt time.Time `json:"observed_at"`
}

// Weather is the wire form of a weather.Observation.
type Weather struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection float64 `json:"wind_direction"`
	Pressure      float64 `json:"pressure,omitempty"`
	Condition     string  `json:"condition"`
	WindCategory  string  `json:"wind_category"`
	Source        string  `json:"source"`
}

// NewPollutants converts a reading for the wire.
func NewPollutants(r *airquality.Reading) *Pollutants {
	if r == nil {
		return nil
	}
	return &Pollutants{
		PM25:       r.PM25,
		PM10:       r.PM10,
		NO2:        r.NO2,
		SO2:        r.SO2,
		CO:         r.CO,
		O3:         r.O3,
		AQI:        r.AQI(),
		Source:     r.Source,
		ObservedAt: r.ObservedAt,
	}
}

// NewWeather converts an observation for the wire.
func NewWeather(o *weather.Observation) *Weather {
	if o == nil {
		return nil
	}
	return &Weather{
		Temperature:   o.Temperature,
		Humidity:      o.Humidity,
		WindSpeed:     o.WindSpeed,
		WindDirection: o.WindDirection,
		Pressure:      o.Pressure,
		Condition:     string(o.Condition),
		WindCategory:  string(o.GetWindCategory()),
		Source:        o.Source,
	}
}

// Realtime is the current state reported alongside an outlook.
type Realtime struct {
	AQI        float64           `json:"aqi"`
	Timestamp  time.Time         `json:"timestamp"`
	Pollutants *Pollutants       `json:"pollutants"`
	Weather    *Weather          `json:"weather"`
	Advice     airquality.Advice `json:"health_advice"`
}

// Interval is a confidence band around one outlook value.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ModelInfo describes the forecaster behind an outlook.
type ModelInfo struct {
	ModelType string `json:"model_type"`
	Horizons  []int  `json:"horizons"`
	Features  string `json:"features"`
}

// OutlookResponse is the body returned by POST /forecast/station.
type OutlookResponse struct {
	Success             bool                `json:"success"`
	StationName         string              `json:"station_name"`
	Realtime            Realtime            `json:"realtime"`
	Forecast            map[string]float64  `json:"forecast"`
	ConfidenceIntervals map[string]Interval `json:"confidence_intervals"`
	ModelInfo           ModelInfo           `json:"model_info"`
}

// SourcesResponse is the body returned by POST /sources/station.
type SourcesResponse struct {
	Success           bool                 `json:"success"`
	StationName       string               `json:"station_name"`
	Sources           attribution.Split    `json:"sources"`
	Confidence        float64              `json:"confidence"`
	AttributionMethod string               `json:"attribution_method"`
	Pollutants        *Pollutants          `json:"pollutants"`
	Weather           *Weather             `json:"weather"`
	Metadata          attribution.Metadata `json:"metadata"`
}

// BatchItem is the outcome for one station of a batch.
type BatchItem struct {
	StationName string             `json:"station_name"`
	Success     bool               `json:"success"`
	CurrentAQI  *float64           `json:"current_aqi,omitempty"`
	Forecast    map[string]float64 `json:"forecast,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// BatchResponse is the body returned by POST /forecast/batch.
type BatchResponse struct {
	Success   bool        `json:"success"`
	Results   []BatchItem `json:"results"`
	Timestamp time.Time   `json:"timestamp"`
}
