package models

import (
	"github.com/greenpulse/greenpulse/internal/forecast"
)

// FeaturesResponse lists the model schema in order.
type FeaturesResponse struct {
	Features []string `json:"features"`
}

// StationInfo is one canonical station of the registry.
type StationInfo struct {
	Name    string   `json:"name"`
	Codes   []int    `json:"codes"`
	Aliases []string `json:"aliases"`
}

// StationsResponse lists the registry in order.
type StationsResponse struct {
	Stations []StationInfo `json:"stations"`
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Data map[string]any `json:"data"`
}

// PredictResponse is a three-horizon forecast with contributions.
type PredictResponse struct {
	Forecast     forecast.HorizonValues        `json:"forecast"`
	Contribution forecast.HorizonContributions `json:"contribution"`
}

// PredictStationRequest is the body of POST /predict_station.
type PredictStationRequest struct {
	StationName string         `json:"station_name"`
	Data        map[string]any `json:"data"`
}

// PredictStationResponse is the averaged forecast for a resolved station.
type PredictStationResponse struct {
	Station      string                        `json:"station"`
	CodesUsed    []int                         `json:"codes_used"`
	Forecast     forecast.HorizonValues        `json:"forecast"`
	Contribution forecast.HorizonContributions `json:"contribution"`
}
