// Package weather provides surface weather for Delhi stations from a chain of
// upstream providers with a grid-cell cache and a synthetic fallback.
package weather

import (
	"errors"
	"math"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// SourceSynthetic marks observations produced by the fallback generator.
const SourceSynthetic = "synthetic"

// Observation represents weather data at a specific point and time.
type Observation struct {
	Lat float64
	Lon float64

	// Temperature in Celsius
	Temperature float64

	// Humidity percentage (0-100)
	Humidity float64

	WindSpeed     float64 // m/s
	WindDirection float64 // degrees, 0=N

	// Atmospheric pressure in hPa, 0 if unknown
	Pressure float64

	Condition   Condition
	Description string

	// Source is the provider name or SourceSynthetic.
	Source     string
	ObservedAt time.Time
	FetchedAt  time.Time
}

// Live reports whether the observation came from an upstream provider.
func (o *Observation) Live() bool {
	return o.Source != SourceSynthetic
}

// Condition represents the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	ConditionMist         Condition = "MIST"
	ConditionFog          Condition = "FOG"
	ConditionHaze         Condition = "HAZE"
	ConditionUnknown      Condition = "UNKNOWN"
)

// WindCategory categorizes wind speed by its effect on pollutant dispersion.
type WindCategory string

const (
	WindCalm     WindCategory = "CALM"     // < 1 m/s - pollutants accumulate
	WindLight    WindCategory = "LIGHT"    // 1-3 m/s - minimal dispersion
	WindModerate WindCategory = "MODERATE" // 3-8 m/s - good dispersion
	WindStrong   WindCategory = "STRONG"   // > 8 m/s - excellent dispersion
)

// GetWindCategory returns the wind category for the observation.
func (o *Observation) GetWindCategory() WindCategory {
	return CategorizeWind(o.WindSpeed)
}

// CategorizeWind maps a wind speed in m/s to its category.
func CategorizeWind(speed float64) WindCategory {
	switch {
	case speed < 1:
		return WindCalm
	case speed < 3:
		return WindLight
	case speed < 8:
		return WindModerate
	default:
		return WindStrong
	}
}

func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
