// Package airquality provides pollutant readings for Delhi stations with a
// live upstream, a grid-cell cache and a deterministic synthetic fallback.
package airquality

import (
	"errors"
	"math"
	"time"
)

// Provider errors.
var (
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
	ErrNoMeasurements      = errors.New("no measurements available")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// SourceSynthetic marks readings produced by the fallback generator.
const SourceSynthetic = "synthetic"

// Reading is a set of pollutant concentrations at one point in time.
// All concentrations are in µg/m³, CO included.
type Reading struct {
	PM25 float64
	PM10 float64
	NO2  float64
	SO2  float64
	CO   float64
	O3   float64

	// ProviderAQI is the upstream's own index, if it reports one.
	ProviderAQI int

	Lat float64
	Lon float64

	// Source is the provider name or SourceSynthetic.
	Source     string
	ObservedAt time.Time
	FetchedAt  time.Time
}

// Live reports whether the reading came from an upstream provider.
func (r *Reading) Live() bool {
	return r.Source != SourceSynthetic
}

// NO2PM25Ratio returns NO2/PM2.5, or 0 when PM2.5 is not positive.
func (r *Reading) NO2PM25Ratio() float64 {
	return ratio(r.NO2, r.PM25)
}

// PM10PM25Ratio returns PM10/PM2.5, or 0 when PM2.5 is not positive.
func (r *Reading) PM10PM25Ratio() float64 {
	return ratio(r.PM10, r.PM25)
}

// AQI returns the US EPA index derived from PM2.5.
func (r *Reading) AQI() int {
	return PM25ToAQI(r.PM25)
}

func ratio(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return a / b
}

func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
