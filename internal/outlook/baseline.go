// Package outlook produces short-range AQI outlooks for stations from the
// current reading and weather using a fixed baseline formula.
package outlook

import (
	"math"
	"time"

	"github.com/greenpulse/greenpulse/internal/synthetic"
)

// Horizons are the outlook lead times in hours.
var Horizons = []int{6, 12, 24, 48, 72}

// AQI bounds for any outlook value.
const (
	MinAQI = 10
	MaxAQI = 500
)

// Uncertainty is the relative half-width of the confidence interval.
const Uncertainty = 0.15

// Conditions are the weather inputs of the baseline formula.
type Conditions struct {
	Temperature float64 // °C
	Humidity    float64 // %
	WindSpeed   float64 // m/s
}

// Baseline computes the outlook value for target. Higher temperature and
// wind lower the index, humidity and the winter half of the seasonal wave
// raise it. jitter is added before clamping.
func Baseline(currentAQI float64, c Conditions, target time.Time, jitter float64) float64 {
	local := target.In(synthetic.IST)
	doy := float64(local.YearDay())

	v := 0.7*currentAQI +
		50*math.Sin(2*math.Pi*doy/365) +
		2*(40-c.Temperature) +
		0.5*(c.Humidity-50) +
		3*(10-c.WindSpeed) +
		Diurnal(local.Hour()) +
		jitter

	return clamp(v, MinAQI, MaxAQI)
}

// Diurnal is the time-of-day correction for an IST hour. Night inversions
// trap pollutants; afternoon mixing disperses them.
func Diurnal(hour int) float64 {
	switch {
	case hour >= 22 || hour <= 6:
		return 15
	case hour >= 12 && hour <= 16:
		return -10
	default:
		return 0
	}
}

// Interval returns the lower and upper bounds around v, rounded to tenths.
func Interval(v float64) (lower, upper float64) {
	d := v * Uncertainty
	return synthetic.Round1(v - d), synthetic.Round1(v + d)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
