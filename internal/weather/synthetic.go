package weather

import (
	"time"

	"github.com/greenpulse/greenpulse/internal/synthetic"
)

// Monthly mean temperature (°C) and relative humidity (%) for Delhi.
var delhiClimate = [12]struct{ temp, hum float64 }{
	{14, 65}, {17, 55}, {23, 45}, {29, 32}, {33, 33}, {33, 48},
	{31, 70}, {30, 75}, {29, 68}, {26, 50}, {20, 55}, {15, 65},
}

// SyntheticObservation returns plausible weather for station on the IST
// calendar day of now, centred on the month's climate normals.
func SyntheticObservation(stationName string, lat, lon float64, now time.Time) *Observation {
	src := synthetic.NewSource(stationName, now, "weather")
	normal := delhiClimate[now.In(synthetic.IST).Month()-1]

	wind := synthetic.Round1(src.Between(0.5, 6))
	return &Observation{
		Lat:         lat,
		Lon:         lon,
		Temperature: synthetic.Round1(normal.temp + src.Between(-4, 4)),
		Humidity:    synthetic.Round1(clamp(normal.hum+src.Between(-12, 12), 10, 100)),
		WindSpeed:   wind,
		Condition:   ConditionHaze,
		Description: "synthetic estimate",
		Source:      SourceSynthetic,
		ObservedAt:  now,
		FetchedAt:   now,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
