package airquality

import (
	"time"

	"github.com/greenpulse/greenpulse/internal/synthetic"
)

// SyntheticReading returns plausible Delhi pollutant levels for station on
// the IST calendar day of now. It is stable for the whole day.
func SyntheticReading(stationName string, lat, lon float64, now time.Time) *Reading {
	src := synthetic.NewSource(stationName, now, "pollutants")

	pm25 := src.Between(40, 250)
	return &Reading{
		PM25:       synthetic.Round1(pm25),
		PM10:       synthetic.Round1(pm25 * src.Between(1.2, 2.5)),
		NO2:        synthetic.Round1(src.Between(10, 80)),
		SO2:        synthetic.Round1(src.Between(2, 30)),
		CO:         synthetic.Round1(src.Between(500, 3000)),
		O3:         synthetic.Round1(src.Between(10, 80)),
		Lat:        lat,
		Lon:        lon,
		Source:     SourceSynthetic,
		ObservedAt: now,
		FetchedAt:  now,
	}
}
