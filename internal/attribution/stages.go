package attribution

import (
	"time"

	"github.com/greenpulse/greenpulse/internal/synthetic"
)

// Inputs are the observations a cascade run is based on. Concentrations are in
// µg/m³, wind in m/s, temperature in °C and humidity in percent.
type Inputs struct {
	PM25 float64
	PM10 float64
	NO2  float64
	SO2  float64
	CO   float64
	O3   float64

	WindSpeed   float64
	Temperature float64
	Humidity    float64

	// At is converted to IST before any calendar rule is applied.
	At time.Time
}

// NO2PM25Ratio returns NO2/PM2.5, or 0 when PM2.5 is not positive.
func (in Inputs) NO2PM25Ratio() float64 {
	if in.PM25 <= 0 {
		return 0
	}
	return in.NO2 / in.PM25
}

// PM10PM25Ratio returns PM10/PM2.5, or 0 when PM2.5 is not positive.
func (in Inputs) PM10PM25Ratio() float64 {
	if in.PM25 <= 0 {
		return 0
	}
	return in.PM10 / in.PM25
}

// Adjustment is the signed contribution of one stage along with the names of
// the rules that fired.
type Adjustment struct {
	Delta Split
	Rules []string
}

func (a *Adjustment) apply(rule string, deltas map[Category]float64) {
	for c, d := range deltas {
		a.Delta[c] += d
	}
	a.Rules = append(a.Rules, rule)
}

// Stage computes one layer of the cascade. Stages never see each other's
// output, so their order does not change the sum.
type Stage func(Inputs) Adjustment

// Stages are applied after the location base, in this order.
var Stages = []Stage{
	PollutantStage,
	WeatherStage,
	TimeOfDayStage,
	SeasonStage,
	WeekendStage,
}

// PollutantStage looks at pollutant ratios and levels.
func PollutantStage(in Inputs) Adjustment {
	var a Adjustment
	if in.PM25 <= 0 {
		return a
	}

	no2Ratio := in.NO2PM25Ratio()
	coarseRatio := in.PM10PM25Ratio()

	switch {
	case no2Ratio > 0.5:
		a.apply("no2_pm25_high", map[Category]float64{Traffic: 10})
	case no2Ratio < 0.2:
		a.apply("no2_pm25_low", map[Category]float64{Traffic: -5})
	}

	if in.SO2 > 20 {
		a.apply("so2_high", map[Category]float64{Industry: 12, Traffic: -2})
	}

	if coarseRatio > 2.0 {
		a.apply("coarse_dust", map[Category]float64{Construction: 12})
	}

	if in.CO > 1500 {
		a.apply("co_high", map[Category]float64{Traffic: 5, Agriculture: 3})
	}

	if in.PM25 > 120 && in.NO2 < 25 && in.SO2 < 8 && coarseRatio < 1.5 {
		a.apply("burning_signature", map[Category]float64{Agriculture: 20, Traffic: -5, Industry: -5})
	}

	switch total := in.PM25 + in.PM10; {
	case total > 400:
		a.apply("particulate_severe", map[Category]float64{Agriculture: 5, Construction: 3})
	case total < 100:
		a.apply("particulate_low", map[Category]float64{Traffic: 5, Others: 3})
	}

	return a
}

// WeatherStage looks at wind, temperature and humidity.
func WeatherStage(in Inputs) Adjustment {
	var a Adjustment

	switch {
	case in.WindSpeed > 5:
		a.apply("wind_strong", map[Category]float64{Construction: -5, Agriculture: 5})
	case in.WindSpeed < 2:
		a.apply("wind_stagnant", map[Category]float64{Traffic: 5, Industry: 3})
	}

	switch {
	case in.Temperature < 15:
		a.apply("cold", map[Category]float64{Agriculture: 5, Others: 5})
	case in.Temperature > 35:
		a.apply("hot", map[Category]float64{Construction: 5})
	}

	switch {
	case in.Humidity > 70:
		a.apply("humid", map[Category]float64{Industry: 3, Construction: -3})
	case in.Humidity < 30:
		a.apply("dry", map[Category]float64{Construction: 5})
	}

	return a
}

// Time-of-day labels.
const (
	TimeRushHour = "rush_hour"
	TimeNight    = "night"
	TimeDaytime  = "daytime"
	TimeOffPeak  = "off_peak"
)

// TimeCategory classifies an IST hour. Rush hour takes precedence, so the
// construction daytime band effectively starts at 11.
func TimeCategory(hour int) string {
	switch {
	case (hour >= 7 && hour <= 10) || (hour >= 17 && hour <= 20):
		return TimeRushHour
	case hour >= 22 || hour <= 6:
		return TimeNight
	case hour >= 10 && hour <= 16:
		return TimeDaytime
	default:
		return TimeOffPeak
	}
}

// TimeOfDayStage applies the rush hour, night or daytime band.
func TimeOfDayStage(in Inputs) Adjustment {
	var a Adjustment
	switch TimeCategory(in.At.In(synthetic.IST).Hour()) {
	case TimeRushHour:
		a.apply(TimeRushHour, map[Category]float64{Traffic: 15, Industry: -5, Construction: -10})
	case TimeNight:
		a.apply(TimeNight, map[Category]float64{Traffic: -10, Industry: 5, Construction: -15, Agriculture: 20})
	case TimeDaytime:
		a.apply(TimeDaytime, map[Category]float64{Construction: 10, Traffic: -5})
	}
	return a
}

// Season labels.
const (
	SeasonWinter  = "winter"
	SeasonSummer  = "summer"
	SeasonMonsoon = "monsoon"
)

// Season classifies a month. Winter wraps the year end, October to February.
func Season(m time.Month) string {
	switch {
	case m >= time.October || m <= time.February:
		return SeasonWinter
	case m >= time.March && m <= time.May:
		return SeasonSummer
	default:
		return SeasonMonsoon
	}
}

// SeasonStage applies the winter or summer band.
func SeasonStage(in Inputs) Adjustment {
	var a Adjustment
	switch Season(in.At.In(synthetic.IST).Month()) {
	case SeasonWinter:
		a.apply(SeasonWinter, map[Category]float64{Agriculture: 20, Traffic: -5, Industry: -10, Others: -5})
	case SeasonSummer:
		a.apply(SeasonSummer, map[Category]float64{Construction: 10, Others: 5, Agriculture: -10})
	}
	return a
}

// IsWeekend reports whether t falls on a Saturday or Sunday in IST.
func IsWeekend(t time.Time) bool {
	wd := t.In(synthetic.IST).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekendStage shifts weight away from work-week sources.
func WeekendStage(in Inputs) Adjustment {
	var a Adjustment
	if IsWeekend(in.At) {
		a.apply("weekend", map[Category]float64{Construction: -10, Industry: -10, Traffic: -10, Others: 20})
	}
	return a
}

// Cascade runs every stage over base and returns the raw accumulator along
// with the rules that fired, in stage order.
func Cascade(base Split, in Inputs) (Split, []string) {
	acc := base
	var rules []string
	for _, stage := range Stages {
		adj := stage(in)
		acc = acc.Add(adj.Delta)
		rules = append(rules, adj.Rules...)
	}
	return acc, rules
}
