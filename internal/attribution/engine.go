package attribution

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/greenpulse/greenpulse/internal/airquality"
	"github.com/greenpulse/greenpulse/internal/station"
	"github.com/greenpulse/greenpulse/internal/synthetic"
	"github.com/greenpulse/greenpulse/internal/weather"
)

// ErrEmptyStation is returned when no station name is given.
var ErrEmptyStation = errors.New("station name is required")

// Method describes how the split was produced.
const Method = "Rule-based temporal, meteorological and pollutant-ratio analysis"

// Confidence levels by how much of the input was live.
const (
	ConfidenceLive      = 0.85
	ConfidencePartial   = 0.75
	ConfidenceSynthetic = 0.6
)

// PollutantSource returns the current pollutant reading for a station. It
// must always return a reading, synthetic if necessary.
type PollutantSource interface {
	Current(ctx context.Context, stationName string, lat, lon float64) *airquality.Reading
}

// WeatherSource returns the current weather for a station. It must always
// return an observation, synthetic if necessary.
type WeatherSource interface {
	Current(ctx context.Context, stationName string, lat, lon float64) *weather.Observation
}

// StationLocator places a station name at its monitor.
type StationLocator interface {
	Locate(name string) (station.Entry, station.Position, bool)
}

// Position returns where readings for name are fetched and the monitor it
// located, or central Delhi and an empty name when it locates none.
func Position(l StationLocator, name string) (station.Position, string) {
	if e, p, ok := l.Locate(name); ok {
		return p, e.CanonicalName
	}
	return station.CentralDelhi, ""
}

// Metadata explains how a split was reached.
type Metadata struct {
	NO2PM25Ratio  float64   `json:"no2_pm25_ratio"`
	PM10PM25Ratio float64   `json:"pm10_pm25_ratio"`
	Hour          int       `json:"hour"`
	Month         int       `json:"month"`
	Weekday       string    `json:"weekday"`
	Season        string    `json:"season"`
	TimeCategory  string    `json:"time_category"`
	Weekend       bool      `json:"is_weekend"`
	Location      string    `json:"location_profile"`
	LocationMatch MatchKind `json:"location_match"`
	Monitor       string    `json:"monitor_station,omitempty"`
	Rules         []string  `json:"rules_applied"`
	PollutantData string    `json:"pollutant_data_source"`
	WeatherData   string    `json:"weather_data_source"`
	EstimatedAQI  int       `json:"estimated_aqi"`
	ReportedAQI   *float64  `json:"reported_aqi,omitempty"`
	ComputedAt    time.Time `json:"computed_at"`
}

// Attribution is the result of one engine run.
type Attribution struct {
	Station    string
	Sources    Split
	Confidence float64
	Method     string
	Pollutants *airquality.Reading
	Weather    *weather.Observation
	Metadata   Metadata
}

// EngineConfig holds the engine's collaborators.
type EngineConfig struct {
	Pollutants PollutantSource
	Weather    WeatherSource

	// Locator decides where readings are fetched (default: the built-in
	// Delhi registry).
	Locator StationLocator

	// Clock defaults to the wall clock.
	Clock  clockwork.Clock
	Logger zerolog.Logger
}

// Engine runs the attribution cascade for named stations.
type Engine struct {
	pollutants PollutantSource
	weather    WeatherSource
	locator    StationLocator
	clock      clockwork.Clock
	logger     zerolog.Logger
}

// NewEngine creates an attribution engine.
func NewEngine(cfg EngineConfig) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	locator := cfg.Locator
	if locator == nil {
		locator = station.DefaultLocator()
	}
	return &Engine{
		pollutants: cfg.Pollutants,
		weather:    cfg.Weather,
		locator:    locator,
		clock:      clock,
		logger:     cfg.Logger,
	}
}

// Attribute estimates the source split for stationName right now.
// reportedAQI is echoed in the metadata when the caller supplies one.
func (e *Engine) Attribute(ctx context.Context, stationName string, reportedAQI *float64) (*Attribution, error) {
	name := strings.TrimSpace(stationName)
	if name == "" {
		return nil, ErrEmptyStation
	}

	now := e.clock.Now()
	loc, match := LookupLocation(name)
	pos, monitor := Position(e.locator, name)

	reading := e.pollutants.Current(ctx, name, pos.Lat, pos.Lon)
	obs := e.weather.Current(ctx, name, pos.Lat, pos.Lon)

	in := Inputs{
		PM25:        reading.PM25,
		PM10:        reading.PM10,
		NO2:         reading.NO2,
		SO2:         reading.SO2,
		CO:          reading.CO,
		O3:          reading.O3,
		WindSpeed:   obs.WindSpeed,
		Temperature: obs.Temperature,
		Humidity:    obs.Humidity,
		At:          now,
	}

	raw, rules := Cascade(loc.Base, in)
	sources := Finalize(raw)

	local := now.In(synthetic.IST)
	meta := Metadata{
		NO2PM25Ratio:  round2(in.NO2PM25Ratio()),
		PM10PM25Ratio: round2(in.PM10PM25Ratio()),
		Hour:          local.Hour(),
		Month:         int(local.Month()),
		Weekday:       local.Weekday().String(),
		Season:        Season(local.Month()),
		TimeCategory:  TimeCategory(local.Hour()),
		Weekend:       IsWeekend(now),
		Location:      loc.Key,
		LocationMatch: match,
		Monitor:       monitor,
		Rules:         rules,
		PollutantData: reading.Source,
		WeatherData:   obs.Source,
		EstimatedAQI:  reading.AQI(),
		ReportedAQI:   reportedAQI,
		ComputedAt:    now,
	}

	e.logger.Debug().
		Str("station", name).
		Str("location", loc.Key).
		Str("match", string(match)).
		Str("monitor", monitor).
		Strs("rules", rules).
		Msg("attributed sources")

	return &Attribution{
		Station:    name,
		Sources:    sources,
		Confidence: confidence(reading.Live(), obs.Live()),
		Method:     Method,
		Pollutants: reading,
		Weather:    obs,
		Metadata:   meta,
	}, nil
}

func confidence(pollutantsLive, weatherLive bool) float64 {
	switch {
	case pollutantsLive && weatherLive:
		return ConfidenceLive
	case pollutantsLive || weatherLive:
		return ConfidencePartial
	default:
		return ConfidenceSynthetic
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
