package outlook

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/greenpulse/greenpulse/internal/airquality"
	"github.com/greenpulse/greenpulse/internal/attribution"
	"github.com/greenpulse/greenpulse/internal/station"
	"github.com/greenpulse/greenpulse/internal/synthetic"
	"github.com/greenpulse/greenpulse/internal/weather"
)

// ErrEmptyStation is returned when no station name is given.
var ErrEmptyStation = errors.New("station name is required")

// ErrTooManyStations is returned when a batch exceeds the configured limit.
var ErrTooManyStations = errors.New("too many stations in batch")

// ModelType describes the forecaster in API responses.
const ModelType = "Baseline regression with weather and diurnal terms"

// Point is the outlook for one horizon.
type Point struct {
	Hours int
	Value float64
	Lower float64
	Upper float64
}

// Label returns the horizon label, e.g. "24h".
func (p Point) Label() string {
	return strconv.Itoa(p.Hours) + "h"
}

// Outlook is the forecast for one station.
type Outlook struct {
	Station    string
	CurrentAQI float64
	Pollutants *airquality.Reading
	Weather    *weather.Observation
	Points     []Point
	IssuedAt   time.Time
}

// BatchResult is the outcome for one station of a batch. Exactly one of
// Outlook and Err is set.
type BatchResult struct {
	Station string
	Outlook *Outlook
	Err     error
}

// ForecasterConfig holds the forecaster's collaborators and limits.
type ForecasterConfig struct {
	Pollutants attribution.PollutantSource
	Weather    attribution.WeatherSource

	// Locator decides where readings are fetched (default: the built-in
	// Delhi registry).
	Locator attribution.StationLocator

	// Clock defaults to the wall clock.
	Clock  clockwork.Clock
	Logger zerolog.Logger

	// Concurrency bounds parallel stations in a batch (default: 4).
	Concurrency int

	// MaxBatch caps stations per batch (default: 50).
	MaxBatch int

	// StationTimeout bounds the work for a single station (default: 10s).
	StationTimeout time.Duration
}

// Forecaster produces outlooks for named stations.
type Forecaster struct {
	pollutants     attribution.PollutantSource
	weather        attribution.WeatherSource
	locator        attribution.StationLocator
	clock          clockwork.Clock
	logger         zerolog.Logger
	concurrency    int
	maxBatch       int
	stationTimeout time.Duration
}

// NewForecaster creates a forecaster.
func NewForecaster(cfg ForecasterConfig) *Forecaster {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	maxBatch := cfg.MaxBatch
	if maxBatch <= 0 {
		maxBatch = 50
	}

	stationTimeout := cfg.StationTimeout
	if stationTimeout <= 0 {
		stationTimeout = 10 * time.Second
	}

	locator := cfg.Locator
	if locator == nil {
		locator = station.DefaultLocator()
	}

	return &Forecaster{
		pollutants:     cfg.Pollutants,
		weather:        cfg.Weather,
		locator:        locator,
		clock:          clock,
		logger:         cfg.Logger,
		concurrency:    concurrency,
		maxBatch:       maxBatch,
		stationTimeout: stationTimeout,
	}
}

// MaxBatch returns the largest batch the forecaster accepts.
func (f *Forecaster) MaxBatch() int {
	return f.maxBatch
}

// Forecast returns the outlook for one station.
func (f *Forecaster) Forecast(ctx context.Context, stationName string) (*Outlook, error) {
	name := strings.TrimSpace(stationName)
	if name == "" {
		return nil, ErrEmptyStation
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := f.clock.Now()
	pos, _ := attribution.Position(f.locator, name)

	reading := f.pollutants.Current(ctx, name, pos.Lat, pos.Lon)
	obs := f.weather.Current(ctx, name, pos.Lat, pos.Lon)

	current := clamp(float64(reading.AQI()), MinAQI, MaxAQI)
	cond := Conditions{
		Temperature: obs.Temperature,
		Humidity:    obs.Humidity,
		WindSpeed:   obs.WindSpeed,
	}

	points := make([]Point, 0, len(Horizons))
	for _, h := range Horizons {
		jitter := synthetic.NewSource(name, now, "outlook", strconv.Itoa(h)).Between(-10, 10)
		v := synthetic.Round1(Baseline(current, cond, now.Add(time.Duration(h)*time.Hour), jitter))
		lower, upper := Interval(v)
		points = append(points, Point{Hours: h, Value: v, Lower: lower, Upper: upper})
	}

	return &Outlook{
		Station:    name,
		CurrentAQI: current,
		Pollutants: reading,
		Weather:    obs,
		Points:     points,
		IssuedAt:   now,
	}, nil
}

// Batch forecasts every station independently on a bounded pool of workers.
// Results keep the order of stations; a failure for one station never
// affects the others.
func (f *Forecaster) Batch(ctx context.Context, stations []string) ([]BatchResult, error) {
	if len(stations) > f.maxBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyStations, len(stations), f.maxBatch)
	}

	results := make([]BatchResult, len(stations))
	if len(stations) == 0 {
		return results, nil
	}

	f.logger.Debug().
		Int("stations", len(stations)).
		Int("concurrency", f.concurrency).
		Msg("starting batch outlook")

	jobs := make(chan int, len(stations))
	for i := range stations {
		jobs <- i
	}
	close(jobs)

	workers := min(f.concurrency, len(stations))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = f.forecastOne(ctx, stations[i])
			}
		}()
	}
	wg.Wait()

	return results, nil
}

func (f *Forecaster) forecastOne(ctx context.Context, station string) BatchResult {
	stationCtx, cancel := context.WithTimeout(ctx, f.stationTimeout)
	defer cancel()

	out, err := f.Forecast(stationCtx, station)
	if err != nil {
		f.logger.Warn().Err(err).Str("station", station).Msg("batch outlook failed for station")
		return BatchResult{Station: station, Err: err}
	}
	return BatchResult{Station: station, Outlook: out}
}
