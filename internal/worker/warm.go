package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/greenpulse/greenpulse/internal/airquality"
	"github.com/greenpulse/greenpulse/internal/weather"
)

// PollutantRefresher fetches live pollutants and caches them.
type PollutantRefresher interface {
	GetPollution(ctx context.Context, lat, lon float64) (*airquality.Reading, error)
}

// WeatherRefresher fetches live weather and caches it.
type WeatherRefresher interface {
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error)
}

// WarmJobConfig holds configuration for creating a WarmJob.
type WarmJobConfig struct {
	Config WarmConfig
	Logger zerolog.Logger
	Clock  clockwork.Clock

	// Services are optional; a nil service is skipped.
	Pollutants PollutantRefresher
	Weather    WeatherRefresher
}

// WarmJob refreshes the upstream caches for a fixed set of targets.
type WarmJob struct {
	config     WarmConfig
	logger     zerolog.Logger
	clock      clockwork.Clock
	pollutants PollutantRefresher
	weather    WeatherRefresher
}

// NewWarmJob creates a new cache warm job.
func NewWarmJob(cfg WarmJobConfig) *WarmJob {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &WarmJob{
		config:     cfg.Config.withDefaults(),
		logger:     cfg.Logger,
		clock:      clock,
		pollutants: cfg.Pollutants,
		weather:    cfg.Weather,
	}
}

// WarmResult summarises one run.
type WarmResult struct {
	StartTime  time.Time
	Duration   time.Duration
	Targets    int
	Successful int
	Failed     int
	Errors     []WarmError
}

// WarmError records a failed refresh.
type WarmError struct {
	Upstream string
	Target   string
	Error    string
}

type targetResult struct {
	errors []WarmError
}

// Run refreshes every target once.
func (j *WarmJob) Run(ctx context.Context) *WarmResult {
	start := j.clock.Now()
	result := &WarmResult{
		StartTime: start,
		Targets:   len(j.config.Targets),
	}

	j.logger.Debug().
		Int("targets", result.Targets).
		Int("concurrency", j.config.Concurrency).
		Msg("starting cache warm job")

	targets := make(chan Target, len(j.config.Targets))
	results := make(chan targetResult, len(j.config.Targets))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.warmWorker(ctx, targets, results)
		}()
	}

	for _, t := range j.config.Targets {
		targets <- t
	}
	close(targets)

	go func() {
		wg.Wait()
		close(results)
	}()

	for tr := range results {
		if len(tr.errors) == 0 {
			result.Successful++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, tr.errors...)
		}
	}

	result.Duration = j.clock.Since(start)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("cache warm job completed")

	return result
}

func (j *WarmJob) warmWorker(ctx context.Context, targets <-chan Target, results chan<- targetResult) {
	for t := range targets {
		select {
		case <-ctx.Done():
			results <- targetResult{errors: []WarmError{{Upstream: "all", Target: t.Name, Error: ctx.Err().Error()}}}
		default:
			results <- j.warmTarget(ctx, t)
		}
	}
}

func (j *WarmJob) warmTarget(ctx context.Context, t Target) targetResult {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	var res targetResult

	if j.pollutants != nil {
		if _, err := j.pollutants.GetPollution(ctx, t.Lat, t.Lon); err != nil {
			res.errors = append(res.errors, WarmError{Upstream: "pollutants", Target: t.Name, Error: err.Error()})
		}
	}

	if j.weather != nil {
		if _, err := j.weather.GetCurrentWeather(ctx, t.Lat, t.Lon); err != nil {
			res.errors = append(res.errors, WarmError{Upstream: "weather", Target: t.Name, Error: err.Error()})
		}
	}

	return res
}

// Start runs the job immediately and then every Interval until ctx is done.
// It blocks, so callers usually run it in a goroutine.
func (j *WarmJob) Start(ctx context.Context) {
	ticker := j.clock.NewTicker(j.config.Interval)
	defer ticker.Stop()

	j.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			j.Run(ctx)
		}
	}
}
