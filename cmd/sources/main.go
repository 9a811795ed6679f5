// Package main provides the entrypoint for the GreenPulse sources API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/greenpulse/greenpulse/internal/airquality"
	airowm "github.com/greenpulse/greenpulse/internal/airquality/openweathermap"
	"github.com/greenpulse/greenpulse/internal/api"
	"github.com/greenpulse/greenpulse/internal/api/handler"
	"github.com/greenpulse/greenpulse/internal/api/middleware"
	"github.com/greenpulse/greenpulse/internal/attribution"
	"github.com/greenpulse/greenpulse/internal/config"
	"github.com/greenpulse/greenpulse/internal/observability"
	"github.com/greenpulse/greenpulse/internal/outlook"
	"github.com/greenpulse/greenpulse/internal/provider/resilience"
	"github.com/greenpulse/greenpulse/internal/station"
	"github.com/greenpulse/greenpulse/internal/telemetry"
	"github.com/greenpulse/greenpulse/internal/weather"
	"github.com/greenpulse/greenpulse/internal/weather/openmeteo"
	"github.com/greenpulse/greenpulse/internal/weather/openweathermap"
	"github.com/greenpulse/greenpulse/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "greenpulse-sources"

	if err := config.LoadDotEnv(); err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.FromEnv("8001")
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("invalid configuration")
	}

	log := zerolog.New(os.Stdout).
		Level(cfg.LogLevel).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Env).
		Msg("starting GreenPulse sources API")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	promMetrics := observability.NewMetrics()

	clock := clockwork.NewRealClock()
	providers := resilience.NewRegistryWithClock(clock)

	upstreamClient := func(name string) *resilience.Client {
		c := resilience.DefaultClientConfig(name)
		c.Timeout = cfg.UpstreamTimeout
		c.Registry = providers
		return resilience.NewClient(c)
	}

	aqCfg := airquality.ServiceConfig{
		Logger:    log,
		Clock:     clock,
		Fallbacks: promMetrics,
	}
	var wxProviders []weather.Provider
	if cfg.OpenWeatherAPIKey != "" {
		aqCfg.Provider = airowm.NewClient(airowm.ClientConfig{
			APIKey:     cfg.OpenWeatherAPIKey,
			HTTPClient: upstreamClient(airowm.ProviderName),
			Clock:      clock,
			Logger:     log,
		})
		wxProviders = append(wxProviders, openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey:     cfg.OpenWeatherAPIKey,
			HTTPClient: upstreamClient(openweathermap.ProviderName),
			Clock:      clock,
			Logger:     log,
		}))
	} else {
		log.Warn().Msg("OPENWEATHER_API_KEY not set - pollutants will be synthetic")
	}
	if cfg.OpenMeteoEnabled {
		wxProviders = append(wxProviders, openmeteo.NewClient(openmeteo.ClientConfig{
			HTTPClient: upstreamClient(openmeteo.ProviderName),
			Clock:      clock,
			Logger:     log,
		}))
	}

	pollutants := airquality.NewService(aqCfg)
	weatherService := weather.NewService(weather.ServiceConfig{
		Providers: wxProviders,
		Logger:    log,
		Clock:     clock,
		Fallbacks: promMetrics,
	})
	log.Info().
		Bool("pollutants_live", pollutants.Configured()).
		Strs("weather_providers", weatherService.ProviderNames()).
		Msg("upstream services initialized")

	registry := station.Default()
	if cfg.StationRegistryPath != "" {
		registry, err = station.LoadRegistry(cfg.StationRegistryPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.StationRegistryPath).Msg("failed to load station registry")
		}
	}
	locator := station.NewLocator(registry, station.DelhiPositions())

	if cfg.WarmInterval > 0 {
		warmCfg := worker.DefaultWarmConfig()
		warmCfg.Interval = cfg.WarmInterval
		job := worker.NewWarmJob(worker.WarmJobConfig{
			Config:     warmCfg,
			Logger:     log,
			Clock:      clock,
			Pollutants: pollutants,
			Weather:    weatherService,
		})
		go job.Start(ctx)
		log.Info().Dur("interval", cfg.WarmInterval).Msg("cache warm job started")
	}

	router := api.NewSourcesRouter(api.SourcesRouterConfig{
		CommonConfig: api.CommonConfig{
			ServiceName:    serviceName,
			Logger:         log,
			Metrics:        httpMetrics,
			MetricsHandler: promMetrics.Handler(),
			CORSOrigins:    cfg.CORSOrigins,
			RateLimit:      cfg.RateLimit,
			RequireTLS:     cfg.RequireTLS,
		},
		Handler: handler.SourcesHandlerConfig{
			Attributor: attribution.NewEngine(attribution.EngineConfig{
				Pollutants: pollutants,
				Weather:    weatherService,
				Locator:    locator,
				Clock:      clock,
				Logger:     log,
			}),
			Forecaster: outlook.NewForecaster(outlook.ForecasterConfig{
				Pollutants:     pollutants,
				Weather:        weatherService,
				Locator:        locator,
				Clock:          clock,
				Logger:         log,
				Concurrency:    cfg.BatchConcurrency,
				MaxBatch:       cfg.MaxBatch,
				StationTimeout: 2 * cfg.UpstreamTimeout,
			}),
			Providers: providers,
			Batch:     promMetrics,
			Version:   Version,
			Clock:     clock,
		},
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
