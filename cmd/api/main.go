// Package main provides the entrypoint for the GreenPulse forecast API.
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

	"github.com/greenpulse/greenpulse/internal/api"
	"github.com/greenpulse/greenpulse/internal/api/middleware"
	"github.com/greenpulse/greenpulse/internal/config"
	"github.com/greenpulse/greenpulse/internal/forecast"
	"github.com/greenpulse/greenpulse/internal/observability"
	"github.com/greenpulse/greenpulse/internal/provider/resilience"
	"github.com/greenpulse/greenpulse/internal/station"
	"github.com/greenpulse/greenpulse/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "greenpulse-api"

	if err := config.LoadDotEnv(); err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.FromEnv("8000")
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
		Msg("starting GreenPulse forecast API")

	ctx := context.Background()

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

	registry := station.Default()
	if cfg.StationRegistryPath != "" {
		registry, err = station.LoadRegistry(cfg.StationRegistryPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.StationRegistryPath).Msg("failed to load station registry")
		}
	}
	promMetrics.StationsLoaded.Set(float64(registry.Len()))
	log.Info().Int("stations", registry.Len()).Msg("station registry loaded")

	names, err := forecast.LoadFeatureNames(cfg.FeatureNamesPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.FeatureNamesPath).Msg("failed to load feature names")
	}
	log.Info().Int("features", len(names)).Msg("feature schema loaded")

	invokerCfg := forecast.InvokerConfig{
		FeatureNames: names,
		Serialize:    cfg.ModelSerialize,
		Observer:     promMetrics,
		Logger:       log,
	}

	if cfg.ModelURL != "" {
		remote := forecast.NewRemoteModel(forecast.RemoteModelConfig{
			BaseURL: cfg.ModelURL,
			HTTPClient: resilience.NewClient(resilience.ClientConfig{
				Name:    forecast.RemoteProviderName,
				Timeout: cfg.ModelTimeout,
			}),
			Logger: log,
		})

		readyCtx, cancel := context.WithTimeout(ctx, cfg.ModelReadyTimeout)
		err = resilience.WaitReady(readyCtx, &http.Client{Timeout: 2 * time.Second}, remote.ReadyURL(), resilience.ReadyConfig{
			MaxElapsed: cfg.ModelReadyTimeout,
			Logger:     log,
		})
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.ModelURL).Msg("model sidecar not ready")
		}
		invokerCfg.Model = remote
		log.Info().Str("url", cfg.ModelURL).Msg("using model sidecar")
	} else {
		linear, err := forecast.LoadLinearModel(cfg.ModelPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ModelPath).Msg("failed to load model")
		}
		if err := linear.CheckSchema(names); err != nil {
			log.Fatal().Err(err).Msg("model was trained on a different schema")
		}
		invokerCfg.Model = linear
		invokerCfg.Explainer = linear
		log.Info().Str("path", cfg.ModelPath).Msg("using linear model")
	}

	router := api.NewForecastRouter(api.ForecastRouterConfig{
		CommonConfig: api.CommonConfig{
			ServiceName:    serviceName,
			Logger:         log,
			Metrics:        httpMetrics,
			MetricsHandler: promMetrics.Handler(),
			CORSOrigins:    cfg.CORSOrigins,
			RateLimit:      cfg.RateLimit,
			RequireTLS:     cfg.RequireTLS,
		},
		Predictor:    forecast.NewInvoker(invokerCfg),
		Registry:     registry,
		FeatureNames: names,
		Clock:        clockwork.NewRealClock(),
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
