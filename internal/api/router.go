// Package api assembles the HTTP routers of the forecast and sources services.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/greenpulse/greenpulse/internal/api/handler"
	"github.com/greenpulse/greenpulse/internal/api/middleware"
	"github.com/greenpulse/greenpulse/internal/api/models"
	"github.com/greenpulse/greenpulse/internal/api/response"
	"github.com/greenpulse/greenpulse/internal/forecast"
	"github.com/greenpulse/greenpulse/internal/station"
)

// CommonConfig holds settings shared by both routers.
type CommonConfig struct {
	ServiceName string
	Logger      zerolog.Logger

	// Metrics records OpenTelemetry HTTP metrics (optional).
	Metrics *middleware.Metrics

	// MetricsHandler serves GET /metrics (optional).
	MetricsHandler http.Handler

	// CORSOrigins lists dashboard origins; empty allows any origin.
	CORSOrigins []string

	// RateLimit is the per-IP limit per minute on POST endpoints; zero disables it.
	RateLimit int

	RequireTLS bool
}

// ForecastRouterConfig holds configuration for the forecast API router.
type ForecastRouterConfig struct {
	CommonConfig

	Predictor    forecast.Predictor
	Registry     *station.Registry
	FeatureNames []string
	Clock        clockwork.Clock
}

// SourcesRouterConfig holds configuration for the sources API router.
type SourcesRouterConfig struct {
	CommonConfig

	Handler handler.SourcesHandlerConfig
}

// NewForecastRouter creates the router of the model-backed forecast API.
func NewForecastRouter(cfg ForecastRouterConfig) *chi.Mux {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "greenpulse-api"
	}
	r := newBaseRouter(cfg.CommonConfig)

	opsHandler := handler.NewOpsHandler(cfg.Registry.Len(), len(cfg.FeatureNames), cfg.Clock)
	forecastHandler := handler.NewForecastHandler(handler.ForecastHandlerConfig{
		Predictor:    cfg.Predictor,
		Registry:     cfg.Registry,
		FeatureNames: cfg.FeatureNames,
		Logger:       cfg.Logger,
	})

	r.Get("/health", opsHandler.HealthCheck)
	r.Get("/features", forecastHandler.Features)
	r.Get("/stations", forecastHandler.Stations)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(middleware.PerMinute(cfg.RateLimit)))
		r.Use(middleware.RequireJSON)
		r.Post("/predict", forecastHandler.Predict)
		r.Post("/predict_station", forecastHandler.PredictStation)
	})

	return r
}

// NewSourcesRouter creates the router of the heuristic sources API.
func NewSourcesRouter(cfg SourcesRouterConfig) *chi.Mux {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "greenpulse-sources"
	}
	r := newBaseRouter(cfg.CommonConfig)

	hcfg := cfg.Handler
	hcfg.Logger = cfg.Logger
	sourcesHandler := handler.NewSourcesHandler(hcfg)

	r.Get("/health", sourcesHandler.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(middleware.PerMinute(cfg.RateLimit)))
		r.Use(middleware.RequireJSON)
		r.Post("/forecast/station", sourcesHandler.ForecastStation)
		r.Post("/sources/station", sourcesHandler.AttributeSources)
		r.Post("/forecast/batch", sourcesHandler.ForecastBatch)
	})

	return r
}

func newBaseRouter(cfg CommonConfig) *chi.Mux {
	r := chi.NewRouter()

	// Order matters: the request ID must exist before tracing and logging.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(cfg.ServiceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		p := models.NewProblem(models.ProblemTypeNotFound, "Method not allowed", http.StatusMethodNotAllowed,
			middleware.GetRequestID(r.Context()))
		p.Detail = r.Method + " is not supported on " + r.URL.Path
		response.Error(w, r, p)
	})

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	return r
}
