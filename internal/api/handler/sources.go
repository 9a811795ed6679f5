package handler

import (
	"context"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/greenpulse/greenpulse/internal/airquality"
	"github.com/greenpulse/greenpulse/internal/api/models"
	"github.com/greenpulse/greenpulse/internal/api/response"
	"github.com/greenpulse/greenpulse/internal/attribution"
	"github.com/greenpulse/greenpulse/internal/outlook"
	"github.com/greenpulse/greenpulse/internal/provider/resilience"
)

// Attributor splits a station's pollution across source categories.
type Attributor interface {
	Attribute(ctx context.Context, stationName string, reportedAQI *float64) (*attribution.Attribution, error)
}

// Outlooker produces baseline outlooks for one or many stations.
type Outlooker interface {
	Forecast(ctx context.Context, stationName string) (*outlook.Outlook, error)
	Batch(ctx context.Context, stations []string) ([]outlook.BatchResult, error)
}

// BatchObserver counts per-station batch outcomes.
type BatchObserver interface {
	ObserveBatchStation(ok bool)
}

// outlookFeatures describes the inputs of the baseline forecaster.
const outlookFeatures = "current pollutants, weather, seasonal and diurnal terms"

// SourcesHandlerConfig holds the collaborators of the sources endpoints.
type SourcesHandlerConfig struct {
	Attributor Attributor
	Forecaster Outlooker

	// Providers reports upstream circuit state on /health (optional).
	Providers *resilience.Registry

	// Batch observes per-station batch outcomes (optional).
	Batch BatchObserver

	Version string
	Clock   clockwork.Clock
	Logger  zerolog.Logger
}

// SourcesHandler serves the heuristic attribution and outlook endpoints.
type SourcesHandler struct {
	attributor Attributor
	forecaster Outlooker
	providers  *resilience.Registry
	batch      BatchObserver
	version    string
	clock      clockwork.Clock
	logger     zerolog.Logger
}

// NewSourcesHandler creates a new SourcesHandler.
func NewSourcesHandler(cfg SourcesHandlerConfig) *SourcesHandler {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SourcesHandler{
		attributor: cfg.Attributor,
		forecaster: cfg.Forecaster,
		providers:  cfg.Providers,
		batch:      cfg.Batch,
		version:    cfg.Version,
		clock:      clock,
		logger:     cfg.Logger,
	}
}

// Health handles GET /health. An open upstream circuit degrades the status
// but the endpoint still answers 200, as every upstream has a fallback.
func (h *SourcesHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := models.SourcesHealth{
		Status:    models.HealthStatusHealthy,
		Timestamp: h.clock.Now().UTC(),
		Models: map[string]string{
			"aqi_forecaster":    "baseline",
			"source_attributor": "rule_based",
		},
		Version:   h.version,
		Providers: []models.ProviderStatus{},
	}

	if h.providers != nil {
		for _, ph := range h.providers.GetAllHealth() {
			status := models.HealthStatus(ph.Status())
			if status != models.HealthStatusHealthy {
				body.Status = models.HealthStatusDegraded
			}
			body.Providers = append(body.Providers, models.ProviderStatus{
				Provider:      ph.Name,
				Status:        status,
				LastSuccessAt: ph.LastSuccessAt,
				LastFailureAt: ph.LastFailureAt,
				Message:       ph.LastError,
			})
		}
	}

	response.JSON(w, r, http.StatusOK, body)
}

// ForecastStation handles POST /forecast/station.
func (h *SourcesHandler) ForecastStation(w http.ResponseWriter, r *http.Request) {
	var req models.StationRequest
	if !response.DecodeJSON(w, r, &req) {
		return
	}

	out, err := h.forecaster.Forecast(r.Context(), req.StationName)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp := models.OutlookResponse{
		Success:     true,
		StationName: out.Station,
		Realtime: models.Realtime{
			AQI:        out.CurrentAQI,
			Timestamp:  out.IssuedAt,
			Pollutants: models.NewPollutants(out.Pollutants),
			Weather:    models.NewWeather(out.Weather),
			Advice:     airquality.HealthAdvice(out.CurrentAQI),
		},
		Forecast:            make(map[string]float64, len(out.Points)),
		ConfidenceIntervals: make(map[string]models.Interval, len(out.Points)),
		ModelInfo: models.ModelInfo{
			ModelType: outlook.ModelType,
			Horizons:  outlook.Horizons,
			Features:  outlookFeatures,
		},
	}
	for _, p := range out.Points {
		resp.Forecast[p.Label()] = p.Value
		resp.ConfidenceIntervals[p.Label()] = models.Interval{Lower: p.Lower, Upper: p.Upper}
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// AttributeSources handles POST /sources/station.
func (h *SourcesHandler) AttributeSources(w http.ResponseWriter, r *http.Request) {
	var req models.SourcesRequest
	if !response.DecodeJSON(w, r, &req) {
		return
	}
	if req.CurrentAQI != nil && *req.CurrentAQI < 0 {
		response.BadRequest(w, r, "current_aqi must not be negative", []models.FieldError{
			{Field: "current_aqi", Message: "must not be negative", Code: models.CodeInvalid},
		})
		return
	}

	attr, err := h.attributor.Attribute(r.Context(), req.StationName, req.CurrentAQI)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.SourcesResponse{
		Success:           true,
		StationName:       attr.Station,
		Sources:           attr.Sources,
		Confidence:        attr.Confidence,
		AttributionMethod: attr.Method,
		Pollutants:        models.NewPollutants(attr.Pollutants),
		Weather:           models.NewWeather(attr.Weather),
		Metadata:          attr.Metadata,
	})
}

// ForecastBatch handles POST /forecast/batch. Each station succeeds or fails
// on its own; failures are reported inline and the request still answers 200.
func (h *SourcesHandler) ForecastBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchRequest
	if !response.DecodeJSON(w, r, &req) {
		return
	}
	// An empty array is a valid batch; a missing or null field is not.
	if req.Stations == nil {
		response.BadRequest(w, r, "stations is required", []models.FieldError{
			{Field: "stations", Message: "is required", Code: models.CodeRequired},
		})
		return
	}

	results, err := h.forecaster.Batch(r.Context(), req.Stations)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp := models.BatchResponse{
		Success:   true,
		Results:   make([]models.BatchItem, 0, len(results)),
		Timestamp: h.clock.Now().UTC(),
	}
	for _, res := range results {
		item := models.BatchItem{StationName: res.Station}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			item.Success = true
			current := res.Outlook.CurrentAQI
			item.CurrentAQI = &current
			item.Forecast = make(map[string]float64, len(res.Outlook.Points))
			for _, p := range res.Outlook.Points {
				item.Forecast[p.Label()] = p.Value
			}
		}
		if h.batch != nil {
			h.batch.ObserveBatchStation(item.Success)
		}
		resp.Results = append(resp.Results, item)
	}

	response.JSON(w, r, http.StatusOK, resp)
}
