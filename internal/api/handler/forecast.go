package handler

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/greenpulse/greenpulse/internal/api/models"
	"github.com/greenpulse/greenpulse/internal/api/response"
	"github.com/greenpulse/greenpulse/internal/forecast"
	"github.com/greenpulse/greenpulse/internal/station"
)

// ForecastHandlerConfig holds the collaborators of the forecast endpoints.
type ForecastHandlerConfig struct {
	Predictor    forecast.Predictor
	Registry     *station.Registry
	FeatureNames []string
	Logger       zerolog.Logger
}

// ForecastHandler serves the model-backed forecast endpoints.
type ForecastHandler struct {
	predictor forecast.Predictor
	averager  *forecast.Averager
	registry  *station.Registry
	names     []string
	logger    zerolog.Logger
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(cfg ForecastHandlerConfig) *ForecastHandler {
	return &ForecastHandler{
		predictor: cfg.Predictor,
		averager:  forecast.NewAverager(cfg.Predictor, cfg.FeatureNames),
		registry:  cfg.Registry,
		names:     cfg.FeatureNames,
		logger:    cfg.Logger,
	}
}

// Features handles GET /features.
func (h *ForecastHandler) Features(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.FeaturesResponse{Features: h.names})
}

// Stations handles GET /stations.
func (h *ForecastHandler) Stations(w http.ResponseWriter, r *http.Request) {
	entries := h.registry.Entries()
	out := models.StationsResponse{Stations: make([]models.StationInfo, 0, len(entries))}
	for _, e := range entries {
		aliases := e.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		out.Stations = append(out.Stations, models.StationInfo{
			Name:    e.CanonicalName,
			Codes:   e.Codes,
			Aliases: aliases,
		})
	}
	response.JSON(w, r, http.StatusOK, out)
}

// Predict handles POST /predict. The body must carry every feature,
// station_code included.
func (h *ForecastHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictRequest
	if !response.DecodeJSON(w, r, &req) {
		return
	}
	if req.Data == nil {
		response.BadRequest(w, r, "data is required", []models.FieldError{
			{Field: "data", Message: "is required", Code: models.CodeRequired},
		})
		return
	}

	vec, err := forecast.Build(req.Data, h.names)
	if err == nil {
		if _, ok := req.Data[forecast.StationCodeFeature]; !ok {
			err = forecast.ErrMissingStationCode
		}
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.predictor.Predict(r.Context(), vec)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.PredictResponse{
		Forecast:     res.ForecastValues(),
		Contribution: res.ContributionValues(),
	})
}

// PredictStation handles POST /predict_station. The name is resolved against
// the registry and the forecast is averaged over all of the station's codes.
// A station_code in the body is ignored.
func (h *ForecastHandler) PredictStation(w http.ResponseWriter, r *http.Request) {
	var req models.PredictStationRequest
	if !response.DecodeJSON(w, r, &req) {
		return
	}

	var fields []models.FieldError
	if strings.TrimSpace(req.StationName) == "" {
		fields = append(fields, models.FieldError{Field: "station_name", Message: "is required", Code: models.CodeRequired})
	}
	if req.Data == nil {
		fields = append(fields, models.FieldError{Field: "data", Message: "is required", Code: models.CodeRequired})
	}
	if len(fields) > 0 {
		response.BadRequest(w, r, "station_name and data are required", fields)
		return
	}

	entry, err := h.registry.Resolve(req.StationName)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	base := make(map[string]any, len(req.Data))
	for k, v := range req.Data {
		if k != forecast.StationCodeFeature {
			base[k] = v
		}
	}

	// Report every missing feature once, before any code is invoked.
	if _, err := forecast.BuildExcept(base, h.names, forecast.StationCodeFeature); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.averager.Average(r.Context(), base, entry.Codes)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Debug().
		Str("query", req.StationName).
		Str("station", entry.CanonicalName).
		Ints("codes", entry.Codes).
		Msg("station forecast averaged")

	response.JSON(w, r, http.StatusOK, models.PredictStationResponse{
		Station:      entry.CanonicalName,
		CodesUsed:    entry.Codes,
		Forecast:     res.ForecastValues(),
		Contribution: res.ContributionValues(),
	})
}
