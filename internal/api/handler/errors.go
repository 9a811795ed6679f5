package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/greenpulse/greenpulse/internal/api/models"
	"github.com/greenpulse/greenpulse/internal/api/response"
	"github.com/greenpulse/greenpulse/internal/attribution"
	"github.com/greenpulse/greenpulse/internal/forecast"
	"github.com/greenpulse/greenpulse/internal/outlook"
	"github.com/greenpulse/greenpulse/internal/station"
)

// writeError maps domain errors onto problem responses. Validation errors
// become 400s with field errors; model failures are 400 or 500 depending on
// whether the model rejected the input; anything else is a 500 carrying the
// error message.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	if fields, ok := fieldErrors(err); ok {
		response.BadRequest(w, r, err.Error(), fields)
		return
	}

	var invocation *forecast.InvocationError
	if errors.As(err, &invocation) {
		rejected := errors.Is(err, forecast.ErrModelRejectedInput)
		if !rejected {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("model invocation failed")
		}
		response.ModelError(w, r, err.Error(), rejected)
		return
	}

	log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	response.InternalError(w, r, err.Error())
}

func fieldErrors(err error) ([]models.FieldError, bool) {
	var missing *forecast.MissingFeaturesError
	if errors.As(err, &missing) {
		fields := make([]models.FieldError, 0, len(missing.Names))
		for _, name := range missing.Names {
			fields = append(fields, models.FieldError{
				Field:   "data." + name,
				Message: "is required",
				Code:    models.CodeRequired,
			})
		}
		return fields, true
	}

	var invalid *forecast.InvalidFeatureError
	if errors.As(err, &invalid) {
		return []models.FieldError{{
			Field:   "data." + invalid.Name,
			Message: "must be numeric",
			Code:    models.CodeInvalid,
		}}, true
	}

	switch {
	case errors.Is(err, forecast.ErrMissingStationCode):
		return []models.FieldError{{Field: "data." + forecast.StationCodeFeature, Message: "is required", Code: models.CodeRequired}}, true
	case errors.Is(err, forecast.ErrNoCodes):
		return []models.FieldError{{Field: "station_name", Message: "station has no training codes", Code: models.CodeNoCodes}}, true
	case errors.Is(err, station.ErrStationNotFound):
		return []models.FieldError{{Field: "station_name", Message: "does not match any station", Code: models.CodeNotFound}}, true
	case errors.Is(err, attribution.ErrEmptyStation), errors.Is(err, outlook.ErrEmptyStation):
		return []models.FieldError{{Field: "station_name", Message: "is required", Code: models.CodeRequired}}, true
	case errors.Is(err, outlook.ErrTooManyStations):
		return []models.FieldError{{Field: "stations", Message: err.Error(), Code: models.CodeTooMany}}, true
	}

	return nil, false
}
