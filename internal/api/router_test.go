package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpulse/greenpulse/internal/api"
	"github.com/greenpulse/greenpulse/internal/api/models"
	"github.com/greenpulse/greenpulse/internal/forecast"
	"github.com/greenpulse/greenpulse/internal/station"
)

var featureNames = []string{"pm25", "no2", "hour", forecast.StationCodeFeature}

// sumPredictor forecasts sum(x) + h for horizon h and attributes each
// feature its own value. It records the station codes it was called with.
type sumPredictor struct {
	mu    sync.Mutex
	codes []float64
	err   error
}

func (p *sumPredictor) Predict(_ context.Context, vec forecast.FeatureVector) (forecast.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return forecast.Result{}, p.err
	}

	var res forecast.Result
	sum := 0.0
	for i, name := range vec.Names {
		sum += vec.Values[i]
		if name == forecast.StationCodeFeature {
			p.codes = append(p.codes, vec.Values[i])
		}
	}
	for h := range res.Forecast {
		res.Forecast[h] = sum + float64(h)
		res.Contributions[h] = forecast.ContributionMap{
			Names:  vec.Names,
			Values: append([]float64(nil), vec.Values...),
		}
	}
	return res, nil
}

func newForecastRouter(p forecast.Predictor) http.Handler {
	return api.NewForecastRouter(api.ForecastRouterConfig{
		CommonConfig: api.CommonConfig{
			Logger:    zerolog.Nop(),
			RateLimit: 1000,
		},
		Predictor:    p,
		Registry:     station.Default(),
		FeatureNames: featureNames,
		Clock:        clockwork.NewFakeClockAt(time.Date(2024, 11, 5, 3, 0, 0, 0, time.UTC)),
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestForecastRouter_Health(t *testing.T) {
	rec := do(t, newForecastRouter(&sumPredictor{}), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body models.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.HealthStatusHealthy, body.Status)
	assert.Equal(t, station.Default().Len(), body.Stations)
	assert.Equal(t, len(featureNames), body.Features)
}

func TestForecastRouter_Features(t *testing.T) {
	rec := do(t, newForecastRouter(&sumPredictor{}), http.MethodGet, "/features", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"features":["pm25","no2","hour","station_code"]}`, rec.Body.String())
}

func TestForecastRouter_Stations(t *testing.T) {
	rec := do(t, newForecastRouter(&sumPredictor{}), http.MethodGet, "/stations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.StationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	entries := station.Default().Entries()
	require.Len(t, body.Stations, len(entries))
	for i, e := range entries {
		assert.Equal(t, e.CanonicalName, body.Stations[i].Name)
		assert.Equal(t, e.Codes, body.Stations[i].Codes)
	}
}

func TestForecastRouter_Predict(t *testing.T) {
	p := &sumPredictor{}
	rec := do(t, newForecastRouter(p), http.MethodPost, "/predict", map[string]any{
		"data": map[string]any{"pm25": 100, "no2": "40", "hour": 8, "station_code": 10},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.JSONEq(t, `{
		"forecast": {"24h": 158, "48h": 159, "72h": 160},
		"contribution": {
			"24h": {"pm25": 100, "no2": 40, "hour": 8, "station_code": 10},
			"48h": {"pm25": 100, "no2": 40, "hour": 8, "station_code": 10},
			"72h": {"pm25": 100, "no2": 40, "hour": 8, "station_code": 10}
		}
	}`, rec.Body.String())
}

func TestForecastRouter_PredictContributionKeyOrder(t *testing.T) {
	rec := do(t, newForecastRouter(&sumPredictor{}), http.MethodPost, "/predict", map[string]any{
		"data": map[string]any{"station_code": 1, "hour": 2, "no2": 3, "pm25": 4},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Body.String(), `"24h":{"pm25":4,"no2":3,"hour":2,"station_code":1}`)
}

func TestForecastRouter_PredictValidation(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		fields []string
	}{
		{
			name:   "missing data",
			body:   map[string]any{},
			fields: []string{"data"},
		},
		{
			name:   "missing features listed in order",
			body:   map[string]any{"data": map[string]any{"no2": 1}},
			fields: []string{"data.pm25", "data.hour", "data.station_code"},
		},
		{
			name:   "missing station code",
			body:   map[string]any{"data": map[string]any{"pm25": 1, "no2": 1, "hour": 1}},
			fields: []string{"data.station_code"},
		},
		{
			name:   "non-numeric feature",
			body:   map[string]any{"data": map[string]any{"pm25": "high", "no2": 1, "hour": 1, "station_code": 1}},
			fields: []string{"data.pm25"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &sumPredictor{}
			rec := do(t, newForecastRouter(p), http.MethodPost, "/predict", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, models.ProblemTypeValidation, problem.Type)

			var fields []string
			for _, fe := range problem.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.fields, fields)
			assert.Empty(t, p.codes, "model must not be invoked")
		})
	}
}

func TestForecastRouter_PredictMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(`{"data":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newForecastRouter(&sumPredictor{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForecastRouter_PredictRejectsNonJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(`data=1`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	newForecastRouter(&sumPredictor{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestForecastRouter_PredictModelErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "rejected input",
			err:    &forecast.InvocationError{Op: "predict", Err: fmt.Errorf("%w: bad shape", forecast.ErrModelRejectedInput)},
			status: http.StatusBadRequest,
		},
		{
			name:   "model failure",
			err:    &forecast.InvocationError{Op: "explain", Err: errors.New("sidecar crashed")},
			status: http.StatusInternalServerError,
		},
		{
			name:   "unexpected",
			err:    errors.New("disk on fire"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newForecastRouter(&sumPredictor{err: tt.err}), http.MethodPost, "/predict", map[string]any{
				"data": map[string]any{"pm25": 1, "no2": 1, "hour": 1, "station_code": 1},
			})

			assert.Equal(t, tt.status, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Contains(t, problem.Detail, tt.err.Error())
		})
	}
}

func TestForecastRouter_PredictStationAveragesCodes(t *testing.T) {
	p := &sumPredictor{}
	rec := do(t, newForecastRouter(p), http.MethodPost, "/predict_station", map[string]any{
		"station_name": "Pusa, Delhi",
		"data":         map[string]any{"pm25": 100, "no2": 40, "hour": 8, "station_code": 999},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.ElementsMatch(t, []float64{4, 34, 68, 69}, p.codes)

	var body struct {
		Station   string                        `json:"station"`
		CodesUsed []int                         `json:"codes_used"`
		Forecast  map[string]float64            `json:"forecast"`
		Contrib   map[string]map[string]float64 `json:"contribution"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	// mean code is (4+34+68+69)/4 = 43.75
	assert.Equal(t, "Pusa", body.Station)
	assert.Equal(t, []int{4, 34, 68, 69}, body.CodesUsed)
	assert.InDelta(t, 148+43.75, body.Forecast["24h"], 1e-9)
	assert.InDelta(t, 148+43.75+2, body.Forecast["72h"], 1e-9)
	assert.InDelta(t, 43.75, body.Contrib["48h"]["station_code"], 1e-9)
	assert.InDelta(t, 100, body.Contrib["48h"]["pm25"], 1e-9)
}

func TestForecastRouter_PredictStationValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  any
		field string
		code  string
	}{
		{"missing name", map[string]any{"data": map[string]any{"pm25": 1}}, "station_name", models.CodeRequired},
		{"missing data", map[string]any{"station_name": "ITO"}, "data", models.CodeRequired},
		{"unresolved name", map[string]any{"station_name": "Atlantis", "data": map[string]any{"pm25": 1, "no2": 1, "hour": 1}}, "station_name", models.CodeNotFound},
		{"missing feature", map[string]any{"station_name": "ITO", "data": map[string]any{"pm25": 1, "no2": 1}}, "data.hour", models.CodeRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &sumPredictor{}
			rec := do(t, newForecastRouter(p), http.MethodPost, "/predict_station", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			require.NotEmpty(t, problem.Errors)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
			assert.Equal(t, tt.code, problem.Errors[0].Code)
			assert.Empty(t, p.codes)
		})
	}
}

func TestForecastRouter_PredictStationFailsWhole(t *testing.T) {
	p := &sumPredictor{err: &forecast.InvocationError{Op: "predict", Err: errors.New("boom")}}
	rec := do(t, newForecastRouter(p), http.MethodPost, "/predict_station", map[string]any{
		"station_name": "ITO",
		"data":         map[string]any{"pm25": 1, "no2": 1, "hour": 1},
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestForecastRouter_NotFound(t *testing.T) {
	rec := do(t, newForecastRouter(&sumPredictor{}), http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, models.ProblemTypeNotFound, decodeProblem(t, rec).Type)
}

func TestForecastRouter_MethodNotAllowed(t *testing.T) {
	rec := do(t, newForecastRouter(&sumPredictor{}), http.MethodGet, "/predict", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestForecastRouter_MetricsEndpoint(t *testing.T) {
	r := api.NewForecastRouter(api.ForecastRouterConfig{
		CommonConfig: api.CommonConfig{
			Logger: zerolog.Nop(),
			MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("# metrics"))
			}),
		},
		Predictor:    &sumPredictor{},
		Registry:     station.Default(),
		FeatureNames: featureNames,
	})

	rec := do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}

func TestForecastRouter_RateLimitsPredict(t *testing.T) {
	r := api.NewForecastRouter(api.ForecastRouterConfig{
		CommonConfig: api.CommonConfig{Logger: zerolog.Nop(), RateLimit: 2},
		Predictor:    &sumPredictor{},
		Registry:     station.Default(),
		FeatureNames: featureNames,
	})
	body := map[string]any{"data": map[string]any{"pm25": 1, "no2": 1, "hour": 1, "station_code": 1}}

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/predict", body).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/predict", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, r, http.MethodPost, "/predict", body).Code)

	// Read-only endpoints are not limited.
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/features", nil).Code)
}
