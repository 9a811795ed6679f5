package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/greenpulse/greenpulse/internal/provider/resilience"
)

// RemoteProviderName identifies the inference sidecar in provider health.
const RemoteProviderName = "model-sidecar"

// RemoteModelConfig holds configuration for the inference sidecar adapter.
type RemoteModelConfig struct {
	// BaseURL is the sidecar root, e.g. http://localhost:8500.
	BaseURL string

	// HTTPClient is the resilient client to use (optional).
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

// RemoteModel calls a JSON inference sidecar that hosts the trained model
// and its explainer.
//
//	POST {base}/invoke {"features":[...]}
//	  -> {"forecast":[f24,f48,f72],"contributions":[[...],[...],[...]]}
type RemoteModel struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewRemoteModel creates a sidecar adapter.
func NewRemoteModel(cfg RemoteModelConfig) *RemoteModel {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(RemoteProviderName))
	}
	return &RemoteModel{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// ReadyURL is the sidecar readiness probe.
func (m *RemoteModel) ReadyURL() string {
	return m.baseURL + "/ready"
}

type invokeRequest struct {
	Features []float64 `json:"features"`
}

type invokeResponse struct {
	Forecast      []float64   `json:"forecast"`
	Contributions [][]float64 `json:"contributions"`
	Error         string      `json:"error,omitempty"`
}

// Predict returns only the forecast part of a sidecar call.
func (m *RemoteModel) Predict(ctx context.Context, x []float64) ([3]float64, error) {
	f, _, err := m.PredictExplain(ctx, x)
	return f, err
}

// PredictExplain performs a single sidecar round trip.
func (m *RemoteModel) PredictExplain(ctx context.Context, x []float64) ([3]float64, [3][]float64, error) {
	var forecast [3]float64
	var attrs [3][]float64

	body, err := json.Marshal(invokeRequest{Features: x})
	if err != nil {
		return forecast, attrs, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/invoke", bytes.NewReader(body))
	if err != nil {
		return forecast, attrs, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return forecast, attrs, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		m.logger.Debug().Int("status", resp.StatusCode).Msg("sidecar rejected input")
		return forecast, attrs, fmt.Errorf("%w: %s", ErrModelRejectedInput, strings.TrimSpace(string(msg)))
	}
	if resp.StatusCode != http.StatusOK {
		return forecast, attrs, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var out invokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return forecast, attrs, fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Forecast) != 3 {
		return forecast, attrs, fmt.Errorf("sidecar returned %d forecast values, want 3", len(out.Forecast))
	}
	copy(forecast[:], out.Forecast)

	if len(out.Contributions) != 3 {
		return forecast, attrs, fmt.Errorf("sidecar returned %d contribution sets, want 3", len(out.Contributions))
	}
	copy(attrs[:], out.Contributions)

	return forecast, attrs, nil
}
