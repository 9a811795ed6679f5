package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// LinearHorizon holds the coefficients for one forecast horizon.
type LinearHorizon struct {
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`
	// Means are the training-set feature means used as the attribution baseline.
	Means []float64 `json:"means"`
}

// LinearModel is a per-horizon linear regression loaded from a JSON artifact.
// For a linear model w·(x-μ) is the exact Shapley attribution, so it serves
// as both Model and Explainer. It is safe for concurrent use.
type LinearModel struct {
	FeatureNames []string         `json:"feature_names"`
	Horizons     [3]LinearHorizon `json:"horizons"`
}

// LoadLinearModel reads and validates a linear model artifact.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding model artifact: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}

	return &m, nil
}

// CheckSchema verifies the artifact was trained on names, when it records them.
func (m *LinearModel) CheckSchema(names []string) error {
	if len(m.Horizons[0].Weights) != len(names) {
		return fmt.Errorf("model has %d weights, schema has %d features", len(m.Horizons[0].Weights), len(names))
	}
	if len(m.FeatureNames) == 0 {
		return nil
	}
	for i, n := range names {
		if m.FeatureNames[i] != n {
			return fmt.Errorf("feature %d is %q in the model, %q in the schema", i, m.FeatureNames[i], n)
		}
	}
	return nil
}

func (m *LinearModel) validate() error {
	n := len(m.Horizons[0].Weights)
	if n == 0 {
		return errors.New("no weights")
	}
	for h, hz := range m.Horizons {
		if len(hz.Weights) != n {
			return fmt.Errorf("horizon %s has %d weights, want %d", Horizons[h], len(hz.Weights), n)
		}
		if hz.Means != nil && len(hz.Means) != n {
			return fmt.Errorf("horizon %s has %d means, want %d", Horizons[h], len(hz.Means), n)
		}
	}
	if len(m.FeatureNames) != 0 && len(m.FeatureNames) != n {
		return fmt.Errorf("%d feature names for %d weights", len(m.FeatureNames), n)
	}
	return nil
}

// Predict returns intercept + Σ wᵢxᵢ for each horizon.
func (m *LinearModel) Predict(_ context.Context, x []float64) ([3]float64, error) {
	var out [3]float64
	if err := m.checkLen(x); err != nil {
		return out, err
	}
	for h, hz := range m.Horizons {
		y := hz.Intercept
		for i, w := range hz.Weights {
			y += w * x[i]
		}
		out[h] = y
	}
	return out, nil
}

// Explain returns wᵢ(xᵢ − μᵢ) for each horizon.
func (m *LinearModel) Explain(_ context.Context, x []float64) ([3][]float64, error) {
	var out [3][]float64
	if err := m.checkLen(x); err != nil {
		return out, err
	}
	for h, hz := range m.Horizons {
		attrs := make([]float64, len(x))
		for i, w := range hz.Weights {
			mean := 0.0
			if hz.Means != nil {
				mean = hz.Means[i]
			}
			attrs[i] = w * (x[i] - mean)
		}
		out[h] = attrs
	}
	return out, nil
}

func (m *LinearModel) checkLen(x []float64) error {
	if len(x) != len(m.Horizons[0].Weights) {
		return fmt.Errorf("%w: got %d features, want %d", ErrModelRejectedInput, len(x), len(m.Horizons[0].Weights))
	}
	return nil
}
