package forecast

import (
	"context"
	"fmt"
)

// Predictor produces a forecast for one feature vector.
type Predictor interface {
	Predict(ctx context.Context, vec FeatureVector) (Result, error)
}

// Averager runs a prediction per training code of a station and averages them.
type Averager struct {
	predictor Predictor
	names     []string
}

// NewAverager creates an averager over predictor using the given schema.
func NewAverager(predictor Predictor, names []string) *Averager {
	return &Averager{predictor: predictor, names: names}
}

// Average predicts once per code, with station_code set on a copy of base,
// and returns the element-wise mean of forecasts and contributions. Any
// failing code fails the whole average.
func (a *Averager) Average(ctx context.Context, base map[string]any, codes []int) (Result, error) {
	if len(codes) == 0 {
		return Result{}, ErrNoCodes
	}

	sum := zeroResult(a.names)

	for _, code := range codes {
		raw := make(map[string]any, len(base)+1)
		for k, v := range base {
			raw[k] = v
		}
		raw[StationCodeFeature] = code

		vec, err := Build(raw, a.names)
		if err != nil {
			return Result{}, err
		}

		res, err := a.predictor.Predict(ctx, vec)
		if err != nil {
			return Result{}, fmt.Errorf("station code %d: %w", code, err)
		}

		for h := range sum.Forecast {
			sum.Forecast[h] += res.Forecast[h]
			for j := range sum.Contributions[h].Values {
				sum.Contributions[h].Values[j] += res.Contributions[h].Values[j]
			}
		}
	}

	n := float64(len(codes))
	for h := range sum.Forecast {
		sum.Forecast[h] /= n
		for j := range sum.Contributions[h].Values {
			sum.Contributions[h].Values[j] /= n
		}
	}

	return sum, nil
}
