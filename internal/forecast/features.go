// Package forecast builds model inputs from request data, invokes the
// pretrained multi-horizon model and averages results across station codes.
package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// StationCodeFeature is the feature carrying the integer training code.
const StationCodeFeature = "station_code"

// FeatureVector is an ordered set of named values matching the model schema.
type FeatureVector struct {
	Names  []string
	Values []float64
}

// LoadFeatureNames reads the ordered JSON list of feature names the model
// was trained on.
func LoadFeatureNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feature names: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decoding feature names: %w", err)
	}
	if len(names) == 0 {
		return nil, errors.New("feature names list is empty")
	}

	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("duplicate feature name %q", n)
		}
		seen[n] = struct{}{}
	}

	return names, nil
}

// Build assembles a vector from raw in the order given by names. Every
// missing name is collected into a single MissingFeaturesError.
func Build(raw map[string]any, names []string) (FeatureVector, error) {
	return build(raw, names, nil)
}

// BuildExcept is Build with the given names exempt from the completeness
// check. Exempt names absent from raw are left at zero.
func BuildExcept(raw map[string]any, names []string, skip ...string) (FeatureVector, error) {
	exempt := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		exempt[s] = struct{}{}
	}
	return build(raw, names, exempt)
}

func build(raw map[string]any, names []string, exempt map[string]struct{}) (FeatureVector, error) {
	vec := FeatureVector{
		Names:  names,
		Values: make([]float64, len(names)),
	}

	var missing []string
	for i, name := range names {
		v, ok := raw[name]
		if !ok {
			if _, skip := exempt[name]; !skip {
				missing = append(missing, name)
			}
			continue
		}

		f, err := toFloat(v)
		if err != nil {
			return FeatureVector{}, &InvalidFeatureError{Name: name, Value: v}
		}
		vec.Values[i] = f
	}

	if len(missing) > 0 {
		return FeatureVector{}, &MissingFeaturesError{Names: missing}
	}
	return vec, nil
}

func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case bool:
		if x {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}
