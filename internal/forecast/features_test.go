package forecast_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpulse/greenpulse/internal/forecast"
)

var testNames = []string{"pm25", "temp", "station_code"}

func TestBuild_PreservesSchemaOrder(t *testing.T) {
	raw := map[string]any{
		"station_code": 4,
		"temp":         21.5,
		"pm25":         "180.25",
		"extra":        "ignored",
	}

	vec, err := forecast.Build(raw, testNames)
	require.NoError(t, err)
	assert.Equal(t, testNames, vec.Names)
	assert.Equal(t, []float64{180.25, 21.5, 4}, vec.Values)
}

func TestBuild_CollectsAllMissing(t *testing.T) {
	_, err := forecast.Build(map[string]any{"temp": 20.0}, testNames)

	var missing *forecast.MissingFeaturesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"pm25", "station_code"}, missing.Names)
	assert.Contains(t, err.Error(), "pm25, station_code")
	assert.True(t, forecast.IsValidation(err))
}

func TestBuild_ValueTypes(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"float", 1.5, 1.5},
		{"int", 3, 3},
		{"json number", json.Number("7.25"), 7.25},
		{"true", true, 1},
		{"false", false, 0},
		{"numeric string", " 42 ", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec, err := forecast.Build(map[string]any{"x": tt.value}, []string{"x"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, vec.Values[0])
		})
	}
}

func TestBuild_InvalidValue(t *testing.T) {
	for _, v := range []any{"abc", nil, []any{1}, map[string]any{}, "NaN"} {
		_, err := forecast.Build(map[string]any{"x": v}, []string{"x"})

		var invalid *forecast.InvalidFeatureError
		require.ErrorAs(t, err, &invalid, "value %v", v)
		assert.Equal(t, "x", invalid.Name)
		assert.True(t, forecast.IsValidation(err))
	}
}

func TestBuildExcept_SkipsStationCode(t *testing.T) {
	vec, err := forecast.BuildExcept(map[string]any{"pm25": 100, "temp": 20}, testNames, forecast.StationCodeFeature)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 20, 0}, vec.Values)

	_, err = forecast.BuildExcept(map[string]any{"pm25": 100}, testNames, forecast.StationCodeFeature)
	var missing *forecast.MissingFeaturesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"temp"}, missing.Names)
}

func TestLoadFeatureNames(t *testing.T) {
	names, err := forecast.LoadFeatureNames(filepath.Join("..", "..", "testdata", "feature_cols.json"))
	require.NoError(t, err)
	assert.Len(t, names, 13)
	assert.Equal(t, "pm25", names[0])
	assert.Equal(t, forecast.StationCodeFeature, names[len(names)-1])
}

func TestLoadFeatureNames_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]string{
		"empty.json": `[]`,
		"dup.json":   `["a","b","a"]`,
		"bad.json":   `{"a":1}`,
	}
	for file, content := range tests {
		path := filepath.Join(dir, file)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		_, err := forecast.LoadFeatureNames(path)
		assert.Error(t, err, file)
	}

	_, err := forecast.LoadFeatureNames(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
