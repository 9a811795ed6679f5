package forecast

import (
	"bytes"
	"encoding/json"
)

// Horizons labels the three forecast outputs in model order.
var Horizons = [3]string{"24h", "48h", "72h"}

// ContributionMap maps every feature name to its attribution for one
// horizon. It keeps feature order and encodes as a JSON object in that order.
type ContributionMap struct {
	Names  []string
	Values []float64
}

// Get returns the contribution for name.
func (m ContributionMap) Get(name string) (float64, bool) {
	for i, n := range m.Names {
		if n == name {
			return m.Values[i], true
		}
	}
	return 0, false
}

// MarshalJSON encodes the map as an object with keys in feature order.
func (m ContributionMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.Names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.Values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Result is a three-horizon forecast with per-feature contributions.
type Result struct {
	Forecast      [3]float64
	Contributions [3]ContributionMap
}

// HorizonValues is the JSON shape of a forecast.
type HorizonValues struct {
	H24 float64 `json:"24h"`
	H48 float64 `json:"48h"`
	H72 float64 `json:"72h"`
}

// HorizonContributions is the JSON shape of the per-horizon contributions.
type HorizonContributions struct {
	H24 ContributionMap `json:"24h"`
	H48 ContributionMap `json:"48h"`
	H72 ContributionMap `json:"72h"`
}

// ForecastValues returns the forecast keyed by horizon label.
func (r Result) ForecastValues() HorizonValues {
	return HorizonValues{H24: r.Forecast[0], H48: r.Forecast[1], H72: r.Forecast[2]}
}

// ContributionValues returns the contributions keyed by horizon label.
func (r Result) ContributionValues() HorizonContributions {
	return HorizonContributions{H24: r.Contributions[0], H48: r.Contributions[1], H72: r.Contributions[2]}
}

func zeroResult(names []string) Result {
	var r Result
	for h := range r.Contributions {
		r.Contributions[h] = ContributionMap{Names: names, Values: make([]float64, len(names))}
	}
	return r
}
