package airquality

import "math"

type breakpoint struct {
	cLow, cHigh float64
	iLow, iHigh float64
}

// US EPA PM2.5 (24h) breakpoints in µg/m³.
var pm25Breakpoints = []breakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// PM25ToAQI converts a PM2.5 concentration to the US EPA index. The
// concentration is truncated to 0.1 µg/m³ first, as EPA does, so values
// between published breakpoints land in the lower band. Negative or NaN
// input yields 0; anything above the table yields 500.
func PM25ToAQI(pm25 float64) int {
	if math.IsNaN(pm25) || pm25 <= 0 {
		return 0
	}

	c := math.Floor(pm25*10+1e-9) / 10
	for _, bp := range pm25Breakpoints {
		if c <= bp.cHigh {
			aqi := (bp.iHigh-bp.iLow)/(bp.cHigh-bp.cLow)*(c-bp.cLow) + bp.iLow
			return int(math.Round(aqi))
		}
	}
	return 500
}

// Advice is public-health guidance for an AQI value.
type Advice struct {
	Level   string `json:"level"`
	Color   string `json:"color"`
	Message string `json:"message"`
	Mask    string `json:"mask"`
	// OutdoorIndex scores outdoor suitability from 0 (stay in) to 10.
	OutdoorIndex int `json:"outdoor_index"`
}

// HealthAdvice returns guidance for aqi using the Indian NAQI bands.
func HealthAdvice(aqi float64) Advice {
	switch {
	case aqi <= 50:
		return Advice{"Good", "#22c55e", "Air quality is good. Enjoy outdoor activities.", "Mask not required.", 10}
	case aqi <= 100:
		return Advice{"Satisfactory", "#84cc16", "Generally acceptable. Sensitive groups should be cautious.", "Mask optional for sensitive groups.", 8}
	case aqi <= 200:
		return Advice{"Moderate", "#eab308", "Pollution can affect breathing. Avoid long or intense outdoor exposure.", "Consider a mask during heavy traffic or jogging.", 6}
	case aqi <= 300:
		return Advice{"Poor", "#f97316", "Unhealthy air. Avoid outdoor exercise and prefer indoor activities.", "N95 mask recommended outside.", 3}
	case aqi <= 400:
		return Advice{"Very Poor", "#ef4444", "Very unhealthy. Elderly, kids and heart patients should stay indoors.", "N95 and an air purifier advised.", 1}
	default:
		return Advice{"Severe", "#7f1d1d", "Severe emergency level pollution.", "Avoid going outside unless absolutely necessary.", 0}
	}
}
