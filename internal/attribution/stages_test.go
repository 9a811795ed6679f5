package attribution_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/greenpulse/greenpulse/internal/attribution"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// neutral inputs trigger no pollutant or weather rule.
func neutral(at time.Time) attribution.Inputs {
	return attribution.Inputs{
		PM25: 100, PM10: 150, NO2: 30, SO2: 10, CO: 1000, O3: 40,
		WindSpeed: 3, Temperature: 25, Humidity: 50,
		At: at,
	}
}

func TestPollutantStage(t *testing.T) {
	at := time.Date(2024, 7, 2, 14, 0, 0, 0, ist)

	tests := []struct {
		name      string
		mutate    func(*attribution.Inputs)
		wantDelta attribution.Split
		wantRules []string
	}{
		{
			name:   "neutral",
			mutate: func(*attribution.Inputs) {},
		},
		{
			name:      "high no2 ratio",
			mutate:    func(in *attribution.Inputs) { in.NO2 = 60 },
			wantDelta: attribution.Split{attribution.Traffic: 10},
			wantRules: []string{"no2_pm25_high"},
		},
		{
			name:      "low no2 ratio",
			mutate:    func(in *attribution.Inputs) { in.NO2 = 15 },
			wantDelta: attribution.Split{attribution.Traffic: -5},
			wantRules: []string{"no2_pm25_low"},
		},
		{
			name:      "so2",
			mutate:    func(in *attribution.Inputs) { in.SO2 = 25 },
			wantDelta: attribution.Split{attribution.Traffic: -2, attribution.Industry: 12},
			wantRules: []string{"so2_high"},
		},
		{
			name:      "coarse dust",
			mutate:    func(in *attribution.Inputs) { in.PM10 = 250 },
			wantDelta: attribution.Split{attribution.Construction: 12},
			wantRules: []string{"coarse_dust"},
		},
		{
			name:      "co",
			mutate:    func(in *attribution.Inputs) { in.CO = 2000 },
			wantDelta: attribution.Split{attribution.Traffic: 5, attribution.Agriculture: 3},
			wantRules: []string{"co_high"},
		},
		{
			name: "burning signature",
			mutate: func(in *attribution.Inputs) {
				in.PM25, in.PM10, in.NO2, in.SO2 = 200, 260, 20, 5
			},
			// no2 ratio 0.1 adds traffic -5, total 460 adds the severe rule
			wantDelta: attribution.Split{-10, -5, 3, 25, 0},
			wantRules: []string{"no2_pm25_low", "burning_signature", "particulate_severe"},
		},
		{
			name: "clean air",
			mutate: func(in *attribution.Inputs) {
				in.PM25, in.PM10, in.NO2 = 40, 50, 10
			},
			wantDelta: attribution.Split{attribution.Traffic: 5, attribution.Others: 3},
			wantRules: []string{"particulate_low"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := neutral(at)
			tt.mutate(&in)
			adj := attribution.PollutantStage(in)
			assert.Equal(t, tt.wantDelta, adj.Delta)
			assert.Equal(t, tt.wantRules, adj.Rules)
		})
	}
}

func TestPollutantStage_NoPM25(t *testing.T) {
	in := neutral(time.Now())
	in.PM25 = 0
	adj := attribution.PollutantStage(in)
	assert.Equal(t, attribution.Split{}, adj.Delta)
	assert.Empty(t, adj.Rules)
}

func TestWeatherStage(t *testing.T) {
	in := neutral(time.Now())
	in.WindSpeed, in.Temperature, in.Humidity = 1, 10, 80
	adj := attribution.WeatherStage(in)
	assert.Equal(t, attribution.Split{5, 6, -3, 5, 5}, adj.Delta)
	assert.Equal(t, []string{"wind_stagnant", "cold", "humid"}, adj.Rules)

	in.WindSpeed, in.Temperature, in.Humidity = 7, 38, 20
	adj = attribution.WeatherStage(in)
	assert.Equal(t, attribution.Split{0, 0, 5, 5, 0}, adj.Delta)
	assert.Equal(t, []string{"wind_strong", "hot", "dry"}, adj.Rules)
}

func TestTimeCategory(t *testing.T) {
	want := map[int]string{
		0: attribution.TimeNight, 6: attribution.TimeNight, 7: attribution.TimeRushHour,
		10: attribution.TimeRushHour, 11: attribution.TimeDaytime, 16: attribution.TimeDaytime,
		17: attribution.TimeRushHour, 20: attribution.TimeRushHour, 21: attribution.TimeOffPeak,
		22: attribution.TimeNight, 23: attribution.TimeNight,
	}
	for hour, cat := range want {
		assert.Equal(t, cat, attribution.TimeCategory(hour), "hour %d", hour)
	}
}

func TestTimeOfDayStage_UsesIST(t *testing.T) {
	// 02:30 UTC is 08:00 IST.
	adj := attribution.TimeOfDayStage(neutral(time.Date(2024, 7, 2, 2, 30, 0, 0, time.UTC)))
	assert.Equal(t, []string{attribution.TimeRushHour}, adj.Rules)
	assert.Equal(t, attribution.Split{15, -5, -10, 0, 0}, adj.Delta)
}

func TestSeason(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		var want string
		switch m {
		case time.October, time.November, time.December, time.January, time.February:
			want = attribution.SeasonWinter
		case time.March, time.April, time.May:
			want = attribution.SeasonSummer
		default:
			want = attribution.SeasonMonsoon
		}
		assert.Equal(t, want, attribution.Season(m), m.String())
	}
}

func TestWeekendStage(t *testing.T) {
	saturday := time.Date(2024, 11, 9, 12, 0, 0, 0, ist)
	monday := time.Date(2024, 11, 11, 12, 0, 0, 0, ist)

	adj := attribution.WeekendStage(neutral(saturday))
	assert.Equal(t, attribution.Split{-10, -10, -10, 0, 20}, adj.Delta)

	adj = attribution.WeekendStage(neutral(monday))
	assert.Empty(t, adj.Rules)
}

func TestCascade_AlwaysYieldsValidSplit(t *testing.T) {
	bases := []attribution.Split{attribution.DefaultLocation.Base}
	for _, name := range []string{"okhla", "ito", "alipur", "bawana", "lodhi road"} {
		loc, _ := attribution.LookupLocation(name)
		bases = append(bases, loc.Base)
	}

	pollutants := []attribution.Inputs{
		{PM25: 100, PM10: 150, NO2: 30, SO2: 10, CO: 1000},
		{PM25: 200, PM10: 260, NO2: 20, SO2: 5, CO: 2500},
		{PM25: 40, PM10: 120, NO2: 40, SO2: 25, CO: 600},
		{PM25: 0, PM10: 0},
	}
	weathers := [][3]float64{{1, 10, 80}, {7, 38, 20}, {3, 25, 50}}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, ist)
	for _, base := range bases {
		for _, p := range pollutants {
			for _, w := range weathers {
				for day := 0; day < 365; day += 13 {
					for hour := 0; hour < 24; hour++ {
						in := p
						in.WindSpeed, in.Temperature, in.Humidity = w[0], w[1], w[2]
						in.At = start.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)

						raw, _ := attribution.Cascade(base, in)
						assertValidSplit(t, attribution.Finalize(raw))
					}
				}
			}
		}
	}
}
