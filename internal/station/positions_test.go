package station_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpulse/greenpulse/internal/station"
)

func TestDelhiPositions_CoverRegistry(t *testing.T) {
	positions := station.DelhiPositions()

	for _, e := range station.Default().Entries() {
		p, ok := positions[e.CanonicalName]
		require.True(t, ok, e.CanonicalName)
		assert.InDelta(t, 28.6, p.Lat, 0.4, e.CanonicalName)
		assert.InDelta(t, 77.15, p.Lon, 0.3, e.CanonicalName)
	}
}

func TestLocator_Locate(t *testing.T) {
	locator := station.DefaultLocator()

	tests := []struct {
		input   string
		monitor string
		want    station.Position
	}{
		{"Anand Vihar", "Anand Vihar", station.Position{Lat: 28.6469, Lon: 77.3164}},
		{"ashok vihar", "Ashok Vihar", station.Position{Lat: 28.6952, Lon: 77.1818}},
		{"Ashok_Vihar_Delhi_DPCC", "Ashok Vihar", station.Position{Lat: 28.6952, Lon: 77.1818}},
		{"Sonia Vihar", "Sonia Vihar", station.Position{Lat: 28.7105, Lon: 77.2495}},
		{"Vivek Vihar", "Vivek Vihar", station.Position{Lat: 28.6723, Lon: 77.3152}},
		{"CRRI Mathura Road", "CRRI Mathura Road", station.Position{Lat: 28.5512, Lon: 77.2736}},
		{"DrKSS_Delhi_DPCC", "Dr. Karni Singh Shooting Range", station.Position{Lat: 28.4986, Lon: 77.2648}},
		{"DTU, Delhi - CPCB", "DTU", station.Position{Lat: 28.7501, Lon: 77.1113}},
		{"Anand Vihar (301), Delhi", "Anand Vihar (301)", station.Position{Lat: 28.6469, Lon: 77.3164}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, p, ok := locator.Locate(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.monitor, e.CanonicalName)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestLocator_ViharStationsAreDistinct(t *testing.T) {
	locator := station.DefaultLocator()

	_, anand, ok := locator.Locate("Anand Vihar")
	require.True(t, ok)

	for _, name := range []string{"Ashok Vihar", "Sonia Vihar", "Vivek Vihar"} {
		_, p, ok := locator.Locate(name)
		require.True(t, ok, name)
		assert.NotEqual(t, anand, p, name)
	}
}

func TestLocator_RequiresWordBoundaries(t *testing.T) {
	locator := station.DefaultLocator()

	// Resolve finds "ito" inside "monitoring".
	e, err := station.Default().Resolve("Delhi monitoring site")
	require.NoError(t, err)
	require.Equal(t, "ITO", e.CanonicalName)

	_, _, ok := locator.Locate("Delhi monitoring site")
	assert.False(t, ok)

	_, _, ok = locator.Locate("Atlantis")
	assert.False(t, ok)

	_, _, ok = locator.Locate("")
	assert.False(t, ok)
}

func TestLocator_MissingPosition(t *testing.T) {
	reg, err := station.NewRegistry([]station.Entry{
		{CanonicalName: "Pusa", Codes: []int{4}},
		{CanonicalName: "Gurugram Sector 51", Codes: []int{90}},
	})
	require.NoError(t, err)

	locator := station.NewLocator(reg, map[string]station.Position{"PUSA": {Lat: 28.6397, Lon: 77.1460}})

	_, p, ok := locator.Locate("pusa")
	require.True(t, ok)
	assert.Equal(t, 28.6397, p.Lat)

	_, _, ok = locator.Locate("Gurugram Sector 51")
	assert.False(t, ok)
}
