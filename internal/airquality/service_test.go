package airquality_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpulse/greenpulse/internal/airquality"
)

// mockProvider is a test provider that returns configurable data.
type mockProvider struct {
	reading    *airquality.Reading
	err        atomic.Value
	fetchCount atomic.Int32
}

func (m *mockProvider) GetPollution(_ context.Context, lat, lon float64) (*airquality.Reading, error) {
	m.fetchCount.Add(1)
	if err, ok := m.err.Load().(error); ok && err != nil {
		return nil, err
	}
	r := *m.reading
	r.Lat, r.Lon = lat, lon
	return &r, nil
}

func (m *mockProvider) Name() string { return "mock" }

type fallbackCounter struct {
	mu      sync.Mutex
	reasons []string
}

func (f *fallbackCounter) ObserveFallback(upstream, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, upstream+":"+reason)
}

func liveReading() *airquality.Reading {
	return &airquality.Reading{PM25: 180, PM10: 260, NO2: 55, SO2: 12, CO: 1600, O3: 20, Source: "mock"}
}

func newService(p airquality.Provider, clock clockwork.Clock, fb airquality.FallbackObserver) *airquality.Service {
	cfg := airquality.ServiceConfig{
		Logger:    zerolog.New(io.Discard),
		Clock:     clock,
		CacheTTL:  10 * time.Minute,
		Fallbacks: fb,
	}
	if p != nil {
		cfg.Provider = p
	}
	return airquality.NewService(cfg)
}

func TestService_CachesByGridCell(t *testing.T) {
	provider := &mockProvider{reading: liveReading()}
	clock := clockwork.NewFakeClock()
	svc := newService(provider, clock, nil)
	ctx := context.Background()

	r1 := svc.Current(ctx, "ITO", 28.6286, 77.2410)
	assert.True(t, r1.Live())
	assert.Equal(t, 180.0, r1.PM25)

	// Same 0.05° cell.
	_ = svc.Current(ctx, "ITO", 28.6290, 77.2415)
	assert.Equal(t, int32(1), provider.fetchCount.Load())

	// Different cell.
	_ = svc.Current(ctx, "Bawana", 28.7762, 77.0511)
	assert.Equal(t, int32(2), provider.fetchCount.Load())

	clock.Advance(11 * time.Minute)
	_ = svc.Current(ctx, "ITO", 28.6286, 77.2410)
	assert.Equal(t, int32(3), provider.fetchCount.Load())
}

func TestService_StaleOnError(t *testing.T) {
	provider := &mockProvider{reading: liveReading()}
	clock := clockwork.NewFakeClock()
	fb := &fallbackCounter{}
	svc := newService(provider, clock, fb)
	ctx := context.Background()

	_ = svc.Current(ctx, "ITO", 28.6286, 77.2410)

	clock.Advance(15 * time.Minute)
	provider.err.Store(errors.New("timeout"))

	r := svc.Current(ctx, "ITO", 28.6286, 77.2410)
	assert.True(t, r.Live(), "stale live data is preferred over synthetic")
	assert.Empty(t, fb.reasons)

	clock.Advance(time.Hour)
	r = svc.Current(ctx, "ITO", 28.6286, 77.2410)
	assert.False(t, r.Live())
	assert.Equal(t, []string{"pollutants:error"}, fb.reasons)
}

func TestService_SyntheticWhenUnconfigured(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 11, 5, 8, 0, 0, 0, time.UTC))
	fb := &fallbackCounter{}
	svc := newService(nil, clock, fb)

	assert.False(t, svc.Configured())
	assert.Equal(t, airquality.SourceSynthetic, svc.ProviderName())

	r := svc.Current(context.Background(), "Anand Vihar", 28.6469, 77.3164)
	assert.Equal(t, airquality.SourceSynthetic, r.Source)
	assert.Equal(t, []string{"pollutants:not_configured"}, fb.reasons)

	again := svc.Current(context.Background(), "anand vihar", 28.6469, 77.3164)
	assert.Equal(t, r.PM25, again.PM25)
}

func TestService_InvalidCoordinatesFallBack(t *testing.T) {
	provider := &mockProvider{reading: liveReading()}
	svc := newService(provider, clockwork.NewFakeClock(), nil)

	r := svc.Current(context.Background(), "ITO", 123, 77)
	assert.False(t, r.Live())
	assert.Equal(t, int32(0), provider.fetchCount.Load())
}

func TestSyntheticReading_Ranges(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		r := airquality.SyntheticReading("station", 0, 0, day.AddDate(0, 0, i))

		require.GreaterOrEqual(t, r.PM25, 40.0)
		require.LessOrEqual(t, r.PM25, 250.0)
		ratio := r.PM10 / r.PM25
		assert.GreaterOrEqual(t, ratio, 1.19)
		assert.LessOrEqual(t, ratio, 2.51)
		assert.GreaterOrEqual(t, r.NO2, 10.0)
		assert.LessOrEqual(t, r.NO2, 80.0)
		assert.GreaterOrEqual(t, r.SO2, 2.0)
		assert.LessOrEqual(t, r.SO2, 30.0)
		assert.GreaterOrEqual(t, r.CO, 500.0)
		assert.LessOrEqual(t, r.CO, 3000.0)
		assert.GreaterOrEqual(t, r.O3, 10.0)
		assert.LessOrEqual(t, r.O3, 80.0)
	}
}

func TestReading_Ratios(t *testing.T) {
	r := &airquality.Reading{PM25: 100, PM10: 250, NO2: 60}
	assert.InDelta(t, 0.6, r.NO2PM25Ratio(), 1e-9)
	assert.InDelta(t, 2.5, r.PM10PM25Ratio(), 1e-9)

	zero := &airquality.Reading{NO2: 10}
	assert.Equal(t, 0.0, zero.NO2PM25Ratio())
}

func TestService_GetPollution(t *testing.T) {
	ctx := context.Background()

	_, err := newService(nil, clockwork.NewFakeClock(), nil).GetPollution(ctx, 28.6, 77.2)
	assert.ErrorIs(t, err, airquality.ErrProviderUnavailable)

	provider := &mockProvider{reading: liveReading()}
	svc := newService(provider, clockwork.NewFakeClock(), nil)

	_, err = svc.GetPollution(ctx, 28.6, 181)
	assert.ErrorIs(t, err, airquality.ErrInvalidCoordinates)

	r, err := svc.GetPollution(ctx, 28.6, 77.2)
	require.NoError(t, err)
	assert.True(t, r.Live())

	provider.err.Store(errors.New("boom"))
	svc.InvalidateCache()
	_, err = svc.GetPollution(ctx, 28.6, 77.2)
	assert.ErrorIs(t, err, airquality.ErrProviderUnavailable)
}

// gatedProvider holds every call until want calls are in flight at once.
type gatedProvider struct {
	want    int
	arrived chan struct{}
	calls   atomic.Int32
}

func newGatedProvider(want int) *gatedProvider {
	return &gatedProvider{want: want, arrived: make(chan struct{})}
}

func (g *gatedProvider) GetPollution(ctx context.Context, lat, lon float64) (*airquality.Reading, error) {
	if int(g.calls.Add(1)) == g.want {
		close(g.arrived)
	}
	select {
	case <-g.arrived:
	case <-time.After(2 * time.Second):
		return nil, errors.New("calls were not concurrent")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	r := *liveReading()
	r.Lat, r.Lon = lat, lon
	return &r, nil
}

func (g *gatedProvider) Name() string { return "gated" }

func TestService_MissesOnDistinctCellsRunConcurrently(t *testing.T) {
	lats := []float64{28.50, 28.60, 28.70, 28.80}
	provider := newGatedProvider(len(lats))
	svc := newService(provider, clockwork.NewFakeClock(), nil)

	readings := make([]*airquality.Reading, len(lats))
	var wg sync.WaitGroup
	for i, lat := range lats {
		wg.Add(1)
		go func(i int, lat float64) {
			defer wg.Done()
			readings[i] = svc.Current(context.Background(), "Station", lat, 77.2)
		}(i, lat)
	}
	wg.Wait()

	for i, r := range readings {
		require.NotNil(t, r)
		assert.True(t, r.Live(), "reading %d fell back to synthetic", i)
	}
	assert.Equal(t, int32(len(lats)), provider.calls.Load())
}

func TestService_ConcurrentMissesOnOneCellShareAFetch(t *testing.T) {
	provider := &mockProvider{reading: liveReading()}
	svc := newService(provider, clockwork.NewFakeClock(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := svc.GetPollution(context.Background(), 28.61, 77.21)
			assert.NoError(t, err)
			assert.True(t, r.Live())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), provider.fetchCount.Load())
}
