package airquality

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Provider defines the interface for live pollutant providers.
type Provider interface {
	// GetPollution fetches current concentrations near a location.
	GetPollution(ctx context.Context, lat, lon float64) (*Reading, error)

	// Name returns the provider name for logging.
	Name() string
}

// FallbackObserver is told each time a synthetic reading replaces a live one.
type FallbackObserver interface {
	ObserveFallback(upstream, reason string)
}

// Fallback reasons.
const (
	ReasonNotConfigured = "not_configured"
	ReasonError         = "error"
)

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Provider is the live provider. Nil means synthetic readings only.
	Provider Provider

	Logger zerolog.Logger

	// Clock defaults to the wall clock.
	Clock clockwork.Clock

	// CacheTTL is how long a live reading is reused (default: 10 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.05).
	CacheGridSize float64

	// StaleIfErrorTTL allows serving a cached live reading when the provider
	// fails (default: 30 minutes).
	StaleIfErrorTTL time.Duration

	Fallbacks FallbackObserver
}

// Service provides pollutant readings with caching and synthetic fallback.
// It never returns an upstream error to the caller.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	clock           clockwork.Clock
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	fallbacks       FallbackObserver

	mu    sync.RWMutex
	cache map[string]*cachedReading

	// inflight collapses concurrent fetches for the same grid cell.
	inflight singleflight.Group
}

type cachedReading struct {
	reading   *Reading
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.05
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		clock:           clock,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		fallbacks:       cfg.Fallbacks,
		cache:           make(map[string]*cachedReading),
	}
}

// Configured reports whether a live provider is set.
func (s *Service) Configured() bool {
	return s.provider != nil
}

// ProviderName returns the live provider name, or SourceSynthetic.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return SourceSynthetic
	}
	return s.provider.Name()
}

// Current returns the reading for a station at lat/lon. Live data is used
// when available; otherwise the station's synthetic reading for today.
func (s *Service) Current(ctx context.Context, stationName string, lat, lon float64) *Reading {
	now := s.clock.Now()

	if s.provider == nil {
		s.observeFallback(ReasonNotConfigured)
		return SyntheticReading(stationName, lat, lon, now)
	}

	reading, err := s.GetPollution(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("station", stationName).
			Str("provider", s.provider.Name()).
			Msg("using synthetic pollutant data")
		s.observeFallback(ReasonError)
		return SyntheticReading(stationName, lat, lon, now)
	}
	return reading
}

// GetPollution returns live pollutants for lat/lon, from the cache while the
// grid cell is fresh. It never falls back to synthetic data.
func (s *Service) GetPollution(ctx context.Context, lat, lon float64) (*Reading, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	key := s.cacheKey(lat, lon)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && s.clock.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.reading, nil
	}
	s.mu.RUnlock()

	return s.fetch(ctx, lat, lon, key)
}

func (s *Service) fetch(ctx context.Context, lat, lon float64, key string) (*Reading, error) {
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		return s.refresh(ctx, lat, lon, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Reading), nil
}

// refresh calls the provider without holding the cache lock.
func (s *Service) refresh(ctx context.Context, lat, lon float64, key string) (*Reading, error) {
	now := s.clock.Now()

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()

	// Another request may have filled the cell while we waited.
	if ok && now.Before(cached.expiresAt) {
		return cached.reading, nil
	}

	s.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Str("provider", s.provider.Name()).
		Msg("fetching pollutants from provider")

	reading, err := s.provider.GetPollution(ctx, lat, lon)
	if err != nil {
		if ok && now.Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().Err(err).
				Time("fetched_at", cached.fetchedAt).
				Msg("serving stale pollutant data due to provider error")
			return cached.reading, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = &cachedReading{
		reading:   reading,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}
	s.cleanup(now)

	return reading, nil
}

// cleanup drops entries past their stale window. Caller holds the lock.
func (s *Service) cleanup(now time.Time) {
	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
		}
	}
}

// InvalidateCache clears all cached readings.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedReading)
}

func (s *Service) cacheKey(lat, lon float64) string {
	gridLat := math.Floor(lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.4f,%.4f", gridLat, gridLon)
}

func (s *Service) observeFallback(reason string) {
	if s.fallbacks != nil {
		s.fallbacks.ObserveFallback("pollutants", reason)
	}
}
