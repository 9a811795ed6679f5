package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Provider defines the interface for weather data providers.
type Provider interface {
	// GetCurrentWeather fetches current weather for a location.
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error)

	// Name returns the provider name for logging.
	Name() string
}

// FallbackObserver is told each time a synthetic observation replaces a live one.
type FallbackObserver interface {
	ObserveFallback(upstream, reason string)
}

// Fallback reasons.
const (
	ReasonNotConfigured = "not_configured"
	ReasonError         = "error"
)

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Providers are tried in order until one succeeds. Empty means synthetic
	// observations only.
	Providers []Provider

	Logger zerolog.Logger

	// Clock defaults to the wall clock.
	Clock clockwork.Clock

	// CacheTTL is how long to cache weather data (default: 15 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.1).
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 1 hour).
	StaleIfErrorTTL time.Duration

	Fallbacks FallbackObserver
}

// Service provides weather data with caching and synthetic fallback.
type Service struct {
	providers       []Provider
	logger          zerolog.Logger
	clock           clockwork.Clock
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	fallbacks       FallbackObserver

	mu              sync.RWMutex
	cache           map[string]*cachedObservation
	lastCleanup     time.Time
	cleanupInterval time.Duration

	// inflight collapses concurrent fetches for the same grid cell.
	inflight singleflight.Group
}

type cachedObservation struct {
	observation *Observation
	fetchedAt   time.Time
	expiresAt   time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.1 // ~11km
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = time.Hour
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		providers:       cfg.Providers,
		logger:          cfg.Logger,
		clock:           clock,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		fallbacks:       cfg.Fallbacks,
		cache:           make(map[string]*cachedObservation),
		cleanupInterval: 5 * time.Minute,
	}
}

// Configured reports whether any live provider is set.
func (s *Service) Configured() bool {
	return len(s.providers) > 0
}

// ProviderNames lists the live providers in the order they are tried.
func (s *Service) ProviderNames() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// Current returns the weather for a station at lat/lon. Upstream failures
// are logged and replaced by the station's synthetic observation for today.
func (s *Service) Current(ctx context.Context, stationName string, lat, lon float64) *Observation {
	now := s.clock.Now()

	if len(s.providers) == 0 {
		s.observeFallback(ReasonNotConfigured)
		return SyntheticObservation(stationName, lat, lon, now)
	}

	obs, err := s.GetCurrentWeather(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).Str("station", stationName).Msg("using synthetic weather data")
		s.observeFallback(ReasonError)
		return SyntheticObservation(stationName, lat, lon, now)
	}
	return obs
}

// GetCurrentWeather returns live weather for a location, using cached data
// if available and not expired.
func (s *Service) GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if len(s.providers) == 0 {
		return nil, ErrProviderUnavailable
	}

	cacheKey := s.cacheKey(lat, lon)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && s.clock.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.observation, nil
	}
	s.mu.RUnlock()

	return s.fetchWeather(ctx, lat, lon, cacheKey)
}

// fetchWeather tries each provider in turn and updates the cache. Concurrent
// misses for one cell share a single upstream call.
func (s *Service) fetchWeather(ctx context.Context, lat, lon float64, cacheKey string) (*Observation, error) {
	v, err, _ := s.inflight.Do(cacheKey, func() (any, error) {
		return s.refresh(ctx, lat, lon, cacheKey)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Observation), nil
}

// refresh runs the provider chain without holding the cache lock.
func (s *Service) refresh(ctx context.Context, lat, lon float64, cacheKey string) (*Observation, error) {
	now := s.clock.Now()

	s.mu.RLock()
	cached, ok := s.cache[cacheKey]
	s.mu.RUnlock()

	if ok && now.Before(cached.expiresAt) {
		return cached.observation, nil
	}

	var errs []error
	for _, p := range s.providers {
		s.logger.Debug().
			Float64("lat", lat).
			Float64("lon", lon).
			Str("provider", p.Name()).
			Msg("fetching weather from provider")

		obs, err := p.GetCurrentWeather(ctx, lat, lon)
		if err != nil {
			s.logger.Warn().Err(err).Str("provider", p.Name()).Msg("weather provider failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}

		s.mu.Lock()
		s.cache[cacheKey] = &cachedObservation{
			observation: obs,
			fetchedAt:   now,
			expiresAt:   now.Add(s.cacheTTL),
		}
		s.cleanupIfNeeded(now)
		s.mu.Unlock()
		return obs, nil
	}

	if ok && now.Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
		s.logger.Warn().
			Time("fetched_at", cached.fetchedAt).
			Msg("serving stale weather data due to provider error")
		return cached.observation, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, errors.Join(errs...))
}

// cacheKey groups nearby points into grid cells to reduce API calls.
func (s *Service) cacheKey(lat, lon float64) string {
	gridLat := math.Floor(lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.2f:%.2f", gridLat, gridLon)
}

// cleanupIfNeeded removes entries past their stale window. Caller holds the lock.
func (s *Service) cleanupIfNeeded(now time.Time) {
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	s.lastCleanup = now

	expired := 0
	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().Int("expired_entries", expired).Msg("cleaned up expired weather cache entries")
	}
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedObservation)
}

func (s *Service) observeFallback(reason string) {
	if s.fallbacks != nil {
		s.fallbacks.ObserveFallback("weather", reason)
	}
}
