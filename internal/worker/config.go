// Package worker keeps the upstream caches warm so requests for known Delhi
// locations rarely wait on a live provider call.
package worker

import (
	"time"

	"github.com/greenpulse/greenpulse/internal/station"
)

// Target is a location whose readings are refreshed.
type Target struct {
	Name string
	Lat  float64
	Lon  float64
}

// WarmConfig holds configuration for the cache warm job.
type WarmConfig struct {
	// Targets are the locations to refresh. If empty, uses DefaultTargets.
	Targets []Target

	// Concurrency is the number of concurrent refreshes.
	// Default: 3
	Concurrency int

	// Timeout bounds the refresh of a single target.
	// Default: 10 seconds
	Timeout time.Duration

	// Interval between runs when scheduled with Start.
	// Default: 10 minutes
	Interval time.Duration
}

// DefaultWarmConfig returns the default warm configuration.
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		Targets:     DefaultTargets(),
		Concurrency: 3,
		Timeout:     10 * time.Second,
		Interval:    10 * time.Minute,
	}
}

// DefaultTargets returns one target per distinct monitor position of the
// built-in Delhi registry, in registry order.
func DefaultTargets() []Target {
	positions := station.DelhiPositions()
	seen := make(map[station.Position]bool, len(positions))

	var targets []Target
	for _, e := range station.Default().Entries() {
		p, ok := positions[e.CanonicalName]
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		targets = append(targets, Target{Name: e.CanonicalName, Lat: p.Lat, Lon: p.Lon})
	}
	return targets
}

func (c WarmConfig) withDefaults() WarmConfig {
	def := DefaultWarmConfig()
	if len(c.Targets) == 0 {
		c.Targets = def.Targets
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	return c
}
