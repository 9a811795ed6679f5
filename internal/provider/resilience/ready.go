package resilience

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// ReadyConfig controls how long WaitReady keeps probing a dependency.
type ReadyConfig struct {
	// InitialInterval is the first wait between probes.
	// Default: 200ms
	InitialInterval time.Duration

	// MaxInterval caps the wait between probes.
	// Default: 5 seconds
	MaxInterval time.Duration

	// MaxElapsed bounds the total wait. Zero means 30 seconds.
	MaxElapsed time.Duration

	Logger zerolog.Logger
}

// WaitReady polls url with GET until it answers 2xx, backing off exponentially
// between attempts. It is meant for startup only; request paths never retry.
func WaitReady(ctx context.Context, httpClient *http.Client, url string, cfg ReadyConfig) error {
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.MaxElapsed == 0 {
		cfg.MaxElapsed = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Second}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.MaxElapsedTime = cfg.MaxElapsed

	attempt := 0
	probe := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			cfg.Logger.Debug().Err(err).Int("attempt", attempt).Str("url", url).Msg("dependency not ready")
			return err
		}
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			cfg.Logger.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Str("url", url).Msg("dependency not ready")
			return fmt.Errorf("readiness probe returned %d", resp.StatusCode)
		}
		return nil
	}

	if err := backoff.Retry(probe, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("waiting for %s: %w", url, err)
	}
	return nil
}
