// Package config loads service configuration from the environment, with
// optional .env files for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds the settings for both services. Fields that only one service
// uses are ignored by the other.
type Config struct {
	Env      string
	Port     string
	LogLevel zerolog.Level

	OTelEnabled     bool
	OTLPEndpoint    string
	OTelSampleRatio float64

	CORSOrigins []string

	// RateLimit is the per-IP request budget per minute on expensive routes.
	RateLimit int

	// RequireTLS rejects requests that did not arrive over HTTPS.
	RequireTLS bool

	// Forecast API.
	FeatureNamesPath    string
	ModelPath           string
	ModelURL            string
	ModelSerialize      bool
	ModelTimeout        time.Duration
	ModelReadyTimeout   time.Duration
	StationRegistryPath string

	// Sources API.
	OpenWeatherAPIKey string
	OpenMeteoEnabled  bool
	UpstreamTimeout   time.Duration
	BatchConcurrency  int
	MaxBatch          int
	WarmInterval      time.Duration
}

// LoadDotEnv reads each existing file into the environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv reads the configuration. defaultPort is used when PORT is unset.
func FromEnv(defaultPort string) (Config, error) {
	var p parser

	cfg := Config{
		Env:             getEnvOrDefault("APP_ENV", "development"),
		Port:            getEnvOrDefault("PORT", defaultPort),
		LogLevel:        p.level("LOG_LEVEL", zerolog.InfoLevel),
		OTelEnabled:     p.bool("OTEL_ENABLED", false),
		OTLPEndpoint:    getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio: p.float("OTEL_SAMPLE_RATIO", 1),
		CORSOrigins:     splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		RateLimit:       p.int("RATE_LIMIT_PER_MINUTE", 120),
		RequireTLS:      p.bool("REQUIRE_TLS", false),

		FeatureNamesPath:    getEnvOrDefault("FEATURE_NAMES_PATH", "artifacts/feature_cols.json"),
		ModelPath:           getEnvOrDefault("MODEL_PATH", "artifacts/linear_model.json"),
		ModelURL:            strings.TrimRight(os.Getenv("MODEL_URL"), "/"),
		ModelSerialize:      p.bool("MODEL_SERIALIZE", false),
		ModelTimeout:        p.duration("MODEL_TIMEOUT", 5*time.Second),
		ModelReadyTimeout:   p.duration("MODEL_READY_TIMEOUT", 30*time.Second),
		StationRegistryPath: os.Getenv("STATION_REGISTRY_PATH"),

		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		OpenMeteoEnabled:  p.bool("OPEN_METEO_ENABLED", true),
		UpstreamTimeout:   p.duration("UPSTREAM_TIMEOUT", 5*time.Second),
		BatchConcurrency:  p.int("BATCH_CONCURRENCY", 4),
		MaxBatch:          p.int("BATCH_MAX_STATIONS", 50),
		WarmInterval:      p.duration("CACHE_WARM_INTERVAL", 0),
	}

	if err := p.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser collects every malformed variable so they are reported together.
type parser struct {
	errs []error
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (p *parser) err() error {
	return errors.Join(p.errs...)
}

func (p *parser) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}

func (p *parser) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		if err == nil {
			err = errors.New("must not be negative")
		}
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return f
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return d
}

func (p *parser) level(key string, def zerolog.Level) zerolog.Level {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(v))
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return lvl
}
