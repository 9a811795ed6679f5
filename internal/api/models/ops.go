package models

import "time"

// HealthStatus is the coarse state of a service or dependency.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// Health is the liveness body of the forecast API.
type Health struct {
	Status   HealthStatus `json:"status"`
	Time     time.Time    `json:"time"`
	Stations int          `json:"stations"`
	Features int          `json:"features"`
}

// ProviderStatus is the circuit state of one upstream.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	LastSuccessAt *time.Time   `json:"last_success_at,omitempty"`
	LastFailureAt *time.Time   `json:"last_failure_at,omitempty"`
	Message       string       `json:"message,omitempty"`
}

// SourcesHealth is the health body of the sources API.
type SourcesHealth struct {
	Status    HealthStatus      `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Models    map[string]string `json:"models"`
	Version   string            `json:"version"`
	Providers []ProviderStatus  `json:"providers"`
}
