// Package handler provides the HTTP handlers of the forecast and sources APIs.
package handler

import (
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/greenpulse/greenpulse/internal/api/models"
	"github.com/greenpulse/greenpulse/internal/api/response"
)

// OpsHandler handles operational endpoints of the forecast API.
type OpsHandler struct {
	stations int
	features int
	clock    clockwork.Clock
}

// NewOpsHandler creates a new OpsHandler reporting the loaded artifact sizes.
func NewOpsHandler(stations, features int, clock clockwork.Clock) *OpsHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &OpsHandler{stations: stations, features: features, clock: clock}
}

// HealthCheck handles GET /health.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:   models.HealthStatusHealthy,
		Time:     h.clock.Now().UTC(),
		Stations: h.stations,
		Features: h.features,
	})
}
