package resources

import (
	"net/http"

	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/monitoring"
	nuts "github.com/vaudience/go-nuts"
)

// WelcomeMessage is the body of GET /
const WelcomeMessage = "Welcome to the sensor bridge!"

// SystemHandlers serves the welcome page, health and metrics
type SystemHandlers struct {
	monitoring *monitoring.Service
}

// Welcome answers GET / with plain text
func (h *SystemHandlers) Welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(WelcomeMessage))
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *SystemHandlers) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": nuts.GetVersion(),
	})
}

// @Summary Event counters
// @Tags system
// @Produce json
// @Success 200 {object} monitoring.Snapshot
// @Router /metrics [get]
func (h *SystemHandlers) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.monitoring == nil {
		respondWithJSON(w, http.StatusOK, monitoring.Snapshot{})
		return
	}
	respondWithJSON(w, http.StatusOK, h.monitoring.Snapshot())
}
