package resources

import (
	"net/http"

	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/service"
)

// ConnectionHandlers encapsulates the database connection HTTP handlers
type ConnectionHandlers struct {
	service *service.Service
}

// @Summary Check the database connection
// @Description Open a database connection (through the SSH tunnel when enabled) and close it again
// @Tags connections
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 500 {object} StatusResponse
// @Router /close_database_connection [post]
func (h *ConnectionHandlers) CloseDatabaseConnection(w http.ResponseWriter, r *http.Request) {
	result := h.service.CheckConnection(r.Context())
	respondWithResult(w, r, result, "Database connection closed successfully", "Failed to close database connection")
}
