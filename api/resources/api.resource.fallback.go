package resources

import (
	"io"
	"net/http"

	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/service"
)

// FallbackHandlers encapsulates the fallback store HTTP handlers
type FallbackHandlers struct {
	service *service.Service
}

// @Summary Append to the fallback store
// @Description Append the raw JSON body as one line to the fallback store
// @Tags fallback
// @Accept json
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 400 {object} StatusResponse
// @Failure 413 {object} StatusResponse
// @Failure 500 {object} StatusResponse
// @Router /write_data_to_json [post]
func (h *FallbackHandlers) WriteDataToJSON(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, bodyError(r, err))
		return
	}

	result := h.service.AppendFallback(r.Context(), payload)
	respondWithResult(w, r, result, "Data written to JSON file successfully", "Failed to write data to JSON file")
}
