package resources

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/models"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/service"
)

// ReadingHandlers encapsulates the RMS reading HTTP handlers
type ReadingHandlers struct {
	service *service.Service
	forms   *schema.Decoder
}

// NewReadingHandlers creates the reading handlers
func NewReadingHandlers(svc *service.Service) *ReadingHandlers {
	forms := schema.NewDecoder()
	forms.IgnoreUnknownKeys(true)
	return &ReadingHandlers{service: svc, forms: forms}
}

// @Summary List readings
// @Description List every stored RMS reading. An empty array is returned when the database cannot be read.
// @Tags readings
// @Produce json
// @Success 200 {array} models.SensorReading
// @Router /view_data [get]
func (h *ReadingHandlers) ViewData(w http.ResponseWriter, r *http.Request) {
	readings, _ := h.service.ListReadings(r.Context())
	respondWithJSON(w, http.StatusOK, readings)
}

// @Summary Save a chart sample
// @Description Store a sample sent by the chart frontend. time is the epoch in milliseconds.
// @Tags readings
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param sample body models.ChartSample true "Sample"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} StatusResponse
// @Failure 413 {object} StatusResponse
// @Failure 500 {object} StatusResponse
// @Router /save_data_from_chart [post]
func (h *ReadingHandlers) SaveDataFromChart(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var sample models.ChartSample
	if err := h.decodeSample(r, &sample); err != nil {
		respondWithError(w, bodyError(r, err))
		return
	}

	result := h.service.SaveChartSample(r.Context(), sample)
	respondWithResult(w, r, result, "Data saved successfully", "Failed to save data")
}

// @Summary Save a chart point
// @Description Store a chart point as is. x is the epoch in milliseconds, y1 and y2 default to 0.
// @Tags readings
// @Accept json
// @Produce json
// @Param point body models.ChartPoint true "Point"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} StatusResponse
// @Failure 413 {object} StatusResponse
// @Failure 500 {object} StatusResponse
// @Router /save_data_to_database [post]
func (h *ReadingHandlers) SaveDataToDatabase(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var point models.ChartPoint
	if err := json.NewDecoder(r.Body).Decode(&point); err != nil {
		respondWithError(w, bodyError(r, err))
		return
	}

	result := h.service.SavePoint(r.Context(), point)
	respondWithResult(w, r, result, "Data saved to database successfully", "Failed to save data to database")
}

func (h *ReadingHandlers) decodeSample(r *http.Request, sample *models.ChartSample) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return err
		}
		return h.forms.Decode(sample, r.PostForm)
	default:
		return json.NewDecoder(r.Body).Decode(sample)
	}
}
