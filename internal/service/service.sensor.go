package service

import (
	"context"
	"strings"

	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/errors"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/models"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// SaveChartSample stores a sample sent by the chart frontend. All three fields are required.
func (s *Service) SaveChartSample(ctx context.Context, sample models.ChartSample) repository.Result {
	if missing := sample.MissingFields(); len(missing) > 0 {
		err := errors.NewValidationError("missing or invalid fields: "+strings.Join(missing, ", "), nil).
			WithDetails(map[string][]string{"missing": missing})
		result := repository.Failed(err)
		s.emit(EventReadingFailed, result)
		return result
	}
	return s.SavePoint(ctx, sample.Point())
}

// SavePoint stores a chart point as is
func (s *Service) SavePoint(ctx context.Context, point models.ChartPoint) repository.Result {
	result := s.readings.Insert(ctx, point)
	if result.Success {
		s.emit(EventReadingSaved, result)
	} else {
		s.emit(EventReadingFailed, result)
	}
	return result
}

// ListReadings returns all stored readings, or an empty slice on failure
func (s *Service) ListReadings(ctx context.Context) ([]models.SensorReading, repository.Result) {
	readings, result := s.readings.ListAll(ctx)
	if readings == nil {
		readings = []models.SensorReading{}
	}
	if result.Success {
		s.emit(EventReadingsListed, result)
	} else {
		s.emit(EventReadingsListFailed, result)
	}
	return readings, result
}

// AppendFallback writes the raw payload to the fallback store
func (s *Service) AppendFallback(ctx context.Context, payload []byte) repository.Result {
	err := s.fallback.Append(ctx, payload)
	if err != nil {
		nuts.L.Errorf("[Service] Failed to append fallback payload: %v", err)
	}
	result := repository.ResultOf(err)
	if result.Success {
		s.emit(EventFallbackAppended, result)
	} else {
		s.emit(EventFallbackFailed, result)
	}
	return result
}

// CheckConnection acquires a connection and releases it straight away
func (s *Service) CheckConnection(ctx context.Context) repository.Result {
	handle, err := s.connections.Acquire(ctx)
	if err == nil {
		err = s.connections.Release(handle)
	}
	if err != nil {
		nuts.L.Errorf("[Service] Connection check failed: %v", err)
	}
	result := repository.ResultOf(err)
	if result.Success {
		s.emit(EventConnectionChecked, result)
	} else {
		s.emit(EventConnectionCheckFail, result)
	}
	return result
}
