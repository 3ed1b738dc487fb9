package service

import (
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/database"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/errors"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Event names emitted by the service
const (
	EventReadingSaved        = "reading.saved"
	EventReadingFailed       = "reading.failed"
	EventReadingsListed      = "readings.listed"
	EventReadingsListFailed  = "readings.list_failed"
	EventFallbackAppended    = "fallback.appended"
	EventFallbackFailed      = "fallback.failed"
	EventConnectionChecked   = "connection.checked"
	EventConnectionCheckFail = "connection.failed"
)

// Service contains all repositories and service-wide dependencies
type Service struct {
	readings    repository.SensorReadingRepository
	fallback    repository.FallbackRepository
	connections database.ConnectionProvider
	events      *nuts.EventEmitter
}

// New creates a new service instance
func New(
	readings repository.SensorReadingRepository,
	fallback repository.FallbackRepository,
	connections database.ConnectionProvider,
) *Service {
	return &Service{
		readings:    readings,
		fallback:    fallback,
		connections: connections,
		events:      nuts.NewEventEmitter(),
	}
}

// Validate checks if all required repositories are initialized
func (s *Service) Validate() error {
	if s.readings == nil {
		return ErrMissingRepository("readings")
	}
	if s.fallback == nil {
		return ErrMissingRepository("fallback")
	}
	if s.connections == nil {
		return ErrMissingRepository("connections")
	}
	return nil
}

// OnEvent registers a callback for service events
func (s *Service) OnEvent(event string, handler func(labels map[string]string)) error {
	if _, err := s.events.On(event, nuts.NID("evh", 8), handler); err != nil {
		return errors.NewInternalError("failed to register handler for "+event, err)
	}
	return nil
}

func (s *Service) emit(event string, result repository.Result) {
	labels := map[string]string{}
	if !result.Success {
		labels["kind"] = string(result.Kind)
	}
	if err := s.events.Emit(event, labels); err != nil {
		nuts.L.Warnf("[Service] Failed to emit %s: %v", event, err)
	}
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}
