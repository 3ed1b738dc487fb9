// FilePath: api/resources/resources.go
package resources

import (
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/monitoring"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/service"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Readings    *ReadingHandlers
	Fallback    *FallbackHandlers
	Connections *ConnectionHandlers
	System      *SystemHandlers
}

// NewResources creates a new Resources instance
func NewResources(svc *service.Service, mon *monitoring.Service) *Resources {
	return &Resources{
		Readings:    NewReadingHandlers(svc),
		Fallback:    &FallbackHandlers{service: svc},
		Connections: &ConnectionHandlers{service: svc},
		System:      &SystemHandlers{monitoring: mon},
	}
}
