// FilePath: internal/repository/repository.go
package repository

import (
	"context"

	apierrors "github.com/itsatony/w4b_v3/server/sensorbridge/internal/errors"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/models"
)

// Result is the outcome of an operation that never returns its error to the caller
// directly. Kind tells failure causes apart.
type Result struct {
	Success bool
	Kind    apierrors.ErrorType
	Err     error
}

// Ok is a successful Result
func Ok() Result {
	return Result{Success: true}
}

// Failed wraps err in an unsuccessful Result
func Failed(err error) Result {
	return Result{Kind: apierrors.KindOf(err), Err: err}
}

// ResultOf is Ok for a nil error and Failed otherwise
func ResultOf(err error) Result {
	if err == nil {
		return Ok()
	}
	return Failed(err)
}

// SensorReadingRepository stores and lists RMS readings
type SensorReadingRepository interface {
	Insert(ctx context.Context, point models.ChartPoint) Result
	ListAll(ctx context.Context) ([]models.SensorReading, Result)
}

// FallbackRepository appends raw JSON payloads to a schema-less store
type FallbackRepository interface {
	Append(ctx context.Context, payload []byte) error
}
