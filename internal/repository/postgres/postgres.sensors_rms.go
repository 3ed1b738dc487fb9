// FilePath: internal/repository/postgres/postgres.sensors_rms.go
package postgres

import (
	"context"

	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/database"
	apierrors "github.com/itsatony/w4b_v3/server/sensorbridge/internal/errors"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/models"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository"
	"github.com/jmoiron/sqlx"
	nuts "github.com/vaudience/go-nuts"
)

const (
	insertReadingQuery = `
		INSERT INTO sensors_rms (time, acc_0_rms, acc_1_rms)
		VALUES (:time, :acc_0_rms, :acc_1_rms)`

	listReadingsQuery = `SELECT time, acc_0_rms, acc_1_rms FROM sensors_rms`
)

type SensorReadingRepo struct {
	PostgresBaseRepo
}

var _ repository.SensorReadingRepository = (*SensorReadingRepo)(nil)

func NewSensorReadingRepository(connections database.ConnectionProvider) *SensorReadingRepo {
	return &SensorReadingRepo{PostgresBaseRepo: PostgresBaseRepo{connections: connections}}
}

// Insert stores one reading derived from the chart point. It never returns an error;
// failures are logged and reported through the Result.
func (r *SensorReadingRepo) Insert(ctx context.Context, point models.ChartPoint) repository.Result {
	if !point.HasTime() {
		err := apierrors.NewValidationError("x is required and must be epoch milliseconds between years 1 and 9999", nil)
		nuts.L.Errorf("[SensorReadingRepo] Failed to save reading: %v", err)
		return repository.Failed(err)
	}
	reading := point.Reading()

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertReadingQuery, reading); err != nil {
			return apierrors.NewQueryError("failed to insert reading", err)
		}
		return nil
	})
	if err != nil {
		nuts.L.Errorf("[SensorReadingRepo] Failed to save reading: %v", err)
		return repository.Failed(err)
	}
	return repository.Ok()
}

// ListAll returns every stored reading in whatever order the database yields them.
// On failure the slice is empty, never nil.
func (r *SensorReadingRepo) ListAll(ctx context.Context) ([]models.SensorReading, repository.Result) {
	readings := []models.SensorReading{}

	err := r.withHandle(ctx, func(db *sqlx.DB) error {
		if err := db.SelectContext(ctx, &readings, listReadingsQuery); err != nil {
			return apierrors.NewQueryError("failed to list readings", err)
		}
		return nil
	})
	if err != nil {
		nuts.L.Errorf("[SensorReadingRepo] Failed to list readings: %v", err)
		return []models.SensorReading{}, repository.Failed(err)
	}
	return readings, repository.Ok()
}
