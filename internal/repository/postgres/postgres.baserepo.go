package postgres

import (
	"context"

	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/database"
	apierrors "github.com/itsatony/w4b_v3/server/sensorbridge/internal/errors"
	"github.com/jmoiron/sqlx"
	nuts "github.com/vaudience/go-nuts"
)

// PostgresBaseRepo runs every operation on its own connection from the provider
type PostgresBaseRepo struct {
	connections database.ConnectionProvider
}

// withHandle acquires a handle, runs fn on it and releases the handle on every path.
func (r *PostgresBaseRepo) withHandle(ctx context.Context, fn func(db *sqlx.DB) error) error {
	handle, err := r.connections.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.connections.Release(handle); err != nil {
			nuts.L.Warnf("[PostgresRepo] %v", err)
		}
	}()
	return fn(handle.GetDB())
}

// withTx is withHandle inside a transaction that is committed when fn succeeds.
func (r *PostgresBaseRepo) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return r.withHandle(ctx, func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return apierrors.NewQueryError("failed to begin transaction", err)
		}
		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				nuts.L.Warnf("[PostgresRepo] Failed to rollback transaction: %v", rbErr)
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			return apierrors.NewQueryError("failed to commit transaction", err)
		}
		return nil
	})
}
