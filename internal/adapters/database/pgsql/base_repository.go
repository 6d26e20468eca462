// Package pgsql is the Postgres adapter for submitted transactions and the
// org's reference data.
package pgsql

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository holds the pool shared by the org-scoped repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// inTx runs fn in one database transaction. fn's error aborts the
// transaction and is returned unchanged; op names the write in begin and
// commit failures.
func (r *BaseRepository) inTx(ctx context.Context, op string, fn func(pgx.Tx) error) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to begin "+op, err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			middleware.GetLoggerFromCtx(ctx).Warn("Rollback failed", slog.String("op", op), slog.String("error", rbErr.Error()))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to commit "+op, err)
	}
	return nil
}
