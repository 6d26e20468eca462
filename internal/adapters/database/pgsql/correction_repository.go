package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_intake/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_intake/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCorrectionRepository struct {
	BaseRepository
}

func newPgxCorrectionRepository(pool *pgxpool.Pool) portsrepo.CorrectionRepository {
	return &PgxCorrectionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CorrectionRepository = (*PgxCorrectionRepository)(nil)

func (r *PgxCorrectionRepository) SaveCorrection(ctx context.Context, actor domain.Actor, correction domain.Correction, recordedAt time.Time) error {
	m := mapping.ToModelCorrection(actor, correction, recordedAt)
	query := `
		INSERT INTO suggestion_corrections (
			correction_id, org_id, user_id, merchant, description,
			original_category, corrected_category,
			original_debit_account_id, corrected_debit_account_id,
			original_credit_account_id, corrected_credit_account_id,
			user_description, direction, is_business, confidence, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CorrectionID,
		m.OrgID,
		m.UserID,
		m.Merchant,
		m.Description,
		m.OriginalCategory,
		m.CorrectedCategory,
		m.OriginalDebitAccountID,
		m.CorrectedDebitAccountID,
		m.OriginalCreditAccountID,
		m.CorrectedCreditAccountID,
		m.UserDescription,
		m.Direction,
		m.IsBusiness,
		m.Confidence,
		m.RecordedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save correction for "+m.Merchant, err)
	}
	return nil
}
