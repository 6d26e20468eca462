package mapping

import (
	"time"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/SscSPs/ledger_intake/internal/models"
	"github.com/google/uuid"
)

// ToModelCorrection converts a domain Correction to its row.
func ToModelCorrection(actor domain.Actor, d domain.Correction, recordedAt time.Time) models.Correction {
	return models.Correction{
		CorrectionID:             uuid.NewString(),
		OrgID:                    actor.OrgID,
		UserID:                   actor.UserID,
		Merchant:                 d.Merchant,
		Description:              d.Description,
		OriginalCategory:         d.OriginalCategory,
		CorrectedCategory:        d.CorrectedCategory,
		OriginalDebitAccountID:   nullableString(d.OriginalDebitAccountID),
		CorrectedDebitAccountID:  nullableString(d.CorrectedDebitAccountID),
		OriginalCreditAccountID:  nullableString(d.OriginalCreditAccountID),
		CorrectedCreditAccountID: nullableString(d.CorrectedCreditAccountID),
		UserDescription:          d.UserDescription,
		Direction:                string(d.Direction),
		IsBusiness:               d.IsBusiness,
		Confidence:               d.Confidence,
		RecordedAt:               recordedAt,
	}
}
