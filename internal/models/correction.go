package models

import "time"

// Correction is a row of suggestion_corrections.
type Correction struct {
	CorrectionID             string    `db:"correction_id"`
	OrgID                    string    `db:"org_id"`
	UserID                   string    `db:"user_id"`
	Merchant                 string    `db:"merchant"`
	Description              string    `db:"description"`
	OriginalCategory         string    `db:"original_category"`
	CorrectedCategory        string    `db:"corrected_category"`
	OriginalDebitAccountID   *string   `db:"original_debit_account_id"`
	CorrectedDebitAccountID  *string   `db:"corrected_debit_account_id"`
	OriginalCreditAccountID  *string   `db:"original_credit_account_id"`
	CorrectedCreditAccountID *string   `db:"corrected_credit_account_id"`
	UserDescription          string    `db:"user_description"`
	Direction                string    `db:"direction"`
	IsBusiness               bool      `db:"is_business"`
	Confidence               *float64  `db:"confidence"`
	RecordedAt               time.Time `db:"recorded_at"`
}
