package mapping_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/SscSPs/ledger_intake/internal/utils/mapping"
)

func TestTransactionMapping_KeepsMismatchAndNullAccounts(t *testing.T) {
	tax := decimal.RequireFromString("1.20")
	txn := domain.Transaction{
		TransactionID: "txn-1",
		OrgID:         "org-1",
		Status:        domain.StatusPending,
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		CreatedBy:     "user-1",
		Submission: domain.TransactionSubmission{
			Title:     "Costco",
			Amount:    decimal.RequireFromString("-150"),
			Date:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Direction: domain.DirectionExpense,
			EntryMode: domain.SubmissionAdvanced,
			LineItems: []domain.SubmittedLineItem{
				{Description: "Groceries", Amount: decimal.RequireFromString("100"), Tax: &tax, DebitAccountID: "acc-food"},
			},
			TotalsMismatch: &domain.TotalsMismatch{
				LineItemsTotal:   decimal.RequireFromString("101.20"),
				TransactionTotal: decimal.RequireFromString("150"),
				Difference:       decimal.RequireFromString("-48.80"),
			},
		},
	}

	row := mapping.ToModelTransaction(txn)
	assert.Nil(t, row.DebitAccountID)
	assert.Nil(t, row.CreditAccountID)
	require.NotNil(t, row.MismatchDiff)

	items := mapping.ToModelLineItems(txn.TransactionID, txn.Submission.LineItems)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Position)
	assert.NotEmpty(t, items[0].LineItemID)
	assert.Nil(t, items[0].CreditAccountID)

	back := mapping.ToDomainTransaction(row, items, nil)
	assert.Equal(t, txn.Submission.TotalsMismatch, back.Submission.TotalsMismatch)
	assert.Equal(t, "acc-food", back.Submission.LineItems[0].DebitAccountID)
	assert.Equal(t, "", back.Submission.DebitAccountID)
	assert.Equal(t, domain.StatusPending, back.Status)
}
