package mapping

import (
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/SscSPs/ledger_intake/internal/models"
	"github.com/google/uuid"
)

// ToModelTransaction converts a domain Transaction to its transactions row.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	sub := d.Submission
	m := models.Transaction{
		TransactionID:   d.TransactionID,
		OrgID:           d.OrgID,
		Title:           sub.Title,
		Description:     sub.Description,
		Note:            sub.Note,
		Amount:          sub.Amount,
		TransactionDate: sub.Date,
		Category:        sub.Category,
		Direction:       string(sub.Direction),
		IsBusiness:      sub.IsBusiness,
		EntryMode:       string(sub.EntryMode),
		DebitAccountID:  nullableString(sub.DebitAccountID),
		CreditAccountID: nullableString(sub.CreditAccountID),
		AIAssisted:      sub.AIAssisted,
		Status:          string(d.Status),
		AuditFields: models.AuditFields{
			CreatedAt: d.CreatedAt,
			CreatedBy: d.CreatedBy,
		},
	}
	if mm := sub.TotalsMismatch; mm != nil {
		items, txn, diff := mm.LineItemsTotal, mm.TransactionTotal, mm.Difference
		m.LineItemsTotal = &items
		m.MismatchTotal = &txn
		m.MismatchDiff = &diff
	}
	return m
}

// ToModelLineItems converts submitted line items to rows, keeping their order.
func ToModelLineItems(transactionID string, items []domain.SubmittedLineItem) []models.LineItem {
	out := make([]models.LineItem, len(items))
	for i, it := range items {
		out[i] = models.LineItem{
			LineItemID:      uuid.NewString(),
			TransactionID:   transactionID,
			Position:        i,
			Description:     it.Description,
			Category:        it.Category,
			Amount:          it.Amount,
			Tax:             it.Tax,
			Tip:             it.Tip,
			DebitAccountID:  nullableString(it.DebitAccountID),
			CreditAccountID: nullableString(it.CreditAccountID),
		}
	}
	return out
}

// ToDomainLineItem converts a line item row back to a submitted line item.
func ToDomainLineItem(m models.LineItem) domain.SubmittedLineItem {
	return domain.SubmittedLineItem{
		Description:     m.Description,
		Category:        m.Category,
		Amount:          m.Amount,
		Tax:             m.Tax,
		Tip:             m.Tip,
		DebitAccountID:  derefString(m.DebitAccountID),
		CreditAccountID: derefString(m.CreditAccountID),
	}
}

// ToModelJournalLine converts a domain JournalLine to its row.
func ToModelJournalLine(transactionID string, d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:          d.LineID,
		TransactionID:   transactionID,
		AccountID:       d.AccountID,
		Amount:          d.Amount,
		TransactionType: models.TransactionType(d.TransactionType),
		Memo:            d.Memo,
	}
}

// ToDomainJournalLine converts a journal line row to the domain type.
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:          m.LineID,
		AccountID:       m.AccountID,
		Amount:          m.Amount,
		TransactionType: domain.TransactionType(m.TransactionType),
		Memo:            m.Memo,
	}
}

// ToDomainTransaction converts a transactions row, its items and lines to the domain type.
func ToDomainTransaction(m models.Transaction, items []models.LineItem, lines []models.JournalLine) domain.Transaction {
	sub := domain.TransactionSubmission{
		Title:           m.Title,
		Description:     m.Description,
		Note:            m.Note,
		Amount:          m.Amount,
		Date:            m.TransactionDate,
		Category:        m.Category,
		Direction:       domain.Direction(m.Direction),
		IsBusiness:      m.IsBusiness,
		EntryMode:       domain.SubmissionEntryMode(m.EntryMode),
		DebitAccountID:  derefString(m.DebitAccountID),
		CreditAccountID: derefString(m.CreditAccountID),
		AIAssisted:      m.AIAssisted,
	}
	if m.LineItemsTotal != nil && m.MismatchTotal != nil && m.MismatchDiff != nil {
		sub.TotalsMismatch = &domain.TotalsMismatch{
			LineItemsTotal:   *m.LineItemsTotal,
			TransactionTotal: *m.MismatchTotal,
			Difference:       *m.MismatchDiff,
		}
	}
	for _, it := range items {
		sub.LineItems = append(sub.LineItems, ToDomainLineItem(it))
	}
	txn := domain.Transaction{
		TransactionID: m.TransactionID,
		OrgID:         m.OrgID,
		Submission:    sub,
		Status:        domain.TransactionStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
	}
	for _, l := range lines {
		txn.Lines = append(txn.Lines, ToDomainJournalLine(l))
	}
	return txn
}

// ToDomainStoredTransaction converts a row to the shape duplicate scoring reads.
func ToDomainStoredTransaction(m models.Transaction) domain.StoredTransaction {
	return domain.StoredTransaction{
		TransactionID: m.TransactionID,
		Amount:        m.Amount,
		Merchant:      m.Title,
		Description:   m.Description,
		Date:          m.TransactionDate,
	}
}
