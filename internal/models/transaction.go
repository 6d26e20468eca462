package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a journal line is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Transaction is a row of the transactions table: one submitted draft.
type Transaction struct {
	TransactionID   string           `db:"transaction_id"`
	OrgID           string           `db:"org_id"`
	Title           string           `db:"title"`
	Description     string           `db:"description"`
	Note            string           `db:"note"`
	Amount          decimal.Decimal  `db:"amount"` // signed
	TransactionDate time.Time        `db:"transaction_date"`
	Category        string           `db:"category"`
	Direction       string           `db:"direction"`
	IsBusiness      bool             `db:"is_business"`
	EntryMode       string           `db:"entry_mode"`
	DebitAccountID  *string          `db:"debit_account_id"`
	CreditAccountID *string          `db:"credit_account_id"`
	AIAssisted      bool             `db:"ai_assisted"`
	Status          string           `db:"status"`
	LineItemsTotal  *decimal.Decimal `db:"line_items_total"`
	MismatchTotal   *decimal.Decimal `db:"mismatch_transaction_total"`
	MismatchDiff    *decimal.Decimal `db:"mismatch_difference"`
	AuditFields
}

// LineItem is a row of transaction_line_items.
type LineItem struct {
	LineItemID      string           `db:"line_item_id"`
	TransactionID   string           `db:"transaction_id"`
	Position        int              `db:"position"`
	Description     string           `db:"description"`
	Category        string           `db:"category"`
	Amount          decimal.Decimal  `db:"amount"`
	Tax             *decimal.Decimal `db:"tax"`
	Tip             *decimal.Decimal `db:"tip"`
	DebitAccountID  *string          `db:"debit_account_id"`
	CreditAccountID *string          `db:"credit_account_id"`
}

// JournalLine is a row of journal_lines: one debit or credit posting.
type JournalLine struct {
	LineID          string          `db:"line_id"`
	TransactionID   string          `db:"transaction_id"`
	AccountID       string          `db:"account_id"`
	Amount          decimal.Decimal `db:"amount"` // always positive
	TransactionType TransactionType `db:"transaction_type"`
	Memo            string          `db:"memo"`
}
