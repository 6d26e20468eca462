package domain

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

// SubmissionEntryMode is the persisted form of EntryMode.
type SubmissionEntryMode string

const (
	SubmissionSimple   SubmissionEntryMode = "simple"
	SubmissionAdvanced SubmissionEntryMode = "advanced"
)

// TotalsMismatch is persisted when itemized totals do not match the transaction total.
// Neither number is adjusted; the difference is tracked.
type TotalsMismatch struct {
	LineItemsTotal   decimal.Decimal `json:"lineItemsTotal"`
	TransactionTotal decimal.Decimal `json:"transactionTotal"`
	Difference       decimal.Decimal `json:"difference"`
}

// SubmittedLineItem is a normalized line item handed to persistence.
type SubmittedLineItem struct {
	Description     string           `json:"description"`
	Category        string           `json:"category,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	Tax             *decimal.Decimal `json:"tax,omitempty"`
	Tip             *decimal.Decimal `json:"tip,omitempty"`
	DebitAccountID  string           `json:"debitAccountId,omitempty"`
	CreditAccountID string           `json:"creditAccountId,omitempty"`
}

// Gross is amount + tax + tip.
func (li SubmittedLineItem) Gross() decimal.Decimal {
	total := li.Amount
	if li.Tax != nil {
		total = total.Add(*li.Tax)
	}
	if li.Tip != nil {
		total = total.Add(*li.Tip)
	}
	return total
}

// TransactionSubmission is the normalized draft handed to the persistence collaborator.
type TransactionSubmission struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"` // "<title>. <description>" when a description exists
	Note            string              `json:"note,omitempty"`
	Amount          decimal.Decimal     `json:"amount"` // signed: negative for expenses
	Date            time.Time           `json:"date"`
	Category        string              `json:"category,omitempty"`
	Direction       Direction           `json:"direction"`
	IsBusiness      bool                `json:"isBusiness"`
	EntryMode       SubmissionEntryMode `json:"entryMode"`
	DebitAccountID  string              `json:"debitAccountId,omitempty"`
	CreditAccountID string              `json:"creditAccountId,omitempty"`
	LineItems       []SubmittedLineItem `json:"lineItems,omitempty"`
	TotalsMismatch  *TotalsMismatch     `json:"totalsMismatch,omitempty"`
	AIAssisted      bool                `json:"aiAssisted"`
}

// JournalLine is a single debit or credit posting derived from a submission.
type JournalLine struct {
	LineID          string          `json:"lineID"`
	AccountID       string          `json:"accountID"`
	Amount          decimal.Decimal `json:"amount"` // always positive
	TransactionType TransactionType `json:"transactionType"`
	Memo            string          `json:"memo"`
}

// TransactionStatus is the lifecycle state of a persisted transaction.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusPosted  TransactionStatus = "POSTED"
)

// Transaction is a persisted submission with its journal lines.
type Transaction struct {
	TransactionID string                `json:"transactionID"`
	OrgID         string                `json:"orgID"`
	Submission    TransactionSubmission `json:"submission"`
	Lines         []JournalLine         `json:"lines"`
	Status        TransactionStatus     `json:"status"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     string                `json:"createdBy"`
}
