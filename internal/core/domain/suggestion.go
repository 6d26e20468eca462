package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AISuggestion is one ranked candidate produced by the suggestion service.
type AISuggestion struct {
	Category          string  `json:"category"`
	DebitAccountID    string  `json:"debitAccountId"`
	CreditAccountID   string  `json:"creditAccountId"`
	DebitAccountName  string  `json:"debitAccountName,omitempty"`
	CreditAccountName string  `json:"creditAccountName,omitempty"`
	Confidence        float64 `json:"confidence"`
	Explanation       string  `json:"explanation"`
	IsNewCategory     bool    `json:"isNewCategory"`
	IsBusiness        *bool   `json:"isBusiness,omitempty"`
}

// SuggestionRequest is the shared request shape for whole-transaction,
// account-only and per-line-item suggestions.
type SuggestionRequest struct {
	Description             string          `json:"description"`
	Amount                  decimal.Decimal `json:"amount"` // negative for expenses
	Date                    time.Time       `json:"date"`
	Merchant                string          `json:"merchant,omitempty"`
	Category                string          `json:"category,omitempty"`
	IsBusiness              bool            `json:"isBusiness"`
	OverrideDebitAccountID  string          `json:"overrideDebitAccountId,omitempty"`
	OverrideCreditAccountID string          `json:"overrideCreditAccountId,omitempty"`
	UserDescription         string          `json:"userDescription,omitempty"`
}

// SuggestionResult wraps the ranked suggestion list.
type SuggestionResult struct {
	Suggestions []AISuggestion `json:"suggestions"`
}

// SplitItem is one proposed part of a split transaction.
type SplitItem struct {
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Confidence  float64         `json:"confidence"`
}

// SplitResult wraps the proposed split.
type SplitResult struct {
	Suggestions []SplitItem `json:"suggestions"`
}

// ReceiptItem is a line read off a receipt by OCR.
type ReceiptItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    *float64        `json:"quantity,omitempty"`
}

// ReceiptOCR is the extraction result for one receipt.
type ReceiptOCR struct {
	Merchant string           `json:"merchant"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Date     *time.Time       `json:"date,omitempty"`
	Items    []ReceiptItem    `json:"items,omitempty"`
}
