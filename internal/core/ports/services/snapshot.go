package services

import (
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Totals is the itemized-vs-transaction reconciliation view.
type Totals struct {
	LineItemsTotal   decimal.Decimal `json:"lineItemsTotal"`
	TransactionTotal decimal.Decimal `json:"transactionTotal"`
	Difference       decimal.Decimal `json:"difference"`
	Match            bool            `json:"match"`
}

// DraftSnapshot is a read-only copy of a session's state.
type DraftSnapshot struct {
	SessionID           string                           `json:"sessionId"`
	Draft               domain.TransactionDraft          `json:"draft"`
	LineItems           []domain.LineItem                `json:"lineItems"`
	Errors              map[string]string                `json:"errors"`
	CompletedFields     []domain.CompletedField          `json:"completedFields"`
	RevealedFields      []domain.CompletedField          `json:"revealedFields"`
	Provenance          map[string]domain.Provenance     `json:"provenance"`
	UseAI               bool                             `json:"useAI"`
	Suggestions         []domain.AISuggestion            `json:"suggestions,omitempty"`
	LineItemSuggestions map[string][]domain.AISuggestion `json:"lineItemSuggestions,omitempty"`
	PendingNewCategory  string                           `json:"pendingNewCategory,omitempty"`
	Duplicate           *domain.DuplicateMatch           `json:"duplicate,omitempty"`
	DuplicateRecency    string                           `json:"duplicateRecency,omitempty"`
	ShowSplitPrompt     bool                             `json:"showSplitPrompt"`
	Totals              Totals                           `json:"totals"`
	Warnings            []string                         `json:"warnings,omitempty"`
	ReceiptApplied      bool                             `json:"receiptApplied"`
}
