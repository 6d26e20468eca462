package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
)

// SubmitMode selects what happens to the draft after a successful submission.
type SubmitMode string

const (
	// SubmitAndClose resets the whole draft.
	SubmitAndClose SubmitMode = "close"
	// SubmitAndAddAnother keeps only the intent.
	SubmitAndAddAnother SubmitMode = "add_another"
)

// SubmitResult is returned by a successful submission.
type SubmitResult struct {
	TransactionID  string                 `json:"transactionId"`
	TotalsMismatch *domain.TotalsMismatch `json:"totalsMismatch,omitempty"`
}

// SelectionOutcome describes what accepting a suggestion did.
type SelectionOutcome struct {
	Applied           bool     `json:"applied"`
	NeedsConfirmation bool     `json:"needsConfirmation"`
	PendingCategory   string   `json:"pendingCategory,omitempty"`
	Warnings          []string `json:"warnings,omitempty"`
}

// DraftSessionSvc is one in-progress transaction composition.
type DraftSessionSvc interface {
	ID() string
	Actor() domain.Actor
	Snapshot() DraftSnapshot

	SetIntent(intent domain.Intent) error
	SetTitle(title string)
	SetAmount(amount string)
	SetDate(date time.Time)
	SetCategory(category domain.CategoryValue)
	SetDescription(description string)
	SetNote(note string)
	SetDebitAccount(accountID string)
	SetCreditAccount(accountID string)
	SetUseAI(useAI bool)

	EnableItemization()
	DisableItemization()
	AddLineItem() string
	RemoveLineItem(id string)
	UpdateLineItem(id string, field domain.LineItemField, value string) error

	DismissDuplicate()
	DismissSplit()
	AcceptSplit() error
	ApplyReceiptOCR(ocr domain.ReceiptOCR)

	RequestSuggestions(userDescription string) error
	RequestAccountSuggestions() error
	RequestLineItemSuggestions(itemID string) error
	SelectSuggestion(ctx context.Context, index int) (*SelectionOutcome, error)
	SelectLineItemSuggestion(ctx context.Context, itemID string, index int) (*SelectionOutcome, error)
	ConfirmNewCategory(ctx context.Context, accept bool) (*SelectionOutcome, error)

	Submit(ctx context.Context, mode SubmitMode) (*SubmitResult, error)
}

// DraftSessionManagerSvc owns the registry of live sessions.
type DraftSessionManagerSvc interface {
	Open(ctx context.Context, actor domain.Actor) (DraftSessionSvc, error)
	Get(actor domain.Actor, sessionID string) (DraftSessionSvc, error)
	Close(actor domain.Actor, sessionID string) error
}
