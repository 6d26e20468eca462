package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PersistenceSvc stores submitted transactions and answers history lookups.
// Every call carries the acting user and organization explicitly.
type PersistenceSvc interface {
	// CreateTransaction persists the normalized submission and returns its ID.
	CreateTransaction(ctx context.Context, actor domain.Actor, submission domain.TransactionSubmission) (string, error)

	// ProcessTransaction schedules AI post-processing. Calling it twice is harmless.
	ProcessTransaction(ctx context.Context, actor domain.Actor, transactionID string) error

	// FindDuplicates returns the best prior match or nil.
	FindDuplicates(ctx context.Context, actor domain.Actor, merchant string, amount decimal.Decimal, date time.Time) (*domain.DuplicateMatch, error)

	FindSimilarTransactions(ctx context.Context, actor domain.Actor, query domain.SimilarQuery) ([]domain.SimilarTransaction, error)

	ListAccounts(ctx context.Context, actor domain.Actor) ([]domain.Account, error)
}

// SuggestionSvc produces category/account and split suggestions.
type SuggestionSvc interface {
	GenerateSuggestions(ctx context.Context, actor domain.Actor, req domain.SuggestionRequest) (*domain.SuggestionResult, error)
	SuggestSplit(ctx context.Context, actor domain.Actor, merchant string, amount decimal.Decimal, receiptItems []domain.ReceiptItem) (*domain.SplitResult, error)
}

// KnowledgeBaseSvc records corrections for future suggestion learning. Best effort.
type KnowledgeBaseSvc interface {
	SaveCorrection(ctx context.Context, actor domain.Actor, correction domain.Correction) error
}

// CategoryVocabularySvc manages the user's custom categories.
type CategoryVocabularySvc interface {
	AddCustomCategory(ctx context.Context, actor domain.Actor, name string) error
}

// AnalyticsSvc captures product events. Implementations must not block.
type AnalyticsSvc interface {
	Capture(actor domain.Actor, event string, properties map[string]any)
}
