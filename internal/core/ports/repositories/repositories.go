package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
)

// TransactionRepository persists submitted transactions with their journal lines.
type TransactionRepository interface {
	// SaveTransaction stores the transaction and its lines atomically.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
	FindTransactionByID(ctx context.Context, orgID, transactionID string) (*domain.Transaction, error)
	// EnqueueProcessing records a post-processing request; re-enqueueing is a no-op.
	EnqueueProcessing(ctx context.Context, orgID, transactionID string, requestedAt time.Time) error
}

// TransactionHistoryRepository answers lookups over past transactions.
type TransactionHistoryRepository interface {
	// ListTransactionsSince returns the org's transactions dated on or after since.
	ListTransactionsSince(ctx context.Context, orgID string, since time.Time) ([]domain.StoredTransaction, error)
	FindSimilar(ctx context.Context, orgID string, query domain.SimilarQuery) ([]domain.SimilarTransaction, error)
}

// TransactionRepositoryFacade combines transaction writes and history reads.
type TransactionRepositoryFacade interface {
	TransactionRepository
	TransactionHistoryRepository
}

// AccountRepository reads the chart of accounts.
type AccountRepository interface {
	ListAccounts(ctx context.Context, orgID string) ([]domain.Account, error)
	FindAccountsByIDs(ctx context.Context, orgID string, accountIDs []string) (map[string]domain.Account, error)
}

// CategoryRepository manages custom categories.
type CategoryRepository interface {
	AddCustomCategory(ctx context.Context, orgID, userID, name string) error
	ListCategories(ctx context.Context, orgID string) ([]string, error)
}

// CorrectionRepository stores suggestion corrections.
type CorrectionRepository interface {
	SaveCorrection(ctx context.Context, actor domain.Actor, correction domain.Correction, recordedAt time.Time) error
}

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TransactionRepo TransactionRepositoryFacade
	AccountRepo     AccountRepository
	CategoryRepo    CategoryRepository
	CorrectionRepo  CorrectionRepository
}
