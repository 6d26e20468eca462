package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_intake/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
	"github.com/SscSPs/ledger_intake/internal/utils/accounting"
)

var (
	ErrUnbalancedEntry   = errors.New("journal lines do not balance")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrSameAccountOnBoth = errors.New("debit and credit accounts must differ")
)

// ledgerService is the repository-backed PersistenceSvc. Journal lines are
// derived from the submission when it names accounts; otherwise the
// transaction is stored pending and left to post-processing.
type ledgerService struct {
	BaseService
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.AccountRepository
	window      DuplicateWindow
	now         func() time.Time
}

// LedgerServiceOption configures the ledger service.
type LedgerServiceOption func(*ledgerService)

// WithDuplicateWindow overrides the duplicate matching window.
func WithDuplicateWindow(w DuplicateWindow) LedgerServiceOption {
	return func(s *ledgerService) {
		s.window = w
	}
}

// WithLedgerClock sets the time source used for created-at stamps.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates the persistence collaborator over the repositories.
func NewLedgerService(txnRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountRepository, opts ...LedgerServiceOption) portssvc.PersistenceSvc {
	s := &ledgerService{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		window:      DefaultDuplicateWindow(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.PersistenceSvc = (*ledgerService)(nil)

func (s *ledgerService) CreateTransaction(ctx context.Context, actor domain.Actor, submission domain.TransactionSubmission) (string, error) {
	txnID := uuid.NewString()
	lines, err := BuildJournalLines(submission)
	if err != nil {
		return "", err
	}
	if len(lines) > 0 {
		if err := s.checkAccounts(ctx, actor.OrgID, lines); err != nil {
			return "", err
		}
		if err := accounting.ValidateEntryBalance(lines); err != nil {
			s.LogError(ctx, err, "Journal lines failed balance check", slog.String("transaction_id", txnID))
			return "", fmt.Errorf("%w: %w: %w", apperrors.ErrValidation, ErrUnbalancedEntry, err)
		}
	}

	status := domain.StatusPending
	if len(lines) > 0 {
		status = domain.StatusPosted
	}
	txn := domain.Transaction{
		TransactionID: txnID,
		OrgID:         actor.OrgID,
		Submission:    submission,
		Lines:         lines,
		Status:        status,
		CreatedAt:     s.now(),
		CreatedBy:     actor.UserID,
	}
	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to save transaction", slog.String("transaction_id", txnID), slog.String("org_id", actor.OrgID))
		return "", fmt.Errorf("failed to save transaction: %w", err)
	}
	s.LogInfo(ctx, "Transaction saved",
		slog.String("transaction_id", txnID),
		slog.String("status", string(status)),
		slog.Int("journal_lines", len(lines)))
	return txnID, nil
}

// BuildJournalLines derives balanced postings from a submission. Itemized
// submissions post per item when every item has (or inherits) both accounts;
// otherwise the whole amount posts to the transaction's accounts. A
// submission without accounts yields no lines.
func BuildJournalLines(sub domain.TransactionSubmission) ([]domain.JournalLine, error) {
	if len(sub.LineItems) > 0 {
		lines, ok, err := itemJournalLines(sub)
		if err != nil || ok {
			return lines, err
		}
	}
	if sub.DebitAccountID == "" || sub.CreditAccountID == "" {
		return nil, nil
	}
	if sub.DebitAccountID == sub.CreditAccountID {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrSameAccountOnBoth)
	}
	memo := sub.Description
	amount := sub.Amount.Abs()
	return []domain.JournalLine{
		newJournalLine(sub.DebitAccountID, amount, domain.Debit, memo),
		newJournalLine(sub.CreditAccountID, amount, domain.Credit, memo),
	}, nil
}

func itemJournalLines(sub domain.TransactionSubmission) ([]domain.JournalLine, bool, error) {
	lines := make([]domain.JournalLine, 0, 2*len(sub.LineItems))
	for _, item := range sub.LineItems {
		debit := firstNonEmpty(item.DebitAccountID, sub.DebitAccountID)
		credit := firstNonEmpty(item.CreditAccountID, sub.CreditAccountID)
		if debit == "" || credit == "" {
			return nil, false, nil
		}
		if debit == credit {
			return nil, false, fmt.Errorf("%w: %w: item %q", apperrors.ErrValidation, ErrSameAccountOnBoth, item.Description)
		}
		gross := item.Gross().Abs()
		memo := item.Description
		lines = append(lines,
			newJournalLine(debit, gross, domain.Debit, memo),
			newJournalLine(credit, gross, domain.Credit, memo),
		)
	}
	return lines, true, nil
}

func newJournalLine(accountID string, amount decimal.Decimal, side domain.TransactionType, memo string) domain.JournalLine {
	return domain.JournalLine{
		LineID:          uuid.NewString(),
		AccountID:       accountID,
		Amount:          amount,
		TransactionType: side,
		Memo:            memo,
	}
}

func (s *ledgerService) checkAccounts(ctx context.Context, orgID string, lines []domain.JournalLine) error {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, orgID, ids)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrAccountInactive, acc.Name)
		}
	}
	return nil
}

func (s *ledgerService) ProcessTransaction(ctx context.Context, actor domain.Actor, transactionID string) error {
	if _, err := s.txnRepo.FindTransactionByID(ctx, actor.OrgID, transactionID); err != nil {
		return fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if err := s.txnRepo.EnqueueProcessing(ctx, actor.OrgID, transactionID, s.now()); err != nil {
		return fmt.Errorf("failed to enqueue transaction %s: %w", transactionID, err)
	}
	s.LogDebug(ctx, "Transaction queued for processing", slog.String("transaction_id", transactionID))
	return nil
}

func (s *ledgerService) FindDuplicates(ctx context.Context, actor domain.Actor, merchant string, amount decimal.Decimal, date time.Time) (*domain.DuplicateMatch, error) {
	if strings.TrimSpace(merchant) == "" {
		return nil, nil
	}
	candidates, err := s.txnRepo.ListTransactionsSince(ctx, actor.OrgID, s.window.LookbackStart(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	return s.window.BestDuplicate(merchant, amount, date, candidates), nil
}

func (s *ledgerService) FindSimilarTransactions(ctx context.Context, actor domain.Actor, query domain.SimilarQuery) ([]domain.SimilarTransaction, error) {
	if query.Limit <= 0 {
		query.Limit = 1
	}
	similar, err := s.txnRepo.FindSimilar(ctx, actor.OrgID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find similar transactions: %w", err)
	}
	return similar, nil
}

func (s *ledgerService) ListAccounts(ctx context.Context, actor domain.Actor) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, actor.OrgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
