package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
	"github.com/SscSPs/ledger_intake/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// SubmitValidationError carries the per-field messages that blocked a submission.
type SubmitValidationError struct {
	Errors ErrorSet
}

func (e *SubmitValidationError) Error() string {
	return e.Errors.Err().Error()
}

func (e *SubmitValidationError) Unwrap() error {
	return apperrors.ErrValidation
}

// Submit validates the draft and hands it to persistence. On failure the
// draft is left exactly as it was so the user can retry. On success the
// correction and post-processing calls are best effort and the draft resets
// according to mode.
func (s *DraftSession) Submit(ctx context.Context, mode portssvc.SubmitMode) (*portssvc.SubmitResult, error) {
	if mode == "" {
		mode = portssvc.SubmitAndClose
	}
	if mode != portssvc.SubmitAndClose && mode != portssvc.SubmitAndAddAnother {
		return nil, fmt.Errorf("%w: unknown submit mode %q", apperrors.ErrValidation, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	logger := s.GetLogger(ctx).With(s.logAttrs()...)

	items := s.items.Items()
	errs := s.validator.ValidateDraft(s.draft, items, s.deps.Now())
	if !s.draft.Intent.IsSet() {
		errs[domain.FieldIntent] = "What kind of transaction is this?"
	}
	if errs.HasErrors() {
		logger.Debug("Draft failed validation", slog.Int("error_count", len(errs)))
		return nil, &SubmitValidationError{Errors: errs}
	}

	submission := s.buildSubmission(items)
	txnID, err := s.deps.Persistence.CreateTransaction(ctx, s.actor, submission)
	if err != nil {
		s.LogError(ctx, err, "Failed to create transaction", s.logAttrs()...)
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	logger.Info("Transaction submitted", slog.String("transaction_id", txnID), slog.String("entry_mode", string(submission.EntryMode)))

	if s.useAI {
		if correction := BuildCorrection(s.draft, s.applied); correction != nil {
			if err := s.deps.KnowledgeBase.SaveCorrection(ctx, s.actor, *correction); err != nil {
				s.LogWarn(ctx, err, "Failed to save correction", append(s.logAttrs(), slog.String("transaction_id", txnID))...)
			}
		}
	}
	if s.useAI || !s.similarFound || !s.draft.Category.IsEmpty() {
		if err := s.deps.Persistence.ProcessTransaction(ctx, s.actor, txnID); err != nil {
			s.LogWarn(ctx, err, "Failed to schedule transaction processing", append(s.logAttrs(), slog.String("transaction_id", txnID))...)
		}
	}

	s.capture("transaction_created", map[string]any{
		"transaction_id":  txnID,
		"entry_mode":      string(submission.EntryMode),
		"line_items":      len(submission.LineItems),
		"ai_assisted":     submission.AIAssisted,
		"totals_mismatch": submission.TotalsMismatch != nil,
		"is_business":     submission.IsBusiness,
		"direction":       string(submission.Direction),
		"submit_mode":     string(mode),
	})

	s.resetDraft(mode == portssvc.SubmitAndAddAnother)
	return &portssvc.SubmitResult{TransactionID: txnID, TotalsMismatch: submission.TotalsMismatch}, nil
}

// buildSubmission normalizes the draft. Callers hold mu and have validated.
func (s *DraftSession) buildSubmission(items []domain.LineItem) domain.TransactionSubmission {
	total := accounting.ParseAmount(s.draft.Amount)
	sub := domain.TransactionSubmission{
		Title:           strings.TrimSpace(s.draft.Title),
		Description:     FullDescription(s.draft.Title, s.draft.Description),
		Note:            strings.TrimSpace(s.draft.Note),
		Amount:          accounting.SignedAmount(total, s.draft.Direction()),
		Date:            s.draft.Date,
		Category:        s.draft.Category.Name,
		Direction:       s.draft.Direction(),
		IsBusiness:      s.draft.IsBusiness(),
		EntryMode:       domain.SubmissionSimple,
		DebitAccountID:  s.draft.DebitAccountID,
		CreditAccountID: s.draft.CreditAccountID,
		AIAssisted:      s.useAI,
	}
	if !s.draft.IsItemized() {
		return sub
	}

	sub.EntryMode = domain.SubmissionAdvanced
	sub.LineItems = make([]domain.SubmittedLineItem, 0, len(items))
	for _, item := range items {
		sub.LineItems = append(sub.LineItems, domain.SubmittedLineItem{
			Description:     strings.TrimSpace(item.Description),
			Category:        item.Category,
			Amount:          accounting.ParseAmount(item.Amount),
			Tax:             optionalAmount(item.Tax),
			Tip:             optionalAmount(item.Tip),
			DebitAccountID:  item.DebitAccountID,
			CreditAccountID: item.CreditAccountID,
		})
	}
	itemsTotal := accounting.LineItemsTotal(items)
	if !accounting.TotalsMatch(itemsTotal, total) {
		sub.TotalsMismatch = &domain.TotalsMismatch{
			LineItemsTotal:   itemsTotal,
			TransactionTotal: total,
			Difference:       accounting.TotalsDifference(itemsTotal, total),
		}
	}
	return sub
}

func optionalAmount(text string) *decimal.Decimal {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	d := accounting.ParseAmount(text)
	return &d
}

// resetDraft clears the session after a submission. With keepIntent the next
// draft starts on the same intent.
func (s *DraftSession) resetDraft(keepIntent bool) {
	intent := s.draft.Intent
	for _, item := range s.items.Items() {
		s.deps.Dispatcher.Cancel(lineItemKey(item.ID))
	}
	for _, key := range []string{keyDuplicate, keySimilar, keySuggest} {
		s.deps.Dispatcher.Cancel(key)
	}
	s.guard.invalidateAll()

	s.draft = domain.NewDraft(s.deps.Now())
	if keepIntent {
		s.draft.Intent = intent
	}
	s.items.Reset()
	s.provenance = make(map[string]domain.Provenance)
	s.revealed = 0
	s.useAI = false
	s.suggestions = nil
	s.applied = nil
	s.autoSuggested = false
	s.lineSuggestions = make(map[string][]domain.AISuggestion)
	s.lineRequested = make(map[string]bool)
	s.pending = nil
	s.duplicate = nil
	s.duplicateKey = ""
	s.duplicateDismissed = false
	s.similarKey = ""
	s.similarFound = false
	s.autoPopulated = false
	s.splitPromptDone = false
	s.receipt = nil
	s.receiptApplied = false
	s.warnings = nil
	s.lastActive = s.deps.Now()
	s.updateReveal()
}
