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
)

// scheduleDuplicateLookup debounces one lookup per (title, amount, date). A
// changed key invalidates whatever is in flight for the previous key.
func (s *DraftSession) scheduleDuplicateLookup() {
	if !DuplicateLookupReady(s.draft) {
		if s.duplicateKey != "" || s.duplicate != nil {
			s.guard.invalidate(keyDuplicate)
			s.deps.Dispatcher.Cancel(keyDuplicate)
			s.duplicateKey = ""
			s.duplicate = nil
		}
		return
	}
	key := duplicateKey(s.draft)
	if key == s.duplicateKey {
		return
	}
	s.duplicateKey = key
	s.duplicate = nil
	s.guard.invalidate(keyDuplicate)
	s.deps.Dispatcher.Debounce(keyDuplicate, s.cfg.LookupDebounce, s.runDuplicateLookup)
}

func (s *DraftSession) runDuplicateLookup() {
	s.mu.Lock()
	if s.closed || !DuplicateLookupReady(s.draft) {
		s.mu.Unlock()
		return
	}
	token := s.guard.issue(keyDuplicate)
	merchant := strings.TrimSpace(s.draft.Title)
	amount := accounting.ParseAmount(s.draft.Amount)
	date := s.draft.Date
	s.mu.Unlock()

	match, err := s.deps.Persistence.FindDuplicates(s.ctx, s.actor, merchant, amount, date)
	if err != nil {
		s.LogWarn(s.ctx, err, "Duplicate lookup failed", s.logAttrs()...)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.guard.current(keyDuplicate, token) {
		s.LogDebug(s.ctx, "Discarding stale duplicate lookup result", append(s.logAttrs(), slog.String("merchant", merchant))...)
		return
	}
	s.duplicate = match
}

// scheduleSimilarLookup looks up a similar past transaction once per title.
func (s *DraftSession) scheduleSimilarLookup() {
	if !TitleLongEnough(s.draft.Title) || !s.draft.Intent.IsSet() {
		if s.similarKey != "" {
			s.guard.invalidate(keySimilar)
			s.deps.Dispatcher.Cancel(keySimilar)
			s.similarKey = ""
			s.similarFound = false
		}
		return
	}
	key := strings.TrimSpace(s.draft.Title)
	if key == s.similarKey {
		return
	}
	s.similarKey = key
	s.guard.invalidate(keySimilar)
	s.deps.Dispatcher.Debounce(keySimilar, s.cfg.LookupDebounce, s.runSimilarLookup)
}

func (s *DraftSession) runSimilarLookup() {
	s.mu.Lock()
	if s.closed || !TitleLongEnough(s.draft.Title) || !s.draft.Intent.IsSet() {
		s.mu.Unlock()
		return
	}
	token := s.guard.issue(keySimilar)
	categoryMark := s.guard.editMark(domain.FieldCategory)
	title := strings.TrimSpace(s.draft.Title)
	query := domain.SimilarQuery{Merchant: title, Description: title, Limit: s.cfg.SimilarLookupLimit}
	s.mu.Unlock()

	similar, err := s.deps.Persistence.FindSimilarTransactions(s.ctx, s.actor, query)
	if err != nil {
		s.LogWarn(s.ctx, err, "Similar transaction lookup failed", s.logAttrs()...)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.guard.current(keySimilar, token) {
		return
	}
	s.similarFound = len(similar) > 0
	if !s.similarFound || !SimilarLookupReady(s.draft, s.useAI, s.autoPopulated) {
		return
	}
	if !s.guard.untouchedSince(domain.FieldCategory, categoryMark) {
		return
	}
	if category := CategoryFromSimilar(similar[0]); category != "" {
		s.draft.Category = domain.KnownCategory(category)
		s.provenance[domain.FieldCategory] = domain.ProvenanceSimilar
	}
	s.autoPopulated = true
	s.updateReveal()
	s.scheduleAutoSuggest()
}

func (s *DraftSession) suggestionFieldsReady() bool {
	return strings.TrimSpace(s.draft.Title) != "" &&
		accounting.IsValidAmount(s.draft.Amount) &&
		s.draft.Intent.IsSet()
}

// scheduleAutoSuggest fires the silent whole-transaction suggestion the first
// time the required fields become valid while AI assistance is on.
func (s *DraftSession) scheduleAutoSuggest() {
	if !s.useAI || s.autoSuggested || !s.suggestionFieldsReady() {
		return
	}
	s.deps.Dispatcher.Debounce(keySuggest, s.cfg.LookupDebounce, s.runAutoSuggest)
}

func (s *DraftSession) runAutoSuggest() {
	s.mu.Lock()
	if s.closed || s.autoSuggested || !s.useAI || !s.suggestionFieldsReady() {
		s.mu.Unlock()
		return
	}
	s.autoSuggested = true
	token := s.guard.issue(keySuggest)
	marks := map[string]uint64{
		domain.FieldCategory:        s.guard.editMark(domain.FieldCategory),
		domain.FieldDebitAccountID:  s.guard.editMark(domain.FieldDebitAccountID),
		domain.FieldCreditAccountID: s.guard.editMark(domain.FieldCreditAccountID),
	}
	req := TransactionSuggestionRequest(s.draft, "")
	s.mu.Unlock()

	result, err := s.deps.Suggestions.GenerateSuggestions(s.ctx, s.actor, req)
	if err != nil {
		s.LogWarn(s.ctx, err, "Automatic suggestion failed", s.logAttrs()...)
		return
	}
	if result == nil || len(result.Suggestions) == 0 {
		return
	}
	top := result.Suggestions[0]
	var accounts []domain.Account
	if hasAccountRefs(top) {
		accounts = s.loadChart(s.ctx)
	}
	res := ResolveSuggestionAccounts(accounts, top)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.guard.current(keySuggest, token) {
		s.LogDebug(s.ctx, "Discarding stale automatic suggestion", s.logAttrs()...)
		return
	}
	if top.Category != "" && s.guard.untouchedSince(domain.FieldCategory, marks[domain.FieldCategory]) {
		if top.IsNewCategory {
			s.pending = &pendingCategory{suggestion: top}
		} else {
			s.draft.Category = domain.KnownCategory(top.Category)
			s.provenance[domain.FieldCategory] = domain.ProvenanceAI
		}
	}
	if res.DebitAccountID != "" && s.guard.untouchedSince(domain.FieldDebitAccountID, marks[domain.FieldDebitAccountID]) {
		s.draft.DebitAccountID = res.DebitAccountID
		s.provenance[domain.FieldDebitAccountID] = domain.ProvenanceAI
	}
	if res.CreditAccountID != "" && s.guard.untouchedSince(domain.FieldCreditAccountID, marks[domain.FieldCreditAccountID]) {
		s.draft.CreditAccountID = res.CreditAccountID
		s.provenance[domain.FieldCreditAccountID] = domain.ProvenanceAI
	}
	s.warnings = append(s.warnings, res.Warnings()...)
	applied := top
	s.applied = &applied
	s.afterChange()
}

// RequestSuggestions asks for the ranked whole-transaction list. The result is
// stored for explicit selection and never applied on its own.
func (s *DraftSession) RequestSuggestions(userDescription string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.suggestionFieldsReady() {
		return fmt.Errorf("%w: enter the transaction details before asking for suggestions", apperrors.ErrValidation)
	}
	s.useAI = true
	s.autoSuggested = true
	s.suggestions = nil
	s.lastActive = s.deps.Now()
	s.deps.Dispatcher.Cancel(keySuggest)
	token := s.guard.issue(keySuggest)
	req := TransactionSuggestionRequest(s.draft, userDescription)

	s.deps.Dispatcher.Go(func() {
		result, err := s.deps.Suggestions.GenerateSuggestions(s.ctx, s.actor, req)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || !s.guard.current(keySuggest, token) {
			return
		}
		if err != nil {
			s.LogWarn(s.ctx, err, "Failed to generate suggestions", s.logAttrs()...)
			s.warnings = append(s.warnings, "Failed to generate AI suggestions. Please try again.")
			return
		}
		if result != nil {
			s.suggestions = result.Suggestions
		}
	})
	return nil
}

// RequestAccountSuggestions asks only for the debit/credit pair and applies the
// top suggestion's accounts, leaving the category alone.
func (s *DraftSession) RequestAccountSuggestions() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.suggestionFieldsReady() {
		return fmt.Errorf("%w: enter the transaction details before using AI for accounts", apperrors.ErrValidation)
	}
	s.lastActive = s.deps.Now()
	token := s.guard.issue(keyAccounts)
	debitMark := s.guard.editMark(domain.FieldDebitAccountID)
	creditMark := s.guard.editMark(domain.FieldCreditAccountID)
	req := AccountSuggestionRequest(s.draft)

	s.deps.Dispatcher.Go(func() {
		result, err := s.deps.Suggestions.GenerateSuggestions(s.ctx, s.actor, req)
		if err != nil {
			s.LogWarn(s.ctx, err, "Failed to generate account suggestions", s.logAttrs()...)
			return
		}
		if result == nil || len(result.Suggestions) == 0 {
			return
		}
		top := result.Suggestions[0]
		res := ResolveSuggestionAccounts(s.loadChart(s.ctx), top)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || !s.guard.current(keyAccounts, token) {
			return
		}
		if res.DebitAccountID != "" && s.guard.untouchedSince(domain.FieldDebitAccountID, debitMark) {
			s.draft.DebitAccountID = res.DebitAccountID
			s.provenance[domain.FieldDebitAccountID] = domain.ProvenanceAI
		}
		if res.CreditAccountID != "" && s.guard.untouchedSince(domain.FieldCreditAccountID, creditMark) {
			s.draft.CreditAccountID = res.CreditAccountID
			s.provenance[domain.FieldCreditAccountID] = domain.ProvenanceAI
		}
		s.warnings = append(s.warnings, res.Warnings()...)
		if s.applied == nil {
			s.applied = &domain.AISuggestion{Confidence: top.Confidence}
		}
		s.applied.DebitAccountID = top.DebitAccountID
		s.applied.CreditAccountID = top.CreditAccountID
		s.afterChange()
	})
	return nil
}

// scheduleLineItemSuggestions debounces the one automatic request each ready
// line item gets.
func (s *DraftSession) scheduleLineItemSuggestions() {
	if !s.draft.IsItemized() || !s.draft.Intent.IsSet() {
		return
	}
	for _, item := range s.items.Items() {
		if s.lineRequested[item.ID] || !LineItemSuggestionReady(item) {
			continue
		}
		id := item.ID
		s.deps.Dispatcher.Debounce(lineItemKey(id), s.cfg.LineItemAIDebounce, func() {
			s.runLineItemSuggestion(id, true)
		})
	}
}

// RequestLineItemSuggestions asks for suggestions for one item right away.
func (s *DraftSession) RequestLineItemSuggestions(itemID string) error {
	s.mu.Lock()
	item, _, ok := s.items.Find(itemID)
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: line item %s", apperrors.ErrNotFound, itemID)
	}
	if strings.TrimSpace(item.Description) == "" || !accounting.IsValidAmount(item.Amount) {
		s.mu.Unlock()
		return fmt.Errorf("%w: line item needs a description and amount first", apperrors.ErrValidation)
	}
	s.deps.Dispatcher.Cancel(lineItemKey(itemID))
	s.mu.Unlock()

	s.deps.Dispatcher.Go(func() {
		s.runLineItemSuggestion(itemID, false)
	})
	return nil
}

func (s *DraftSession) runLineItemSuggestion(itemID string, auto bool) {
	s.mu.Lock()
	item, _, ok := s.items.Find(itemID)
	if s.closed || !ok || (auto && (s.lineRequested[itemID] || !LineItemSuggestionReady(item))) {
		s.mu.Unlock()
		return
	}
	s.lineRequested[itemID] = true
	key := lineItemKey(itemID)
	token := s.guard.issue(key)
	marks := map[domain.LineItemField]uint64{
		domain.LineItemCategory:        s.guard.editMark(lineItemFieldKey(itemID, domain.LineItemCategory)),
		domain.LineItemDebitAccountID:  s.guard.editMark(lineItemFieldKey(itemID, domain.LineItemDebitAccountID)),
		domain.LineItemCreditAccountID: s.guard.editMark(lineItemFieldKey(itemID, domain.LineItemCreditAccountID)),
	}
	req := LineItemSuggestionRequest(s.draft, item)
	s.mu.Unlock()

	result, err := s.deps.Suggestions.GenerateSuggestions(s.ctx, s.actor, req)
	if err != nil {
		s.LogWarn(s.ctx, err, "Line item suggestion failed", append(s.logAttrs(), slog.String("line_item_id", itemID))...)
		return
	}
	if result == nil || len(result.Suggestions) == 0 {
		return
	}
	top := result.Suggestions[0]
	var accounts []domain.Account
	if hasAccountRefs(top) {
		accounts = s.loadChart(s.ctx)
	}
	res := ResolveSuggestionAccounts(accounts, top)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.guard.current(key, token) {
		return
	}
	current, _, ok := s.items.Find(itemID)
	if !ok {
		return
	}
	s.lineSuggestions[itemID] = result.Suggestions
	if !auto {
		return
	}
	untouched := func(f domain.LineItemField) bool {
		return s.guard.untouchedSince(lineItemFieldKey(itemID, f), marks[f])
	}
	if top.Category != "" && !top.IsNewCategory && untouched(domain.LineItemCategory) {
		current.Category = top.Category
	}
	if res.DebitAccountID != "" && untouched(domain.LineItemDebitAccountID) {
		current.DebitAccountID = res.DebitAccountID
	}
	if res.CreditAccountID != "" && untouched(domain.LineItemCreditAccountID) {
		current.CreditAccountID = res.CreditAccountID
	}
	s.items.Put(current)
	s.warnings = append(s.warnings, res.Warnings()...)
}

// AcceptSplit switches to itemized mode and asks for a split. When the
// suggestion service fails or has nothing, an even fallback split is used. An
// amount that cannot be split leaves one item holding the simple-mode values.
func (s *DraftSession) AcceptSplit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if strings.TrimSpace(s.draft.Title) == "" || strings.TrimSpace(s.draft.Amount) == "" {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrSplitMissingInfo)
	}
	s.splitPromptDone = true
	s.lastActive = s.deps.Now()

	total := accounting.ParseAmount(s.draft.Amount)
	if !total.IsPositive() {
		s.LogInfo(s.ctx, "Split requested with unusable amount, keeping entered values", s.logAttrs()...)
		s.items.Enable(&s.draft)
		s.items.Replace([]domain.LineItem{PreservingItem(s.draft)})
		s.afterChange()
		return nil
	}

	s.items.Enable(&s.draft)
	token := s.guard.issue(keySplit)
	title := s.draft.Title
	category := s.draft.Category.Name
	amount := accounting.SignedAmount(total, s.draft.Direction())
	var receiptItems []domain.ReceiptItem
	if s.receipt != nil {
		receiptItems = append(receiptItems, s.receipt.Items...)
	}
	s.afterChange()

	s.deps.Dispatcher.Go(func() {
		result, err := s.deps.Suggestions.SuggestSplit(s.ctx, s.actor, title, amount, receiptItems)
		if err != nil {
			s.LogInfo(s.ctx, "Split suggestion unavailable, using even split", append(s.logAttrs(), slog.String("error", err.Error()))...)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || !s.guard.current(keySplit, token) || !s.draft.IsItemized() {
			return
		}
		var items []domain.LineItem
		if err == nil {
			items = ItemsFromSplit(result, category)
		}
		if len(items) == 0 {
			items = FallbackSplit(title, category, total)
		}
		s.items.Replace(items)
		s.capture("split_applied", map[string]any{"items": len(items), "fallback": err != nil || result == nil || len(result.Suggestions) == 0})
		s.afterChange()
	})
	return nil
}

func hasAccountRefs(sug domain.AISuggestion) bool {
	return sug.DebitAccountID != "" || sug.DebitAccountName != "" ||
		sug.CreditAccountID != "" || sug.CreditAccountName != ""
}

func (s *DraftSession) loadChart(ctx context.Context) []domain.Account {
	accounts, err := s.deps.Persistence.ListAccounts(ctx, s.actor)
	if err != nil {
		s.LogWarn(ctx, err, "Failed to load chart of accounts", s.logAttrs()...)
		return nil
	}
	return accounts
}

func pickSuggestion(list []domain.AISuggestion, index int) (domain.AISuggestion, error) {
	if len(list) == 0 {
		return domain.AISuggestion{}, fmt.Errorf("%w: %w", apperrors.ErrNotFound, ErrNoSuggestions)
	}
	if index < 0 || index >= len(list) {
		return domain.AISuggestion{}, fmt.Errorf("%w: %w: %d", apperrors.ErrValidation, ErrSuggestionIndex, index)
	}
	return list[index], nil
}

// SelectSuggestion accepts one of the ranked whole-transaction suggestions. A
// suggestion introducing a new category waits for ConfirmNewCategory and
// applies nothing until then.
func (s *DraftSession) SelectSuggestion(ctx context.Context, index int) (*portssvc.SelectionOutcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	sug, err := pickSuggestion(s.suggestions, index)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if sug.IsNewCategory {
		s.pending = &pendingCategory{suggestion: sug}
		s.mu.Unlock()
		return &portssvc.SelectionOutcome{NeedsConfirmation: true, PendingCategory: sug.Category}, nil
	}
	s.mu.Unlock()
	return s.acceptSuggestion(ctx, "", sug), nil
}

// SelectLineItemSuggestion accepts a suggestion for one line item.
func (s *DraftSession) SelectLineItemSuggestion(ctx context.Context, itemID string, index int) (*portssvc.SelectionOutcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if _, _, ok := s.items.Find(itemID); !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: line item %s", apperrors.ErrNotFound, itemID)
	}
	sug, err := pickSuggestion(s.lineSuggestions[itemID], index)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if sug.IsNewCategory {
		s.pending = &pendingCategory{itemID: itemID, suggestion: sug}
		s.mu.Unlock()
		return &portssvc.SelectionOutcome{NeedsConfirmation: true, PendingCategory: sug.Category}, nil
	}
	s.mu.Unlock()
	return s.acceptSuggestion(ctx, itemID, sug), nil
}

// ConfirmNewCategory resolves a pending new-category suggestion. Declining
// applies nothing. Accepting adds the category to the vocabulary (a failure
// there is logged and the suggestion still applies) and then applies it.
func (s *DraftSession) ConfirmNewCategory(ctx context.Context, accept bool) (*portssvc.SelectionOutcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	p := s.pending
	s.pending = nil
	s.mu.Unlock()
	if p == nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrNotFound, ErrNoPendingCategory)
	}
	if !accept {
		s.LogDebug(ctx, "New category declined", append(s.logAttrs(), slog.String("category", p.suggestion.Category))...)
		return &portssvc.SelectionOutcome{Applied: false}, nil
	}
	if err := s.deps.Vocabulary.AddCustomCategory(ctx, s.actor, p.suggestion.Category); err != nil {
		s.LogWarn(ctx, err, "Failed to save custom category", append(s.logAttrs(), slog.String("category", p.suggestion.Category))...)
	}
	return s.acceptSuggestion(ctx, p.itemID, p.suggestion), nil
}

// acceptSuggestion copies category and resolved accounts into the draft or an
// item. Acceptance is a user decision, so the applied fields count as edits
// and later automatic results cannot overwrite them.
func (s *DraftSession) acceptSuggestion(ctx context.Context, itemID string, sug domain.AISuggestion) *portssvc.SelectionOutcome {
	var accounts []domain.Account
	if hasAccountRefs(sug) {
		accounts = s.loadChart(ctx)
	}
	res := ResolveSuggestionAccounts(accounts, sug)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &portssvc.SelectionOutcome{}
	}
	if itemID != "" {
		item, _, ok := s.items.Find(itemID)
		if !ok {
			return &portssvc.SelectionOutcome{}
		}
		if sug.Category != "" {
			item.Category = sug.Category
			s.guard.touch(lineItemFieldKey(itemID, domain.LineItemCategory))
		}
		if res.DebitAccountID != "" {
			item.DebitAccountID = res.DebitAccountID
			s.guard.touch(lineItemFieldKey(itemID, domain.LineItemDebitAccountID))
		}
		if res.CreditAccountID != "" {
			item.CreditAccountID = res.CreditAccountID
			s.guard.touch(lineItemFieldKey(itemID, domain.LineItemCreditAccountID))
		}
		s.items.Put(item)
		delete(s.lineSuggestions, itemID)
	} else {
		s.applyToDraft(sug, res)
	}

	warnings := res.Warnings()
	s.warnings = append(s.warnings, warnings...)
	s.lastActive = s.deps.Now()
	s.afterChange()
	s.capture("suggestion_applied", map[string]any{
		"line_item":    itemID != "",
		"confidence":   sug.Confidence,
		"new_category": sug.IsNewCategory,
		"unresolved":   len(res.Unresolved),
	})
	return &portssvc.SelectionOutcome{Applied: true, Warnings: warnings}
}

func (s *DraftSession) applyToDraft(sug domain.AISuggestion, res AccountResolution) {
	if sug.Category != "" {
		if sug.IsNewCategory {
			s.draft.Category = domain.NewCategory(sug.Category)
		} else {
			s.draft.Category = domain.KnownCategory(sug.Category)
		}
		s.guard.touch(domain.FieldCategory)
		s.provenance[domain.FieldCategory] = domain.ProvenanceAI
	}
	if sug.IsBusiness != nil && s.draft.Intent.IsSet() {
		s.draft.Intent = domain.IntentFor(s.draft.Direction(), *sug.IsBusiness)
	}
	if res.DebitAccountID != "" {
		s.draft.DebitAccountID = res.DebitAccountID
		s.guard.touch(domain.FieldDebitAccountID)
		s.provenance[domain.FieldDebitAccountID] = domain.ProvenanceAI
	}
	if res.CreditAccountID != "" {
		s.draft.CreditAccountID = res.CreditAccountID
		s.guard.touch(domain.FieldCreditAccountID)
		s.provenance[domain.FieldCreditAccountID] = domain.ProvenanceAI
	}
	applied := sug
	s.applied = &applied
	s.useAI = true
	s.autoSuggested = true
	s.suggestions = nil
}
