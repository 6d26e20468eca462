package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
	"github.com/SscSPs/ledger_intake/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("draft session is closed")

const (
	keyDuplicate = "duplicate"
	keySimilar   = "similar"
	keySuggest   = "suggest"
	keyAccounts  = "accounts"
	keySplit     = "split"
)

func lineItemKey(id string) string {
	return "lineItem:" + id
}

func lineItemFieldKey(id string, field domain.LineItemField) string {
	return "lineItem:" + id + ":" + string(field)
}

// SessionConfig tunes a draft session.
type SessionConfig struct {
	FutureDateLimitDays  int
	SplitAmountThreshold decimal.Decimal
	SplitMerchants       []string
	LineItemAIDebounce   time.Duration
	LookupDebounce       time.Duration
	SimilarLookupLimit   int
}

// DefaultSessionConfig returns the stock tuning.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		FutureDateLimitDays:  DefaultFutureDateLimitDays,
		SplitAmountThreshold: DefaultSplitAmountThreshold,
		SplitMerchants:       DefaultSplitMerchants,
		LineItemAIDebounce:   300 * time.Millisecond,
		LookupDebounce:       300 * time.Millisecond,
		SimilarLookupLimit:   1,
	}
}

func (c SessionConfig) withDefaults() SessionConfig {
	def := DefaultSessionConfig()
	if c.FutureDateLimitDays <= 0 {
		c.FutureDateLimitDays = def.FutureDateLimitDays
	}
	if c.SplitAmountThreshold.IsZero() {
		c.SplitAmountThreshold = def.SplitAmountThreshold
	}
	if len(c.SplitMerchants) == 0 {
		c.SplitMerchants = def.SplitMerchants
	}
	if c.LineItemAIDebounce <= 0 {
		c.LineItemAIDebounce = def.LineItemAIDebounce
	}
	if c.LookupDebounce <= 0 {
		c.LookupDebounce = def.LookupDebounce
	}
	if c.SimilarLookupLimit <= 0 {
		c.SimilarLookupLimit = def.SimilarLookupLimit
	}
	return c
}

// SessionDeps are the collaborators a session talks to. Analytics is optional.
type SessionDeps struct {
	Persistence   portssvc.PersistenceSvc
	Suggestions   portssvc.SuggestionSvc
	KnowledgeBase portssvc.KnowledgeBaseSvc
	Vocabulary    portssvc.CategoryVocabularySvc
	Analytics     portssvc.AnalyticsSvc
	Dispatcher    Dispatcher
	Now           func() time.Time
}

type pendingCategory struct {
	itemID     string
	suggestion domain.AISuggestion
}

// DraftSession owns one transaction draft and its line items for the length of
// one composition. All mutations happen under mu; collaborator calls run on the
// dispatcher and re-check their generation token before applying.
type DraftSession struct {
	BaseService
	id        string
	actor     domain.Actor
	ctx       context.Context
	cancel    context.CancelFunc
	cfg       SessionConfig
	deps      SessionDeps
	validator *DraftValidator
	splitter  *SplitHeuristic

	mu         sync.Mutex
	closed     bool
	lastActive time.Time

	draft      domain.TransactionDraft
	items      *Itemizer
	provenance map[string]domain.Provenance
	guard      *fieldGuard
	revealed   int
	useAI      bool

	suggestions     []domain.AISuggestion
	applied         *domain.AISuggestion
	autoSuggested   bool
	lineSuggestions map[string][]domain.AISuggestion
	lineRequested   map[string]bool
	pending         *pendingCategory

	duplicate          *domain.DuplicateMatch
	duplicateKey       string
	duplicateDismissed bool

	similarKey    string
	similarFound  bool
	autoPopulated bool

	splitPromptDone bool
	receipt         *domain.ReceiptOCR
	receiptApplied  bool

	warnings []string
}

var _ portssvc.DraftSessionSvc = (*DraftSession)(nil)

// NewDraftSession starts an empty draft for actor. Background work uses a
// context detached from ctx's cancellation but keeping its values (logger).
func NewDraftSession(ctx context.Context, id string, actor domain.Actor, cfg SessionConfig, deps SessionDeps) *DraftSession {
	cfg = cfg.withDefaults()
	if deps.Dispatcher == nil {
		deps.Dispatcher = NewDispatcher()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &DraftSession{
		id:              id,
		actor:           actor,
		ctx:             sessionCtx,
		cancel:          cancel,
		cfg:             cfg,
		deps:            deps,
		validator:       NewDraftValidator(cfg.FutureDateLimitDays),
		splitter:        NewSplitHeuristic(cfg.SplitAmountThreshold, cfg.SplitMerchants),
		items:           NewItemizer(),
		guard:           newFieldGuard(),
		provenance:      make(map[string]domain.Provenance),
		lineSuggestions: make(map[string][]domain.AISuggestion),
		lineRequested:   make(map[string]bool),
	}
	s.draft = domain.NewDraft(deps.Now())
	s.lastActive = deps.Now()
	return s
}

func (s *DraftSession) ID() string {
	return s.id
}

func (s *DraftSession) Actor() domain.Actor {
	return s.actor
}

// LastActive is the time of the latest user event.
func (s *DraftSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close discards the draft and stops background work. Results still in
// flight are dropped.
func (s *DraftSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.mu.Unlock()
	s.deps.Dispatcher.Stop()
}

func (s *DraftSession) logAttrs() []any {
	return []any{slog.String("session_id", s.id), slog.String("org_id", s.actor.OrgID)}
}

// userEdit records that the user set field.
func (s *DraftSession) userEdit(field string) {
	s.guard.touch(field)
	s.provenance[field] = domain.ProvenanceUser
	s.lastActive = s.deps.Now()
}

func (s *DraftSession) SetIntent(intent domain.Intent) error {
	if !intent.IsValid() {
		return fmt.Errorf("%w: unknown intent %q", apperrors.ErrValidation, intent)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Intent == intent {
		return nil
	}
	s.draft.Intent = intent
	s.userEdit(domain.FieldIntent)
	s.discardInFlight()
	s.suggestions = nil
	if !intent.IsSet() {
		s.revealed = 0
		s.autoSuggested = false
	}
	s.afterChange()
	return nil
}

// discardInFlight invalidates every outstanding lookup and suggestion.
func (s *DraftSession) discardInFlight() {
	s.guard.invalidate(keyDuplicate, keySimilar, keySuggest, keyAccounts, keySplit)
	for _, item := range s.items.Items() {
		s.guard.invalidate(lineItemKey(item.ID))
		s.deps.Dispatcher.Cancel(lineItemKey(item.ID))
	}
	s.duplicateKey = ""
	s.duplicate = nil
	s.similarKey = ""
	s.lineSuggestions = make(map[string][]domain.AISuggestion)
	s.lineRequested = make(map[string]bool)
}

func (s *DraftSession) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Title == title {
		return
	}
	s.draft.Title = title
	s.userEdit(domain.FieldTitle)
	s.duplicateDismissed = false
	if !TitleLongEnough(title) {
		s.autoPopulated = false
	}
	s.afterChange()
}

func (s *DraftSession) SetAmount(amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.Amount == amount {
		return
	}
	s.draft.Amount = amount
	s.userEdit(domain.FieldAmount)
	s.afterChange()
}

func (s *DraftSession) SetDate(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Date = domain.CalendarDate(date)
	s.userEdit(domain.FieldDate)
	s.afterChange()
}

func (s *DraftSession) SetCategory(category domain.CategoryValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category.Kind == "" {
		category = domain.KnownCategory(category.Name)
	}
	s.draft.Category = category
	s.userEdit(domain.FieldCategory)
	s.afterChange()
}

func (s *DraftSession) SetDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Description = description
	s.userEdit(domain.FieldDescription)
	s.afterChange()
}

func (s *DraftSession) SetNote(note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Note = note
	s.userEdit(domain.FieldNote)
	s.afterChange()
}

func (s *DraftSession) SetDebitAccount(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.DebitAccountID = strings.TrimSpace(accountID)
	s.userEdit(domain.FieldDebitAccountID)
	s.afterChange()
}

func (s *DraftSession) SetCreditAccount(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.CreditAccountID = strings.TrimSpace(accountID)
	s.userEdit(domain.FieldCreditAccountID)
	s.afterChange()
}

// SetUseAI toggles the AI-assisted path. While it is on, similar transactions
// no longer pre-fill the category.
func (s *DraftSession) SetUseAI(useAI bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useAI = useAI
	s.lastActive = s.deps.Now()
	s.afterChange()
}

func (s *DraftSession) EnableItemization() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Enable(&s.draft)
	s.lastActive = s.deps.Now()
	s.afterChange()
}

// DisableItemization collapses the line items into the simple-mode amount and
// category. Item suggestions in flight are dropped.
func (s *DraftSession) DisableItemization() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guard.invalidate(keySplit)
	for _, item := range s.items.Items() {
		s.guard.invalidate(lineItemKey(item.ID))
		s.deps.Dispatcher.Cancel(lineItemKey(item.ID))
	}
	hadItems := s.items.Len() > 0
	s.items.Disable(&s.draft)
	if hadItems {
		s.userEdit(domain.FieldAmount)
		s.userEdit(domain.FieldCategory)
	}
	s.lineSuggestions = make(map[string][]domain.AISuggestion)
	s.lineRequested = make(map[string]bool)
	s.afterChange()
}

func (s *DraftSession) AddLineItem() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.items.Add()
	s.guard.invalidate(keySplit)
	s.lastActive = s.deps.Now()
	s.afterChange()
	return id
}

func (s *DraftSession) RemoveLineItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Remove(id)
	s.guard.invalidate(keySplit, lineItemKey(id))
	s.deps.Dispatcher.Cancel(lineItemKey(id))
	delete(s.lineSuggestions, id)
	delete(s.lineRequested, id)
	if s.pending != nil && s.pending.itemID == id {
		s.pending = nil
	}
	s.lastActive = s.deps.Now()
	s.afterChange()
}

// UpdateLineItem sets one field of an item. Unknown item IDs are ignored;
// only an unknown field name is rejected.
func (s *DraftSession) UpdateLineItem(id string, field domain.LineItemField, value string) error {
	if !field.IsValid() {
		return fmt.Errorf("%w: unknown line item field %q", apperrors.ErrValidation, field)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.items.Update(id, field, value) {
		return nil
	}
	s.guard.touch(lineItemFieldKey(id, field))
	s.guard.invalidate(keySplit)
	s.lastActive = s.deps.Now()
	s.afterChange()
	return nil
}

// DismissDuplicate hides the current duplicate warning until the title changes.
func (s *DraftSession) DismissDuplicate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicateDismissed = true
}

// DismissSplit hides the split prompt for the rest of the session.
func (s *DraftSession) DismissSplit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.splitPromptDone = true
}

// ApplyReceiptOCR fills title, amount and date from a receipt, each only when
// the user has not provided it. Extraction is applied once per session; the
// receipt items are kept for split requests.
func (s *DraftSession) ApplyReceiptOCR(ocr domain.ReceiptOCR) {
	s.mu.Lock()
	defer s.mu.Unlock()
	receipt := ocr
	s.receipt = &receipt
	if s.receiptApplied {
		return
	}
	if strings.TrimSpace(s.draft.Title) == "" && strings.TrimSpace(ocr.Merchant) != "" {
		s.draft.Title = strings.TrimSpace(ocr.Merchant)
		s.provenance[domain.FieldTitle] = domain.ProvenanceOCR
		s.duplicateDismissed = false
	}
	if strings.TrimSpace(s.draft.Amount) == "" && ocr.Amount != nil && ocr.Amount.IsPositive() {
		s.draft.Amount = accounting.FormatAmount(ocr.Amount.Abs())
		s.provenance[domain.FieldAmount] = domain.ProvenanceOCR
	}
	if ocr.Date != nil && s.provenance[domain.FieldDate] != domain.ProvenanceUser {
		s.draft.Date = domain.CalendarDate(*ocr.Date)
		s.provenance[domain.FieldDate] = domain.ProvenanceOCR
	}
	s.receiptApplied = true
	s.afterChange()
}

// afterChange recomputes derived state and fans out lookups. Callers hold mu.
func (s *DraftSession) afterChange() {
	if s.closed {
		return
	}
	s.updateReveal()
	s.scheduleDuplicateLookup()
	s.scheduleSimilarLookup()
	s.scheduleAutoSuggest()
	s.scheduleLineItemSuggestions()
}

// completedSteps counts the leading steps of the completion sequence that are
// currently valid. Nothing counts before an intent is chosen.
func (s *DraftSession) completedSteps() int {
	if !s.draft.Intent.IsSet() {
		return 0
	}
	errs := s.validator.ValidateDraft(s.draft, s.items.Items(), s.deps.Now())
	steps := []bool{
		strings.TrimSpace(s.draft.Title) != "",
		errs[domain.FieldAmount] == "",
		errs[domain.FieldDate] == "",
		(!s.draft.IsItemized() && !s.draft.Category.IsEmpty()) || (s.draft.IsItemized() && s.items.Len() > 0),
	}
	n := 0
	for _, ok := range steps {
		if !ok {
			break
		}
		n++
	}
	return n
}

func (s *DraftSession) updateReveal() {
	if n := s.completedSteps(); n > s.revealed {
		s.revealed = n
	}
}

func (s *DraftSession) showSplitPrompt() bool {
	if s.splitPromptDone || s.draft.IsItemized() {
		return false
	}
	if strings.TrimSpace(s.draft.Title) == "" || strings.TrimSpace(s.draft.Amount) == "" {
		return false
	}
	return s.splitter.ShouldSuggestSplit(s.draft.Title, s.draft.Amount, s.draft.Direction())
}

// Snapshot returns a copy of the session state with derived values.
func (s *DraftSession) Snapshot() portssvc.DraftSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items.Items()
	itemsTotal := accounting.LineItemsTotal(items)
	txnTotal := accounting.ParseAmount(s.draft.Amount)
	n := s.completedSteps()

	snap := portssvc.DraftSnapshot{
		SessionID:       s.id,
		Draft:           s.draft,
		LineItems:       items,
		Errors:          s.validator.ValidateDraft(s.draft, items, s.deps.Now()),
		CompletedFields: append([]domain.CompletedField(nil), domain.CompletionSequence[:n]...),
		RevealedFields:  append([]domain.CompletedField(nil), domain.CompletionSequence[:s.revealed]...),
		Provenance:      make(map[string]domain.Provenance, len(s.provenance)),
		UseAI:           s.useAI,
		Suggestions:     append([]domain.AISuggestion(nil), s.suggestions...),
		ShowSplitPrompt: s.showSplitPrompt(),
		Totals: portssvc.Totals{
			LineItemsTotal:   itemsTotal,
			TransactionTotal: txnTotal,
			Difference:       accounting.TotalsDifference(itemsTotal, txnTotal),
			Match:            accounting.TotalsMatch(itemsTotal, txnTotal),
		},
		Warnings:       append([]string(nil), s.warnings...),
		ReceiptApplied: s.receiptApplied,
	}
	for k, v := range s.provenance {
		snap.Provenance[k] = v
	}
	if len(s.lineSuggestions) > 0 {
		snap.LineItemSuggestions = make(map[string][]domain.AISuggestion, len(s.lineSuggestions))
		for id, list := range s.lineSuggestions {
			snap.LineItemSuggestions[id] = append([]domain.AISuggestion(nil), list...)
		}
	}
	if s.pending != nil {
		snap.PendingNewCategory = s.pending.suggestion.Category
	}
	if s.duplicate != nil && !s.duplicateDismissed {
		match := *s.duplicate
		snap.Duplicate = &match
		snap.DuplicateRecency = match.Recency()
	}
	return snap
}

func (s *DraftSession) capture(event string, props map[string]any) {
	if s.deps.Analytics == nil {
		return
	}
	if props == nil {
		props = make(map[string]any)
	}
	props["session_id"] = s.id
	props["org_id"] = s.actor.OrgID
	s.deps.Analytics.Capture(s.actor, event, props)
}
