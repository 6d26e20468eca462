package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
	"github.com/SscSPs/ledger_intake/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock PersistenceSvc ---
type MockPersistenceSvc struct {
	mock.Mock
}

var _ portssvc.PersistenceSvc = (*MockPersistenceSvc)(nil)

func (m *MockPersistenceSvc) CreateTransaction(ctx context.Context, actor domain.Actor, submission domain.TransactionSubmission) (string, error) {
	args := m.Called(ctx, actor, submission)
	return args.String(0), args.Error(1)
}

func (m *MockPersistenceSvc) ProcessTransaction(ctx context.Context, actor domain.Actor, transactionID string) error {
	args := m.Called(ctx, actor, transactionID)
	return args.Error(0)
}

func (m *MockPersistenceSvc) FindDuplicates(ctx context.Context, actor domain.Actor, merchant string, amount decimal.Decimal, date time.Time) (*domain.DuplicateMatch, error) {
	args := m.Called(ctx, actor, merchant, amount, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuplicateMatch), args.Error(1)
}

func (m *MockPersistenceSvc) FindSimilarTransactions(ctx context.Context, actor domain.Actor, query domain.SimilarQuery) ([]domain.SimilarTransaction, error) {
	args := m.Called(ctx, actor, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SimilarTransaction), args.Error(1)
}

func (m *MockPersistenceSvc) ListAccounts(ctx context.Context, actor domain.Actor) ([]domain.Account, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// --- Mock SuggestionSvc ---
type MockSuggestionSvc struct {
	mock.Mock
}

var _ portssvc.SuggestionSvc = (*MockSuggestionSvc)(nil)

func (m *MockSuggestionSvc) GenerateSuggestions(ctx context.Context, actor domain.Actor, req domain.SuggestionRequest) (*domain.SuggestionResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SuggestionResult), args.Error(1)
}

func (m *MockSuggestionSvc) SuggestSplit(ctx context.Context, actor domain.Actor, merchant string, amount decimal.Decimal, receiptItems []domain.ReceiptItem) (*domain.SplitResult, error) {
	args := m.Called(ctx, actor, merchant, amount, receiptItems)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SplitResult), args.Error(1)
}

// --- Mock KnowledgeBaseSvc ---
type MockKnowledgeBaseSvc struct {
	mock.Mock
}

var _ portssvc.KnowledgeBaseSvc = (*MockKnowledgeBaseSvc)(nil)

func (m *MockKnowledgeBaseSvc) SaveCorrection(ctx context.Context, actor domain.Actor, correction domain.Correction) error {
	args := m.Called(ctx, actor, correction)
	return args.Error(0)
}

// --- Mock CategoryVocabularySvc ---
type MockCategoryVocabularySvc struct {
	mock.Mock
}

var _ portssvc.CategoryVocabularySvc = (*MockCategoryVocabularySvc)(nil)

func (m *MockCategoryVocabularySvc) AddCustomCategory(ctx context.Context, actor domain.Actor, name string) error {
	args := m.Called(ctx, actor, name)
	return args.Error(0)
}

// --- Mock AnalyticsSvc ---
type MockAnalyticsSvc struct {
	mock.Mock
}

var _ portssvc.AnalyticsSvc = (*MockAnalyticsSvc)(nil)

func (m *MockAnalyticsSvc) Capture(actor domain.Actor, event string, properties map[string]any) {
	m.Called(actor, event, properties)
}

// queuedDispatcher holds background work until the test drains it, so a test
// decides exactly when lookups and suggestions run.
type queuedDispatcher struct {
	mu      sync.Mutex
	queue   []func()
	pending map[string]func()
	order   []string
	stopped bool
}

var _ services.Dispatcher = (*queuedDispatcher)(nil)

func newQueuedDispatcher() *queuedDispatcher {
	return &queuedDispatcher{pending: make(map[string]func())}
}

func (d *queuedDispatcher) Go(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.queue = append(d.queue, fn)
}

func (d *queuedDispatcher) Debounce(key string, _ time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if _, ok := d.pending[key]; !ok {
		d.order = append(d.order, key)
	}
	d.pending[key] = fn
}

func (d *queuedDispatcher) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, key)
}

func (d *queuedDispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.queue = nil
	d.order = nil
	d.pending = make(map[string]func())
}

// Pending reports whether a debounced task is waiting under key.
func (d *queuedDispatcher) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

func (d *queuedDispatcher) next() (func(), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) > 0 {
		fn := d.queue[0]
		d.queue = d.queue[1:]
		return fn, true
	}
	for len(d.order) > 0 {
		key := d.order[0]
		d.order = d.order[1:]
		if fn, ok := d.pending[key]; ok {
			delete(d.pending, key)
			return fn, true
		}
	}
	return nil, false
}

// RunAll drains the queue, including work scheduled by the tasks it runs.
func (d *queuedDispatcher) RunAll() {
	for i := 0; i < 1000; i++ {
		fn, ok := d.next()
		if !ok {
			return
		}
		fn()
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
