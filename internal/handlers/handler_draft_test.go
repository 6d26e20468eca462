package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
	"github.com/SscSPs/ledger_intake/internal/core/services"
	"github.com/SscSPs/ledger_intake/internal/dto"
	"github.com/SscSPs/ledger_intake/internal/handlers"
	"github.com/SscSPs/ledger_intake/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock DraftSessionManagerSvc ---
type MockSessionManager struct {
	mock.Mock
}

var _ portssvc.DraftSessionManagerSvc = (*MockSessionManager)(nil)

func (m *MockSessionManager) Open(ctx context.Context, actor domain.Actor) (portssvc.DraftSessionSvc, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(portssvc.DraftSessionSvc), args.Error(1)
}

func (m *MockSessionManager) Get(actor domain.Actor, sessionID string) (portssvc.DraftSessionSvc, error) {
	args := m.Called(actor, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(portssvc.DraftSessionSvc), args.Error(1)
}

func (m *MockSessionManager) Close(actor domain.Actor, sessionID string) error {
	args := m.Called(actor, sessionID)
	return args.Error(0)
}

// --- Mock DraftSessionSvc ---
type MockDraftSession struct {
	mock.Mock
}

var _ portssvc.DraftSessionSvc = (*MockDraftSession)(nil)

func (m *MockDraftSession) ID() string { return m.Called().String(0) }

func (m *MockDraftSession) Actor() domain.Actor { return m.Called().Get(0).(domain.Actor) }

func (m *MockDraftSession) Snapshot() portssvc.DraftSnapshot {
	return m.Called().Get(0).(portssvc.DraftSnapshot)
}

func (m *MockDraftSession) SetIntent(intent domain.Intent) error {
	return m.Called(intent).Error(0)
}

func (m *MockDraftSession) SetTitle(title string)                     { m.Called(title) }
func (m *MockDraftSession) SetAmount(amount string)                   { m.Called(amount) }
func (m *MockDraftSession) SetDate(date time.Time)                    { m.Called(date) }
func (m *MockDraftSession) SetCategory(category domain.CategoryValue) { m.Called(category) }
func (m *MockDraftSession) SetDescription(description string)         { m.Called(description) }
func (m *MockDraftSession) SetNote(note string)                       { m.Called(note) }
func (m *MockDraftSession) SetDebitAccount(accountID string)          { m.Called(accountID) }
func (m *MockDraftSession) SetCreditAccount(accountID string)         { m.Called(accountID) }
func (m *MockDraftSession) SetUseAI(useAI bool)                       { m.Called(useAI) }
func (m *MockDraftSession) EnableItemization()                        { m.Called() }
func (m *MockDraftSession) DisableItemization()                       { m.Called() }
func (m *MockDraftSession) AddLineItem() string                       { return m.Called().String(0) }
func (m *MockDraftSession) RemoveLineItem(id string)                  { m.Called(id) }
func (m *MockDraftSession) DismissDuplicate()                         { m.Called() }
func (m *MockDraftSession) DismissSplit()                             { m.Called() }
func (m *MockDraftSession) ApplyReceiptOCR(ocr domain.ReceiptOCR)     { m.Called(ocr) }

func (m *MockDraftSession) UpdateLineItem(id string, field domain.LineItemField, value string) error {
	return m.Called(id, field, value).Error(0)
}

func (m *MockDraftSession) AcceptSplit() error { return m.Called().Error(0) }

func (m *MockDraftSession) RequestSuggestions(userDescription string) error {
	return m.Called(userDescription).Error(0)
}

func (m *MockDraftSession) RequestAccountSuggestions() error { return m.Called().Error(0) }

func (m *MockDraftSession) RequestLineItemSuggestions(itemID string) error {
	return m.Called(itemID).Error(0)
}

func (m *MockDraftSession) SelectSuggestion(ctx context.Context, index int) (*portssvc.SelectionOutcome, error) {
	args := m.Called(ctx, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.SelectionOutcome), args.Error(1)
}

func (m *MockDraftSession) SelectLineItemSuggestion(ctx context.Context, itemID string, index int) (*portssvc.SelectionOutcome, error) {
	args := m.Called(ctx, itemID, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.SelectionOutcome), args.Error(1)
}

func (m *MockDraftSession) ConfirmNewCategory(ctx context.Context, accept bool) (*portssvc.SelectionOutcome, error) {
	args := m.Called(ctx, accept)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.SelectionOutcome), args.Error(1)
}

func (m *MockDraftSession) Submit(ctx context.Context, mode portssvc.SubmitMode) (*portssvc.SubmitResult, error) {
	args := m.Called(ctx, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.SubmitResult), args.Error(1)
}

// --- Mock PersistenceSvc (reference routes only list accounts) ---
type MockPersistenceSvc struct {
	mock.Mock
}

var _ portssvc.PersistenceSvc = (*MockPersistenceSvc)(nil)

func (m *MockPersistenceSvc) CreateTransaction(ctx context.Context, actor domain.Actor, submission domain.TransactionSubmission) (string, error) {
	args := m.Called(ctx, actor, submission)
	return args.String(0), args.Error(1)
}

func (m *MockPersistenceSvc) ProcessTransaction(ctx context.Context, actor domain.Actor, transactionID string) error {
	return m.Called(ctx, actor, transactionID).Error(0)
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

type MockCategoryVocabularySvc struct {
	mock.Mock
}

var _ portssvc.CategoryVocabularySvc = (*MockCategoryVocabularySvc)(nil)

func (m *MockCategoryVocabularySvc) AddCustomCategory(ctx context.Context, actor domain.Actor, name string) error {
	return m.Called(ctx, actor, name).Error(0)
}

const (
	testJWTSecret = "test-secret"
	testIssuer    = "ledger-intake-test"
)

type DraftHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	manager     *MockSessionManager
	session     *MockDraftSession
	persistence *MockPersistenceSvc
	vocabulary  *MockCategoryVocabularySvc
	actor       domain.Actor
	token       string
	snapshot    portssvc.DraftSnapshot
}

func generateTestToken(subject, orgID string) (string, error) {
	claims := middleware.Claims{
		OrgID: orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    testIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
}

func (s *DraftHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.manager = new(MockSessionManager)
	s.session = new(MockDraftSession)
	s.persistence = new(MockPersistenceSvc)
	s.vocabulary = new(MockCategoryVocabularySvc)
	s.actor = domain.Actor{UserID: "user-1", OrgID: "org-1"}
	s.snapshot = portssvc.DraftSnapshot{SessionID: "sess-1", Draft: domain.TransactionDraft{Title: "Starbucks"}}

	token, err := generateTestToken(s.actor.UserID, s.actor.OrgID)
	s.Require().NoError(err)
	s.token = token

	s.router = gin.New()
	v1 := s.router.Group("/api/v1", middleware.AuthMiddleware(testJWTSecret, testIssuer))
	handlers.RegisterDraftRoutes(v1, s.manager)
	handlers.RegisterReferenceRoutes(v1, s.persistence, s.vocabulary)
}

func (s *DraftHandlerTestSuite) TearDownTest() {
	s.manager.AssertExpectations(s.T())
	s.session.AssertExpectations(s.T())
	s.persistence.AssertExpectations(s.T())
	s.vocabulary.AssertExpectations(s.T())
}

func TestDraftHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(DraftHandlerTestSuite))
}

func (s *DraftHandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, "/api/v1"+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *DraftHandlerTestSuite) expectSession() {
	s.manager.On("Get", s.actor, "sess-1").Return(s.session, nil).Once()
}

func (s *DraftHandlerTestSuite) TestRequiresToken() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/drafts", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *DraftHandlerTestSuite) TestRejectsTokenWithoutOrg() {
	token, err := generateTestToken("user-1", "")
	s.Require().NoError(err)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/drafts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *DraftHandlerTestSuite) TestOpenDraft() {
	s.manager.On("Open", mock.Anything, s.actor).Return(s.session, nil).Once()
	s.session.On("ID").Return("sess-1")
	s.session.On("Snapshot").Return(s.snapshot).Once()

	w := s.do(http.MethodPost, "/drafts", nil)

	s.Equal(http.StatusCreated, w.Code)
	var got struct {
		SessionID string `json:"sessionId"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Equal("sess-1", got.SessionID)
}

func (s *DraftHandlerTestSuite) TestGetDraft_NotFoundAndForbidden() {
	s.manager.On("Get", s.actor, "sess-x").Return(nil, fmt.Errorf("%w: %w", apperrors.ErrNotFound, services.ErrSessionNotFound)).Once()
	w := s.do(http.MethodGet, "/drafts/sess-x", nil)
	s.Equal(http.StatusNotFound, w.Code)

	s.manager.On("Get", s.actor, "sess-y").Return(nil, fmt.Errorf("%w: session belongs to another user", apperrors.ErrForbidden)).Once()
	w = s.do(http.MethodGet, "/drafts/sess-y", nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *DraftHandlerTestSuite) TestUpdateDraft_AppliesPresentFields() {
	s.expectSession()
	s.session.On("SetIntent", domain.IntentPersonalExpense).Return(nil).Once()
	s.session.On("SetTitle", "Starbucks").Once()
	s.session.On("SetAmount", "12.50").Once()
	s.session.On("SetDate", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)).Once()
	s.session.On("SetCategory", domain.NewCategory("Coffee")).Once()
	s.session.On("Snapshot").Return(s.snapshot).Once()

	w := s.do(http.MethodPatch, "/drafts/sess-1", gin.H{
		"intent":   "personal_expense",
		"title":    "Starbucks",
		"amount":   "12.50",
		"date":     "2025-03-14",
		"category": gin.H{"name": "Coffee", "isNew": true},
	})

	s.Equal(http.StatusOK, w.Code)
	s.session.AssertNotCalled(s.T(), "SetNote", mock.Anything)
}

func (s *DraftHandlerTestSuite) TestUpdateDraft_RejectsBadInput() {
	s.manager.On("Get", s.actor, "sess-1").Return(s.session, nil).Twice()

	w := s.do(http.MethodPatch, "/drafts/sess-1", gin.H{"intent": "gift"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/drafts/sess-1", gin.H{"date": "14/03/2025"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.session.AssertNotCalled(s.T(), "SetIntent", mock.Anything)
}

func (s *DraftHandlerTestSuite) TestUpdateLineItem_UnknownField() {
	s.expectSession()
	s.session.On("UpdateLineItem", "li-1", domain.LineItemField("colour"), "red").
		Return(fmt.Errorf("%w: unknown line item field %q", apperrors.ErrValidation, "colour")).Once()

	w := s.do(http.MethodPatch, "/drafts/sess-1/line-items/li-1", gin.H{"field": "colour", "value": "red"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *DraftHandlerTestSuite) TestRequestSuggestions_Accepted() {
	s.expectSession()
	s.session.On("RequestSuggestions", "team lunch").Return(nil).Once()
	s.session.On("Snapshot").Return(s.snapshot).Once()

	w := s.do(http.MethodPost, "/drafts/sess-1/suggestions", gin.H{"userDescription": "team lunch"})
	s.Equal(http.StatusAccepted, w.Code)
}

func (s *DraftHandlerTestSuite) TestRequestSuggestions_EmptyBody() {
	s.expectSession()
	s.session.On("RequestSuggestions", "").Return(fmt.Errorf("%w: enter the transaction details before asking for suggestions", apperrors.ErrValidation)).Once()

	w := s.do(http.MethodPost, "/drafts/sess-1/suggestions", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *DraftHandlerTestSuite) TestSelectSuggestion() {
	s.expectSession()
	w := s.do(http.MethodPost, "/drafts/sess-1/suggestions/abc/select", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	s.expectSession()
	s.session.On("SelectSuggestion", mock.Anything, 1).Return(&portssvc.SelectionOutcome{NeedsConfirmation: true, PendingCategory: "Pet Care"}, nil).Once()
	s.session.On("Snapshot").Return(s.snapshot).Once()
	w = s.do(http.MethodPost, "/drafts/sess-1/suggestions/1/select", nil)
	s.Equal(http.StatusOK, w.Code)

	var got struct {
		NeedsConfirmation bool   `json:"needsConfirmation"`
		PendingCategory   string `json:"pendingCategory"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.True(got.NeedsConfirmation)
	s.Equal("Pet Care", got.PendingCategory)
}

func (s *DraftHandlerTestSuite) TestConfirmCategory_NothingPending() {
	s.expectSession()
	s.session.On("ConfirmNewCategory", mock.Anything, true).Return(nil, fmt.Errorf("%w: %w", apperrors.ErrNotFound, services.ErrNoPendingCategory)).Once()

	w := s.do(http.MethodPost, "/drafts/sess-1/category/confirm", gin.H{"accept": true})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *DraftHandlerTestSuite) TestSubmit_ValidationErrors() {
	s.expectSession()
	fieldErrs := services.ErrorSet{domain.FieldTitle: "Where did you spend this?"}
	s.session.On("Submit", mock.Anything, portssvc.SubmitAndClose).Return(nil, &services.SubmitValidationError{Errors: fieldErrs}).Once()

	w := s.do(http.MethodPost, "/drafts/sess-1/submit", gin.H{"mode": "close"})

	s.Equal(http.StatusBadRequest, w.Code)
	var got dto.ValidationErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Equal("Where did you spend this?", got.Errors[domain.FieldTitle])
}

func (s *DraftHandlerTestSuite) TestSubmit_Created() {
	s.expectSession()
	s.session.On("Submit", mock.Anything, portssvc.SubmitAndAddAnother).Return(&portssvc.SubmitResult{TransactionID: "txn-1"}, nil).Once()
	s.session.On("Snapshot").Return(s.snapshot).Once()

	w := s.do(http.MethodPost, "/drafts/sess-1/submit", gin.H{"mode": "add_another"})

	s.Equal(http.StatusCreated, w.Code)
	var got struct {
		TransactionID string `json:"transactionId"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Equal("txn-1", got.TransactionID)
}

func (s *DraftHandlerTestSuite) TestSubmit_PersistenceFailureIsHidden() {
	s.expectSession()
	s.session.On("Submit", mock.Anything, portssvc.SubmitMode("")).Return(nil, errors.New("failed to save transaction: pq: connection refused")).Once()

	w := s.do(http.MethodPost, "/drafts/sess-1/submit", nil)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "connection refused")
}

func (s *DraftHandlerTestSuite) TestCloseDraft() {
	s.manager.On("Close", s.actor, "sess-1").Return(nil).Once()
	w := s.do(http.MethodDelete, "/drafts/sess-1", nil)
	s.Equal(http.StatusNoContent, w.Code)
}

func (s *DraftHandlerTestSuite) TestListAccounts() {
	s.persistence.On("ListAccounts", mock.Anything, s.actor).Return([]domain.Account{
		{AccountID: "acc-cash", Name: "Checking", AccountType: domain.Asset, IsActive: true},
	}, nil).Once()

	w := s.do(http.MethodGet, "/accounts", nil)

	s.Equal(http.StatusOK, w.Code)
	var got dto.ListAccountsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Len(got.Accounts, 1)
}

func (s *DraftHandlerTestSuite) TestCreateCategory() {
	s.vocabulary.On("AddCustomCategory", mock.Anything, s.actor, "Pet Care").Return(nil).Once()
	w := s.do(http.MethodPost, "/categories", gin.H{"name": "Pet Care"})
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, "/categories", gin.H{})
	s.Equal(http.StatusBadRequest, w.Code)
}
