package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// CategoryInput names a category and whether it is new to the user's vocabulary.
type CategoryInput struct {
	Name  string `json:"name"`
	IsNew bool   `json:"isNew"`
}

// ToDomain converts the input to a category value.
func (c CategoryInput) ToDomain() domain.CategoryValue {
	if c.IsNew {
		return domain.NewCategory(c.Name)
	}
	return domain.KnownCategory(c.Name)
}

// UpdateDraftRequest carries field edits. Nil fields are left untouched and
// edits are applied in declaration order.
type UpdateDraftRequest struct {
	Intent          *domain.Intent `json:"intent" binding:"omitempty,oneof=business_expense personal_expense business_income personal_income"`
	Title           *string        `json:"title"`
	Amount          *string        `json:"amount"`
	Date            *string        `json:"date"` // YYYY-MM-DD
	Category        *CategoryInput `json:"category"`
	Description     *string        `json:"description"`
	Note            *string        `json:"note"`
	DebitAccountID  *string        `json:"debitAccountId"`
	CreditAccountID *string        `json:"creditAccountId"`
	UseAI           *bool          `json:"useAI"`
}

// ParsedDate returns the requested date, or the zero time when none was sent.
func (r UpdateDraftRequest) ParsedDate() (time.Time, error) {
	if r.Date == nil || *r.Date == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, *r.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// SetItemizationRequest toggles itemized entry.
type SetItemizationRequest struct {
	Enabled bool `json:"enabled"`
}

// UpdateLineItemRequest sets one field of a line item.
type UpdateLineItemRequest struct {
	Field domain.LineItemField `json:"field" binding:"required"`
	Value string               `json:"value"`
}

// AddLineItemResponse returns the new item's ID with the refreshed draft.
type AddLineItemResponse struct {
	LineItemID string                 `json:"lineItemId"`
	Draft      portssvc.DraftSnapshot `json:"draft"`
}

// ReceiptItemInput is one OCR'd receipt line.
type ReceiptItemInput struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    *float64        `json:"quantity"`
}

// ApplyReceiptRequest carries an OCR extraction result.
type ApplyReceiptRequest struct {
	Merchant string             `json:"merchant"`
	Amount   *decimal.Decimal   `json:"amount"`
	Date     *string            `json:"date"` // YYYY-MM-DD
	Items    []ReceiptItemInput `json:"items" binding:"dive"`
}

// ToDomain converts the request to an OCR result.
func (r ApplyReceiptRequest) ToDomain() (domain.ReceiptOCR, error) {
	ocr := domain.ReceiptOCR{Merchant: r.Merchant, Amount: r.Amount}
	if r.Date != nil && *r.Date != "" {
		t, err := time.Parse(DateLayout, *r.Date)
		if err != nil {
			return domain.ReceiptOCR{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
		ocr.Date = &t
	}
	for _, it := range r.Items {
		ocr.Items = append(ocr.Items, domain.ReceiptItem{
			Description: it.Description,
			Amount:      it.Amount,
			Quantity:    it.Quantity,
		})
	}
	return ocr, nil
}

// RequestSuggestionsRequest asks for category/account suggestions.
type RequestSuggestionsRequest struct {
	UserDescription string `json:"userDescription"`
}

// ConfirmCategoryRequest answers the new-category confirmation.
type ConfirmCategoryRequest struct {
	Accept bool `json:"accept"`
}

// SubmitDraftRequest submits the draft.
type SubmitDraftRequest struct {
	Mode portssvc.SubmitMode `json:"mode" binding:"omitempty,oneof=close add_another"`
}

// SubmitDraftResponse is returned by a successful submission.
type SubmitDraftResponse struct {
	portssvc.SubmitResult
	Draft portssvc.DraftSnapshot `json:"draft"`
}

// SelectionResponse pairs a selection outcome with the refreshed draft.
type SelectionResponse struct {
	portssvc.SelectionOutcome
	Draft portssvc.DraftSnapshot `json:"draft"`
}

// ValidationErrorResponse lists per-field messages that blocked a request.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors"`
}
