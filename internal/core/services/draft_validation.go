package services

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/SscSPs/ledger_intake/internal/utils/accounting"
	"github.com/go-playground/validator/v10"
)

// DefaultFutureDateLimitDays bounds how far ahead a transaction may be dated.
const DefaultFutureDateLimitDays = 30

// ErrorSet maps a field key to a user-facing message.
type ErrorSet map[string]string

// HasErrors reports whether any rule failed.
func (e ErrorSet) HasErrors() bool {
	return len(e) > 0
}

// Err returns nil for an empty set, otherwise an ErrValidation listing the failing fields.
func (e ErrorSet) Err() error {
	if !e.HasErrors() {
		return nil
	}
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("%w: invalid fields %s", apperrors.ErrValidation, strings.Join(keys, ", "))
}

// LineItemErrorKey builds the key used for a line item field error.
func LineItemErrorKey(index int, field domain.LineItemField) string {
	return fmt.Sprintf("lineItem_%d_%s", index, field)
}

type draftRules struct {
	Title    string    `json:"title" validate:"required"`
	Amount   string    `json:"amount" validate:"required,decimal_gt0"`
	Date     time.Time `json:"date" validate:"required,ltefield=Latest"`
	Category string    `json:"category" validate:"required_if=Itemized false"`
	Itemized bool      `json:"-"`
	Latest   time.Time `json:"-"`
}

type lineItemRules struct {
	Description string `json:"description" validate:"required"`
	Amount      string `json:"amount" validate:"decimal_gt0"`
	Tax         string `json:"tax" validate:"omitempty,decimal_gte0"`
	Tip         string `json:"tip" validate:"omitempty,decimal_gte0"`
}

var draftMessages = map[string]string{
	"title.required":       "Where did you spend this?",
	"amount.required":      "How much was the total?",
	"amount.decimal_gt0":   "Please enter an amount greater than $0.00",
	"date.required":        "What day did this happen?",
	"date.ltefield":        "This date seems to be in the future, mind double-checking?",
	"category.required_if": "Want help choosing a category?",
}

var lineItemMessages = map[string]string{
	"description": "All line items must have a description.",
	"amount":      "All line items must have a valid amount greater than 0.",
	"tax":         "Tax must be zero or more.",
	"tip":         "Tip must be zero or more.",
}

const lineItemsRequiredMessage = "Please add at least one line item to itemize this receipt."

// DraftValidator evaluates the draft rules. It is safe for concurrent use.
type DraftValidator struct {
	validate        *validator.Validate
	futureDateLimit int
}

// NewDraftValidator builds a validator with the custom decimal rules registered.
func NewDraftValidator(futureDateLimitDays int) *DraftValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("decimal_gt0", validateDecimalGT0)
	_ = v.RegisterValidation("decimal_gte0", validateDecimalGTE0)

	if futureDateLimitDays <= 0 {
		futureDateLimitDays = DefaultFutureDateLimitDays
	}
	return &DraftValidator{validate: v, futureDateLimit: futureDateLimitDays}
}

func validateDecimalGT0(fl validator.FieldLevel) bool {
	return accounting.IsValidAmount(fl.Field().String())
}

func validateDecimalGTE0(fl validator.FieldLevel) bool {
	return accounting.IsWellFormedAmount(fl.Field().String())
}

// ValidateDraft returns every failing rule for the draft in its current mode.
// now anchors the future-date limit.
func (v *DraftValidator) ValidateDraft(draft domain.TransactionDraft, items []domain.LineItem, now time.Time) ErrorSet {
	errs := ErrorSet{}

	rules := draftRules{
		Title:    strings.TrimSpace(draft.Title),
		Amount:   strings.TrimSpace(draft.Amount),
		Date:     draft.Date,
		Category: strings.TrimSpace(draft.Category.Name),
		Itemized: draft.IsItemized(),
		Latest:   domain.CalendarDate(now).AddDate(0, 0, v.futureDateLimit),
	}
	v.collect(rules, errs, func(field, tag string) (string, string) {
		return field, draftMessages[field+"."+tag]
	})

	if !draft.IsItemized() {
		return errs
	}
	if len(items) == 0 {
		errs[domain.FieldLineItems] = lineItemsRequiredMessage
		return errs
	}
	for i, item := range items {
		itemRules := lineItemRules{
			Description: strings.TrimSpace(item.Description),
			Amount:      item.Amount,
			Tax:         strings.TrimSpace(item.Tax),
			Tip:         strings.TrimSpace(item.Tip),
		}
		v.collect(itemRules, errs, func(field, _ string) (string, string) {
			return LineItemErrorKey(i, domain.LineItemField(field)), lineItemMessages[field]
		})
	}
	return errs
}

func (v *DraftValidator) collect(rules any, errs ErrorSet, describe func(field, tag string) (string, string)) {
	err := v.validate.Struct(rules)
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["form"] = err.Error()
		return
	}
	for _, fe := range fieldErrs {
		key, msg := describe(fe.Field(), fe.Tag())
		if _, exists := errs[key]; exists {
			continue
		}
		if msg == "" {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		errs[key] = msg
	}
}
