package domain

import (
	"strings"
	"time"
)

// EntryMode selects between a single amount+category and an itemized breakdown.
type EntryMode string

const (
	EntrySimple   EntryMode = "simple"
	EntryItemized EntryMode = "itemized"
)

// CategoryKind tags whether a category comes from the user's vocabulary or is novel.
type CategoryKind string

const (
	CategoryKnown CategoryKind = "known"
	CategoryNew   CategoryKind = "new"
)

// CategoryValue is a category reference. A "new" category has not been added
// to the user's vocabulary yet and needs confirmation before it is persisted.
type CategoryValue struct {
	Kind CategoryKind `json:"kind,omitempty"`
	Name string       `json:"name"`
}

// KnownCategory builds a category that already exists in the vocabulary.
func KnownCategory(name string) CategoryValue {
	if strings.TrimSpace(name) == "" {
		return CategoryValue{}
	}
	return CategoryValue{Kind: CategoryKnown, Name: name}
}

// NewCategory builds a category that is not in the vocabulary yet.
func NewCategory(name string) CategoryValue {
	if strings.TrimSpace(name) == "" {
		return CategoryValue{}
	}
	return CategoryValue{Kind: CategoryNew, Name: name}
}

// IsEmpty reports whether no category is set.
func (c CategoryValue) IsEmpty() bool {
	return strings.TrimSpace(c.Name) == ""
}

// String returns the category display name.
func (c CategoryValue) String() string {
	return c.Name
}

// TransactionDraft is the mutable working record for one transaction being composed.
type TransactionDraft struct {
	Intent          Intent        `json:"intent"`
	Title           string        `json:"title"`  // merchant / payee
	Amount          string        `json:"amount"` // decimal string, transaction total
	Date            time.Time     `json:"date"`
	Category        CategoryValue `json:"category"`
	Description     string        `json:"description"`
	Note            string        `json:"note"`
	DebitAccountID  string        `json:"debitAccountId"`
	CreditAccountID string        `json:"creditAccountId"`
	EntryMode       EntryMode     `json:"entryMode"`
}

// Direction is derived from the intent.
func (d TransactionDraft) Direction() Direction {
	return d.Intent.Direction()
}

// IsBusiness is derived from the intent.
func (d TransactionDraft) IsBusiness() bool {
	return d.Intent.IsBusiness()
}

// IsItemized reports whether the draft is in itemized mode.
func (d TransactionDraft) IsItemized() bool {
	return d.EntryMode == EntryItemized
}

// NewDraft returns an empty simple-mode draft dated on the given day.
func NewDraft(today time.Time) TransactionDraft {
	return TransactionDraft{
		Date:      CalendarDate(today),
		EntryMode: EntrySimple,
	}
}

// CalendarDate truncates a timestamp to midnight UTC of its calendar day.
func CalendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CompletedField is one step of the progressive-disclosure sequence.
type CompletedField string

const (
	CompletedWhere    CompletedField = "where"
	CompletedAmount   CompletedField = "amount"
	CompletedWhen     CompletedField = "when"
	CompletedCategory CompletedField = "category"
)

// CompletionSequence is the fixed order in which inputs are revealed.
var CompletionSequence = []CompletedField{CompletedWhere, CompletedAmount, CompletedWhen, CompletedCategory}
