package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/SscSPs/ledger_intake/internal/utils/accounting"
)

var (
	// ErrNoSuggestions is returned when a selection is made with no suggestion list available.
	ErrNoSuggestions = errors.New("no suggestions available")
	// ErrSuggestionIndex is returned for a selection outside the suggestion list.
	ErrSuggestionIndex = errors.New("suggestion index out of range")
	// ErrNoPendingCategory is returned when confirming without a pending new-category suggestion.
	ErrNoPendingCategory = errors.New("no new category awaiting confirmation")
)

// UnresolvedAccount is a warning for an account reference that matched nothing in the chart.
type UnresolvedAccount struct {
	Side        domain.TransactionType
	AccountID   string
	AccountName string
}

func (u UnresolvedAccount) String() string {
	side := "debit"
	if u.Side == domain.Credit {
		side = "credit"
	}
	if u.AccountName != "" {
		return fmt.Sprintf("suggested %s account %q (%s) was not found; select it manually", side, u.AccountName, u.AccountID)
	}
	return fmt.Sprintf("suggested %s account %s was not found; select it manually", side, u.AccountID)
}

// ResolveAccount maps a suggested account onto the chart: by ID first, then by
// display name (case and surrounding space ignored). Inactive accounts never match.
func ResolveAccount(accounts []domain.Account, accountID, accountName string) (string, bool) {
	accountID = strings.TrimSpace(accountID)
	if accountID != "" {
		for _, a := range accounts {
			if a.IsActive && a.AccountID == accountID {
				return a.AccountID, true
			}
		}
	}
	name := strings.TrimSpace(accountName)
	if name == "" {
		return "", false
	}
	for _, a := range accounts {
		if a.IsActive && strings.EqualFold(strings.TrimSpace(a.Name), name) {
			return a.AccountID, true
		}
	}
	return "", false
}

// AccountResolution is the outcome of resolving both sides of a suggestion.
type AccountResolution struct {
	DebitAccountID  string
	CreditAccountID string
	Unresolved      []UnresolvedAccount
}

// ResolveSuggestionAccounts resolves the debit and credit references of s.
// A side the suggestion leaves empty is neither resolved nor reported.
func ResolveSuggestionAccounts(accounts []domain.Account, s domain.AISuggestion) AccountResolution {
	var res AccountResolution
	if s.DebitAccountID != "" || s.DebitAccountName != "" {
		if id, ok := ResolveAccount(accounts, s.DebitAccountID, s.DebitAccountName); ok {
			res.DebitAccountID = id
		} else {
			res.Unresolved = append(res.Unresolved, UnresolvedAccount{Side: domain.Debit, AccountID: s.DebitAccountID, AccountName: s.DebitAccountName})
		}
	}
	if s.CreditAccountID != "" || s.CreditAccountName != "" {
		if id, ok := ResolveAccount(accounts, s.CreditAccountID, s.CreditAccountName); ok {
			res.CreditAccountID = id
		} else {
			res.Unresolved = append(res.Unresolved, UnresolvedAccount{Side: domain.Credit, AccountID: s.CreditAccountID, AccountName: s.CreditAccountName})
		}
	}
	return res
}

// Warnings renders the unresolved references for display.
func (r AccountResolution) Warnings() []string {
	if len(r.Unresolved) == 0 {
		return nil
	}
	out := make([]string, len(r.Unresolved))
	for i, u := range r.Unresolved {
		out[i] = u.String()
	}
	return out
}

// TransactionSuggestionRequest builds the whole-transaction request. The
// amount carries the direction sign.
func TransactionSuggestionRequest(draft domain.TransactionDraft, userDescription string) domain.SuggestionRequest {
	return domain.SuggestionRequest{
		Description:     draft.Title,
		Amount:          accounting.SignedAmount(accounting.ParseAmount(draft.Amount), draft.Direction()),
		Date:            draft.Date,
		Merchant:        draft.Title,
		Category:        draft.Category.Name,
		IsBusiness:      draft.IsBusiness(),
		UserDescription: firstNonEmpty(userDescription, draft.Description),
	}
}

// AccountSuggestionRequest builds the narrower account-only request, passing
// any accounts the user already picked as overrides.
func AccountSuggestionRequest(draft domain.TransactionDraft) domain.SuggestionRequest {
	req := TransactionSuggestionRequest(draft, "")
	req.OverrideDebitAccountID = draft.DebitAccountID
	req.OverrideCreditAccountID = draft.CreditAccountID
	return req
}

// LineItemSuggestionRequest scopes the request to one line item.
func LineItemSuggestionRequest(draft domain.TransactionDraft, item domain.LineItem) domain.SuggestionRequest {
	return domain.SuggestionRequest{
		Description: item.Description,
		Amount:      accounting.SignedAmount(accounting.ParseAmount(item.Amount), draft.Direction()),
		Date:        draft.Date,
		Merchant:    draft.Title,
		Category:    item.Category,
		IsBusiness:  draft.IsBusiness(),
	}
}

// LineItemSuggestionReady reports whether an item may auto-request suggestions.
func LineItemSuggestionReady(item domain.LineItem) bool {
	return TitleLongEnough(item.Description) && accounting.IsValidAmount(item.Amount)
}

// FullDescription joins title and free-text description as "<title>. <description>".
func FullDescription(title, description string) string {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if description == "" {
		return title
	}
	return title + ". " + description
}

// BuildCorrection compares the submitted values with the suggestion that was
// applied. It returns nil when there is nothing to learn from.
func BuildCorrection(draft domain.TransactionDraft, applied *domain.AISuggestion) *domain.Correction {
	if applied == nil {
		return nil
	}
	category := draft.Category.Name
	categoryChanged := applied.Category != "" && category != applied.Category
	accountsChanged := draft.DebitAccountID != "" && draft.CreditAccountID != "" &&
		(draft.DebitAccountID != applied.DebitAccountID || draft.CreditAccountID != applied.CreditAccountID)
	described := strings.TrimSpace(draft.Description) != ""
	if !categoryChanged && !accountsChanged && !described {
		return nil
	}

	confidence := applied.Confidence
	return &domain.Correction{
		Merchant:                 draft.Title,
		Description:              FullDescription(draft.Title, draft.Description),
		OriginalCategory:         applied.Category,
		CorrectedCategory:        firstNonEmpty(category, applied.Category),
		OriginalDebitAccountID:   applied.DebitAccountID,
		CorrectedDebitAccountID:  draft.DebitAccountID,
		OriginalCreditAccountID:  applied.CreditAccountID,
		CorrectedCreditAccountID: draft.CreditAccountID,
		UserDescription:          strings.TrimSpace(draft.Description),
		Direction:                draft.Direction(),
		IsBusiness:               draft.IsBusiness(),
		Confidence:               &confidence,
	}
}
