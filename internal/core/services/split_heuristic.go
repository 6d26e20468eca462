package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/SscSPs/ledger_intake/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ErrSplitMissingInfo is returned when a split is requested without a merchant or amount.
var ErrSplitMissingInfo = errors.New("missing information: enter a merchant name and amount first")

const (
	fallbackCategory     = "Other"
	fallbackItemLabel    = "Item"
	fallbackSplitParts   = 2
	fallbackSplitPartsXL = 3
)

// DefaultSplitAmountThreshold is the amount above which an expense is worth itemizing.
var DefaultSplitAmountThreshold = decimal.NewFromInt(200)

// DefaultSplitLargeTotal is the total above which the fallback split uses three parts.
var DefaultSplitLargeTotal = decimal.NewFromInt(500)

// DefaultSplitMerchants are big-box and marketplace names whose receipts usually mix categories.
var DefaultSplitMerchants = []string{
	"costco", "walmart", "target", "amazon", "sam's club", "bj's",
	"home depot", "lowe's", "best buy", "kroger", "ikea",
}

// SplitHeuristic decides when to offer itemization and builds split line items.
type SplitHeuristic struct {
	threshold decimal.Decimal
	merchants []string
}

// NewSplitHeuristic lower-cases the merchant list. A zero threshold falls back to the default.
func NewSplitHeuristic(threshold decimal.Decimal, merchants []string) *SplitHeuristic {
	if threshold.IsZero() {
		threshold = DefaultSplitAmountThreshold
	}
	if len(merchants) == 0 {
		merchants = DefaultSplitMerchants
	}
	lowered := make([]string, 0, len(merchants))
	for _, m := range merchants {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			lowered = append(lowered, m)
		}
	}
	return &SplitHeuristic{threshold: threshold, merchants: lowered}
}

// ShouldSuggestSplit is true for a positive expense that is either large or from a listed merchant.
func (h *SplitHeuristic) ShouldSuggestSplit(title, amount string, direction domain.Direction) bool {
	if direction != domain.DirectionExpense {
		return false
	}
	value := accounting.ParseAmount(amount)
	if !value.IsPositive() {
		return false
	}
	if value.GreaterThan(h.threshold) {
		return true
	}
	titleLower := strings.ToLower(title)
	for _, m := range h.merchants {
		if strings.Contains(titleLower, m) {
			return true
		}
	}
	return false
}

// ItemsFromSplit converts AI split suggestions into line items. Empty
// descriptions become "Item" and empty categories take the draft category,
// then "Other". Amounts are absolute, two decimals.
func ItemsFromSplit(result *domain.SplitResult, draftCategory string) []domain.LineItem {
	if result == nil {
		return nil
	}
	items := make([]domain.LineItem, 0, len(result.Suggestions))
	for _, s := range result.Suggestions {
		items = append(items, domain.LineItem{
			Description: firstNonEmpty(s.Description, fallbackItemLabel),
			Category:    firstNonEmpty(s.Category, draftCategory, fallbackCategory),
			Amount:      accounting.FormatAmount(s.Amount.Abs()),
		})
	}
	return items
}

// FallbackSplit divides total evenly into 2 items (3 above the large-total
// mark). The first item keeps the title and draft category, and the last one
// absorbs rounding so the items sum to total exactly.
func FallbackSplit(title, draftCategory string, total decimal.Decimal) []domain.LineItem {
	n := fallbackSplitParts
	if total.GreaterThan(DefaultSplitLargeTotal) {
		n = fallbackSplitPartsXL
	}
	parts := accounting.SplitEvenly(total, n)
	items := make([]domain.LineItem, n)
	for i, part := range parts {
		items[i] = domain.LineItem{
			Description: fallbackItemLabel + " " + strconv.Itoa(i+1),
			Category:    fallbackCategory,
			Amount:      accounting.FormatAmount(part),
		}
	}
	items[0].Description = title
	if draftCategory != "" {
		items[0].Category = draftCategory
	}
	return items
}

// PreservingItem reproduces the simple-mode values as a single line item.
func PreservingItem(draft domain.TransactionDraft) domain.LineItem {
	return domain.LineItem{
		Description:     draft.Title,
		Category:        firstNonEmpty(draft.Category.Name, fallbackCategory),
		Amount:          draft.Amount,
		DebitAccountID:  draft.DebitAccountID,
		CreditAccountID: draft.CreditAccountID,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
