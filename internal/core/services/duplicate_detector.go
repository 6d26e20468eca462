package services

import (
	"regexp"
	"strings"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/SscSPs/ledger_intake/internal/utils/accounting"
)

// MinTitleLength is the shortest trimmed title that triggers history lookups.
const MinTitleLength = 3

const (
	maxMerchantCategoryLength = 30
	minMerchantCategoryLength = 3
)

var merchantCategoryPattern = regexp.MustCompile(`^[A-Za-z0-9\s&.,'-]+$`)

// TitleLongEnough reports whether the trimmed title is long enough for lookups.
func TitleLongEnough(title string) bool {
	return len([]rune(strings.TrimSpace(title))) >= MinTitleLength
}

// DuplicateLookupReady reports whether the draft carries enough to look for duplicates.
func DuplicateLookupReady(draft domain.TransactionDraft) bool {
	return TitleLongEnough(draft.Title) &&
		accounting.IsValidAmount(draft.Amount) &&
		draft.Intent.IsSet()
}

// duplicateKey identifies one duplicate lookup. A changed key makes earlier results stale.
func duplicateKey(draft domain.TransactionDraft) string {
	return strings.TrimSpace(draft.Title) + "|" +
		accounting.ParseAmount(draft.Amount).String() + "|" +
		draft.Date.Format("2006-01-02")
}

// SimilarLookupReady reports whether a similar-transaction lookup may pre-fill the category.
func SimilarLookupReady(draft domain.TransactionDraft, useAI, autoPopulated bool) bool {
	return TitleLongEnough(draft.Title) &&
		draft.Intent.IsSet() &&
		draft.Category.IsEmpty() &&
		!useAI &&
		!autoPopulated
}

// CategoryFromSimilar picks the category to copy from a similar transaction:
// explicit category list, then category name, then the merchant when it is
// short and plain, then the merchant display name.
func CategoryFromSimilar(similar domain.SimilarTransaction) string {
	for _, c := range similar.Categories {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	if strings.TrimSpace(similar.CategoryName) != "" {
		return similar.CategoryName
	}
	if merchant := strings.TrimSpace(similar.Merchant); len([]rune(merchant)) >= minMerchantCategoryLength &&
		len([]rune(merchant)) <= maxMerchantCategoryLength &&
		merchantCategoryPattern.MatchString(merchant) {
		return merchant
	}
	return strings.TrimSpace(similar.MerchantName)
}
