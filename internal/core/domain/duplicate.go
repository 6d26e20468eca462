package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DuplicateMatch describes a prior transaction that may be the same event. Advisory only.
type DuplicateMatch struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Merchant      string          `json:"merchant"`
	Date          time.Time       `json:"date"`
	DaysAgo       int             `json:"daysAgo"`
	MatchScore    float64         `json:"matchScore"`
}

// Recency renders DaysAgo as "today", "yesterday" or "N days ago".
func (m DuplicateMatch) Recency() string {
	switch m.DaysAgo {
	case 0:
		return "today"
	case 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", m.DaysAgo)
	}
}

// SimilarTransaction is a prior transaction used only to pre-fill the category.
type SimilarTransaction struct {
	TransactionID string   `json:"transactionId"`
	Categories    []string `json:"category"`
	CategoryName  string   `json:"categoryName"`
	Merchant      string   `json:"merchant"`
	MerchantName  string   `json:"merchantName"`
}

// SimilarQuery is the lookup key for similar transactions.
type SimilarQuery struct {
	Merchant    string `json:"merchant"`
	Description string `json:"description"`
	Limit       int    `json:"limit"`
}

// StoredTransaction is a historical transaction considered by duplicate scoring.
type StoredTransaction struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Merchant      string          `json:"merchant"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
}
