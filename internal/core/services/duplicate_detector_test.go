package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/SscSPs/ledger_intake/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateLookupReady(t *testing.T) {
	d := domain.TransactionDraft{Intent: domain.IntentPersonalExpense, Title: "Cafe", Amount: "4.50"}
	assert.True(t, services.DuplicateLookupReady(d))

	short := d
	short.Title = " ab "
	assert.False(t, services.DuplicateLookupReady(short))

	noIntent := d
	noIntent.Intent = domain.IntentUnset
	assert.False(t, services.DuplicateLookupReady(noIntent))

	noAmount := d
	noAmount.Amount = ""
	assert.False(t, services.DuplicateLookupReady(noAmount))
}

func TestCategoryFromSimilar(t *testing.T) {
	tests := []struct {
		name    string
		similar domain.SimilarTransaction
		want    string
	}{
		{"category list first", domain.SimilarTransaction{Categories: []string{"Meals"}, CategoryName: "Food", Merchant: "Cafe"}, "Meals"},
		{"category name", domain.SimilarTransaction{CategoryName: "Food", Merchant: "Cafe"}, "Food"},
		{"plain merchant", domain.SimilarTransaction{Merchant: " Joe's Diner ", MerchantName: "JOES"}, "Joe's Diner"},
		{"merchant too long", domain.SimilarTransaction{Merchant: "A Really Long Merchant Name That Goes On", MerchantName: "Long Co"}, "Long Co"},
		{"merchant with symbols", domain.SimilarTransaction{Merchant: "SQ *CAFE#22", MerchantName: "Cafe 22"}, "Cafe 22"},
		{"merchant too short", domain.SimilarTransaction{Merchant: "AB", MerchantName: "AB Foods"}, "AB Foods"},
		{"nothing", domain.SimilarTransaction{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.CategoryFromSimilar(tt.similar))
		})
	}
}

func TestMerchantsMatch(t *testing.T) {
	assert.True(t, services.MerchantsMatch("Starbucks", "starbucks"))
	assert.True(t, services.MerchantsMatch("Starbucks", "STARBUCKS #1234"))
	assert.True(t, services.MerchantsMatch("Whole Foods Market", "Whole Foods"))
	assert.True(t, services.MerchantsMatch("Blue Bottle Coffee", "Coffee Roasters Blue Bottle"))
	assert.False(t, services.MerchantsMatch("Shell", "Chevron"))
	assert.False(t, services.MerchantsMatch("", "Chevron"))
}

func TestScoreDuplicate(t *testing.T) {
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	exact := domain.StoredTransaction{Merchant: "Cafe", Amount: decimal.RequireFromString("-4.50"), Date: day}
	assert.Equal(t, 100.0, services.ScoreDuplicate("Cafe", decimal.RequireFromString("4.50"), day, exact))

	older := domain.StoredTransaction{Merchant: "Cafe Nero", Amount: decimal.RequireFromString("4.75"), Date: day.AddDate(0, 0, -2)}
	assert.InDelta(t, 85.0, services.ScoreDuplicate("Cafe", decimal.RequireFromString("4.50"), day, older), 0.001)

	far := domain.StoredTransaction{Merchant: "Other", Amount: decimal.NewFromInt(50), Date: day.AddDate(0, 0, -30)}
	assert.Equal(t, 0.0, services.ScoreDuplicate("Cafe", decimal.RequireFromString("4.50"), day, far))
}

func TestDuplicateWindow_BestDuplicate(t *testing.T) {
	w := services.DefaultDuplicateWindow()
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	candidates := []domain.StoredTransaction{
		{TransactionID: "t1", Merchant: "Cafe Nero", Amount: decimal.RequireFromString("4.80"), Date: day.AddDate(0, 0, -3)},
		{TransactionID: "t2", Merchant: "Cafe Nero", Amount: decimal.RequireFromString("4.50"), Date: day.AddDate(0, 0, -1)},
		{TransactionID: "t3", Merchant: "Cafe Nero", Amount: decimal.RequireFromString("9.00"), Date: day},
		{TransactionID: "t4", Merchant: "Cafe Nero", Amount: decimal.RequireFromString("4.50"), Date: day.AddDate(0, 0, -8)},
		{TransactionID: "t5", Merchant: "Gas Station", Amount: decimal.RequireFromString("4.50"), Date: day},
	}
	match := w.BestDuplicate("Cafe Nero", decimal.RequireFromString("4.50"), day, candidates)
	require.NotNil(t, match)
	assert.Equal(t, "t2", match.TransactionID)
	assert.Equal(t, 1, match.DaysAgo)
	assert.Equal(t, "yesterday", match.Recency())

	assert.Nil(t, w.BestDuplicate("Bakery", decimal.RequireFromString("4.50"), day, candidates))
	assert.Equal(t, day.AddDate(0, 0, -30), w.LookbackStart(day.Add(5*time.Hour)))
}
