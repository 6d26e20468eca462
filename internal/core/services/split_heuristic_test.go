package services_test

import (
	"testing"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/SscSPs/ledger_intake/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldSuggestSplit(t *testing.T) {
	h := services.NewSplitHeuristic(decimal.Zero, nil)
	tests := []struct {
		name      string
		title     string
		amount    string
		direction domain.Direction
		want      bool
	}{
		{"large costco expense", "Costco", "350.00", domain.DirectionExpense, true},
		{"large unknown merchant", "Joe's Garage", "200.01", domain.DirectionExpense, true},
		{"at threshold", "Joe's Garage", "200", domain.DirectionExpense, false},
		{"listed merchant small", "WALMART #1234", "12", domain.DirectionExpense, true},
		{"income never", "Costco", "350", domain.DirectionIncome, false},
		{"no direction", "Costco", "350", domain.DirectionNone, false},
		{"zero amount", "Costco", "0", domain.DirectionExpense, false},
		{"bad amount", "Costco", "abc", domain.DirectionExpense, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.ShouldSuggestSplit(tt.title, tt.amount, tt.direction))
		})
	}
}

func TestShouldSuggestSplit_CustomMerchants(t *testing.T) {
	h := services.NewSplitHeuristic(decimal.NewFromInt(1000), []string{" Trader Joe's "})
	assert.True(t, h.ShouldSuggestSplit("trader joe's", "20", domain.DirectionExpense))
	assert.False(t, h.ShouldSuggestSplit("Costco", "300", domain.DirectionExpense))
}

func TestFallbackSplit(t *testing.T) {
	items := services.FallbackSplit("Costco", "Groceries", decimal.NewFromInt(150))
	require.Len(t, items, 2)
	assert.Equal(t, "Costco", items[0].Description)
	assert.Equal(t, "Groceries", items[0].Category)
	assert.Equal(t, "Item 2", items[1].Description)
	assert.Equal(t, "Other", items[1].Category)
	assert.Equal(t, "75.00", items[0].Amount)
	assert.Equal(t, "75.00", items[1].Amount)

	large := services.FallbackSplit("Costco", "", decimal.RequireFromString("600.01"))
	require.Len(t, large, 3)
	assert.Equal(t, "Other", large[0].Category)
	sum := decimal.Zero
	for _, it := range large {
		sum = sum.Add(decimal.RequireFromString(it.Amount))
	}
	assert.True(t, decimal.RequireFromString("600.01").Equal(sum))
	assert.Equal(t, "200.01", large[2].Amount)
}

func TestItemsFromSplit(t *testing.T) {
	result := &domain.SplitResult{Suggestions: []domain.SplitItem{
		{Description: "Produce", Category: "Groceries", Amount: decimal.RequireFromString("-40.456")},
		{Amount: decimal.NewFromInt(-10)},
	}}
	items := services.ItemsFromSplit(result, "Shopping")
	require.Len(t, items, 2)
	assert.Equal(t, "40.46", items[0].Amount)
	assert.Equal(t, "Item", items[1].Description)
	assert.Equal(t, "Shopping", items[1].Category)
	assert.Equal(t, "10.00", items[1].Amount)

	assert.Equal(t, "Other", services.ItemsFromSplit(result, "")[1].Category)
	assert.Nil(t, services.ItemsFromSplit(nil, ""))
}

func TestPreservingItem(t *testing.T) {
	item := services.PreservingItem(domain.TransactionDraft{Title: "Costco", Amount: "abc"})
	assert.Equal(t, "Costco", item.Description)
	assert.Equal(t, "Other", item.Category)
	assert.Equal(t, "abc", item.Amount)
}
