package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIntent_Derivations(t *testing.T) {
	tests := []struct {
		name       string
		intent     domain.Intent
		direction  domain.Direction
		isBusiness bool
	}{
		{"business expense", domain.IntentBusinessExpense, domain.DirectionExpense, true},
		{"personal expense", domain.IntentPersonalExpense, domain.DirectionExpense, false},
		{"business income", domain.IntentBusinessIncome, domain.DirectionIncome, true},
		{"personal income", domain.IntentPersonalIncome, domain.DirectionIncome, false},
		{"unset", domain.IntentUnset, domain.DirectionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.direction, tt.intent.Direction())
			assert.Equal(t, tt.isBusiness, tt.intent.IsBusiness())
			assert.True(t, tt.intent.IsValid())
			if tt.intent.IsSet() {
				assert.Equal(t, tt.intent, domain.IntentFor(tt.direction, tt.isBusiness))
			}
		})
	}

	assert.False(t, domain.Intent("refund").IsValid())
}

func TestDuplicateMatch_Recency(t *testing.T) {
	assert.Equal(t, "today", domain.DuplicateMatch{DaysAgo: 0}.Recency())
	assert.Equal(t, "yesterday", domain.DuplicateMatch{DaysAgo: 1}.Recency())
	assert.Equal(t, "4 days ago", domain.DuplicateMatch{DaysAgo: 4}.Recency())
}

func TestCategoryValue(t *testing.T) {
	assert.True(t, domain.KnownCategory("  ").IsEmpty())
	assert.Equal(t, domain.CategoryKnown, domain.KnownCategory("Food").Kind)
	assert.Equal(t, domain.CategoryNew, domain.NewCategory("Pet Care").Kind)
	assert.Equal(t, "Pet Care", domain.NewCategory("Pet Care").String())
}

func TestCalendarDate(t *testing.T) {
	in := time.Date(2025, 3, 14, 22, 15, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), domain.CalendarDate(in))
	assert.True(t, domain.CalendarDate(time.Time{}).IsZero())
}

func TestSubmittedLineItem_Gross(t *testing.T) {
	tax := decimal.RequireFromString("1.50")
	tip := decimal.RequireFromString("2.00")
	li := domain.SubmittedLineItem{Amount: decimal.RequireFromString("10"), Tax: &tax, Tip: &tip}
	assert.True(t, li.Gross().Equal(decimal.RequireFromString("13.50")))

	bare := domain.SubmittedLineItem{Amount: decimal.RequireFromString("10")}
	assert.True(t, bare.Gross().Equal(decimal.NewFromInt(10)))
}

func TestLineItem_With(t *testing.T) {
	li := domain.LineItem{ID: "1"}
	li = li.With(domain.LineItemDescription, "Milk").With(domain.LineItemAmount, "3.20")
	assert.Equal(t, "Milk", li.Description)
	assert.Equal(t, "3.20", li.Amount)
	assert.True(t, domain.LineItemTip.IsValid())
	assert.False(t, domain.LineItemField("id").IsValid())
}
