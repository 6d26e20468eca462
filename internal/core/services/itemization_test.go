package services_test

import (
	"testing"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/SscSPs/ledger_intake/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemizer_EnableSeedsOnlyWithAllThreeFields(t *testing.T) {
	tests := []struct {
		name     string
		draft    domain.TransactionDraft
		wantSeed bool
	}{
		{"all set", domain.TransactionDraft{Title: "Costco", Amount: "50", Category: domain.KnownCategory("Food")}, true},
		{"title empty", domain.TransactionDraft{Title: "", Amount: "50", Category: domain.KnownCategory("Food")}, false},
		{"amount empty", domain.TransactionDraft{Title: "Costco", Category: domain.KnownCategory("Food")}, false},
		{"category empty", domain.TransactionDraft{Title: "Costco", Amount: "50"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := services.NewItemizer()
			draft := tt.draft
			z.Enable(&draft)
			assert.Equal(t, domain.EntryItemized, draft.EntryMode)
			if tt.wantSeed {
				require.Equal(t, 1, z.Len())
				item := z.Items()[0]
				assert.Equal(t, "Costco", item.Description)
				assert.Equal(t, "50", item.Amount)
				assert.Equal(t, "Food", item.Category)
			} else {
				assert.Equal(t, 0, z.Len())
			}
		})
	}
}

func TestItemizer_DisableThenEnableRoundTrip(t *testing.T) {
	z := services.NewItemizer()
	draft := domain.TransactionDraft{Title: "Target", Amount: "80", Category: domain.KnownCategory("Shopping")}
	z.Enable(&draft)
	first := z.Items()[0].ID
	second := z.Add()
	z.Update(first, domain.LineItemCategory, "Groceries")
	z.Update(first, domain.LineItemAmount, "40.10")
	z.Update(second, domain.LineItemDescription, "Socks")
	z.Update(second, domain.LineItemAmount, "12")
	z.Update(second, domain.LineItemTax, "0.96")
	preTotal := z.Total()

	z.Disable(&draft)
	assert.Equal(t, domain.EntrySimple, draft.EntryMode)
	assert.Equal(t, 0, z.Len())
	assert.Equal(t, "Groceries", draft.Category.Name)

	z.Enable(&draft)
	require.Equal(t, 1, z.Len())
	item := z.Items()[0]
	assert.True(t, preTotal.Equal(decimal.RequireFromString(item.Amount)), "amount %s", item.Amount)
	assert.Equal(t, "Groceries", item.Category)
}

func TestItemizer_IDsAreUniqueAndMonotonic(t *testing.T) {
	z := services.NewItemizer()
	seen := map[string]bool{}
	a := z.Add()
	b := z.Add()
	z.Remove(a)
	c := z.Add()
	z.Reset()
	d := z.Add()
	for _, id := range []string{a, b, c, d} {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Equal(t, []string{"li_1", "li_2", "li_3", "li_4"}, []string{a, b, c, d})
}

func TestItemizer_UpdateAndRemoveIgnoreUnknown(t *testing.T) {
	z := services.NewItemizer()
	id := z.Add()
	assert.False(t, z.Update("nope", domain.LineItemAmount, "1"))
	assert.False(t, z.Update(id, domain.LineItemField("id"), "x"))
	z.Remove("nope")
	assert.Equal(t, 1, z.Len())

	assert.True(t, z.Update(id, domain.LineItemTip, "2"))
	item, idx, ok := z.Find(id)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "2", item.Tip)
}

func TestItemizer_Replace(t *testing.T) {
	z := services.NewItemizer()
	z.Add()
	ids := z.Replace([]domain.LineItem{{Description: "A", Amount: "1"}, {Description: "B", Amount: "2"}})
	require.Len(t, ids, 2)
	assert.Equal(t, "li_2", ids[0])
	assert.True(t, decimal.NewFromInt(3).Equal(z.Total()))
}
