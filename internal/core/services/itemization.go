package services

import (
	"strconv"
	"strings"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/SscSPs/ledger_intake/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// Itemizer owns the ordered line items of one draft. None of its operations fail.
type Itemizer struct {
	items []domain.LineItem
	seq   uint64
}

// NewItemizer returns an empty item list.
func NewItemizer() *Itemizer {
	return &Itemizer{}
}

func (z *Itemizer) nextID() string {
	z.seq++
	return "li_" + strconv.FormatUint(z.seq, 10)
}

// Items returns a copy of the current items.
func (z *Itemizer) Items() []domain.LineItem {
	out := make([]domain.LineItem, len(z.items))
	copy(out, z.items)
	return out
}

func (z *Itemizer) Len() int {
	return len(z.items)
}

// Find returns the item with id and its position.
func (z *Itemizer) Find(id string) (domain.LineItem, int, bool) {
	for i, item := range z.items {
		if item.ID == id {
			return item, i, true
		}
	}
	return domain.LineItem{}, -1, false
}

// Total is the itemized total.
func (z *Itemizer) Total() decimal.Decimal {
	return accounting.LineItemsTotal(z.items)
}

// Enable switches the draft to itemized mode. When no items exist and title,
// amount and category are all set, one item is seeded from them.
func (z *Itemizer) Enable(draft *domain.TransactionDraft) {
	if len(z.items) == 0 &&
		strings.TrimSpace(draft.Title) != "" &&
		strings.TrimSpace(draft.Amount) != "" &&
		!draft.Category.IsEmpty() {
		z.items = append(z.items, domain.LineItem{
			ID:              z.nextID(),
			Description:     draft.Title,
			Category:        draft.Category.Name,
			Amount:          draft.Amount,
			DebitAccountID:  draft.DebitAccountID,
			CreditAccountID: draft.CreditAccountID,
		})
	}
	draft.EntryMode = domain.EntryItemized
}

// Disable collapses the items back into the draft: the amount becomes the
// itemized total and the category the first item's category, if any. Item
// detail is discarded.
func (z *Itemizer) Disable(draft *domain.TransactionDraft) {
	if len(z.items) > 0 {
		draft.Amount = accounting.FormatAmount(z.Total())
		if first := strings.TrimSpace(z.items[0].Category); first != "" {
			draft.Category = domain.KnownCategory(first)
		}
	}
	z.items = nil
	draft.EntryMode = domain.EntrySimple
}

// Add appends an empty item and returns its ID.
func (z *Itemizer) Add() string {
	item := domain.LineItem{ID: z.nextID()}
	z.items = append(z.items, item)
	return item.ID
}

// Remove drops the item with id. Unknown IDs are ignored.
func (z *Itemizer) Remove(id string) {
	for i, item := range z.items {
		if item.ID == id {
			z.items = append(z.items[:i:i], z.items[i+1:]...)
			return
		}
	}
}

// Update replaces one field of the item with id. Unknown IDs and fields are ignored.
func (z *Itemizer) Update(id string, field domain.LineItemField, value string) bool {
	if !field.IsValid() {
		return false
	}
	for i, item := range z.items {
		if item.ID == id {
			z.items[i] = item.With(field, value)
			return true
		}
	}
	return false
}

// Put replaces the whole item with the same ID, if present.
func (z *Itemizer) Put(item domain.LineItem) bool {
	for i := range z.items {
		if z.items[i].ID == item.ID {
			z.items[i] = item
			return true
		}
	}
	return false
}

// Replace swaps the whole list. Items are given fresh IDs.
func (z *Itemizer) Replace(items []domain.LineItem) []string {
	z.items = make([]domain.LineItem, 0, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		item.ID = z.nextID()
		z.items = append(z.items, item)
		ids = append(ids, item.ID)
	}
	return ids
}

// Reset clears the items. The ID sequence keeps counting so IDs never repeat in a session.
func (z *Itemizer) Reset() {
	z.items = nil
}
