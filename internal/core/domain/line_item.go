package domain

// LineItem is one itemized component of a draft.
type LineItem struct {
	ID              string `json:"id"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Amount          string `json:"amount"`
	Tax             string `json:"tax"`
	Tip             string `json:"tip"`
	DebitAccountID  string `json:"debitAccountId"`
	CreditAccountID string `json:"creditAccountId"`
}

// LineItemField names an editable field of a line item.
type LineItemField string

const (
	LineItemDescription     LineItemField = "description"
	LineItemCategory        LineItemField = "category"
	LineItemAmount          LineItemField = "amount"
	LineItemTax             LineItemField = "tax"
	LineItemTip             LineItemField = "tip"
	LineItemDebitAccountID  LineItemField = "debitAccountId"
	LineItemCreditAccountID LineItemField = "creditAccountId"
)

// IsValid reports whether the field name is editable.
func (f LineItemField) IsValid() bool {
	switch f {
	case LineItemDescription, LineItemCategory, LineItemAmount, LineItemTax, LineItemTip, LineItemDebitAccountID, LineItemCreditAccountID:
		return true
	}
	return false
}

// With returns a copy of the item with one field replaced.
func (li LineItem) With(field LineItemField, value string) LineItem {
	switch field {
	case LineItemDescription:
		li.Description = value
	case LineItemCategory:
		li.Category = value
	case LineItemAmount:
		li.Amount = value
	case LineItemTax:
		li.Tax = value
	case LineItemTip:
		li.Tip = value
	case LineItemDebitAccountID:
		li.DebitAccountID = value
	case LineItemCreditAccountID:
		li.CreditAccountID = value
	}
	return li
}
