package domain

import "strings"

// Intent is the user's answer to "what kind of money movement is this?".
// Direction and business flag are always derived from it.
type Intent string

const (
	IntentUnset           Intent = ""
	IntentBusinessExpense Intent = "business_expense"
	IntentPersonalExpense Intent = "personal_expense"
	IntentBusinessIncome  Intent = "business_income"
	IntentPersonalIncome  Intent = "personal_income"
)

// Direction indicates whether money flows in or out.
type Direction string

const (
	DirectionNone    Direction = ""
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// IsValid reports whether the intent is one of the known values (unset included).
func (i Intent) IsValid() bool {
	switch i {
	case IntentUnset, IntentBusinessExpense, IntentPersonalExpense, IntentBusinessIncome, IntentPersonalIncome:
		return true
	}
	return false
}

// IsSet reports whether an intent has been chosen.
func (i Intent) IsSet() bool {
	return i != IntentUnset
}

// Direction derives income/expense from the intent.
func (i Intent) Direction() Direction {
	switch {
	case strings.HasSuffix(string(i), "_income"):
		return DirectionIncome
	case strings.HasSuffix(string(i), "_expense"):
		return DirectionExpense
	}
	return DirectionNone
}

// IsBusiness derives the business flag from the intent. Unset intents are not business.
func (i Intent) IsBusiness() bool {
	return strings.HasPrefix(string(i), "business_")
}

// IntentFor builds the intent matching a direction and business flag.
func IntentFor(direction Direction, isBusiness bool) Intent {
	switch {
	case direction == DirectionIncome && isBusiness:
		return IntentBusinessIncome
	case direction == DirectionIncome:
		return IntentPersonalIncome
	case direction == DirectionExpense && isBusiness:
		return IntentBusinessExpense
	case direction == DirectionExpense:
		return IntentPersonalExpense
	}
	return IntentUnset
}
