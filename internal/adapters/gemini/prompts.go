package gemini

import (
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/shopspring/decimal"
)

const suggestionInstructions = "You are a bookkeeping assistant that categorizes transactions for double-entry accounting.\n\n" +
	"Task:\n" +
	"- Suggest up to 3 ways to record the transaction below, best first.\n" +
	"- Pick the category from the user's categories when one fits. Only propose a new category when none fits.\n" +
	"- Pick the debit and credit accounts from the chart of accounts by ID.\n" +
	"- A negative amount is money out, a positive amount is money in.\n\n" +
	"Return ONLY valid raw JSON, no Markdown, shaped as:\n" +
	"{\"suggestions\": [{\"category\": string, \"debitAccountId\": string, \"debitAccountName\": string, " +
	"\"creditAccountId\": string, \"creditAccountName\": string, \"confidence\": number between 0 and 1, " +
	"\"explanation\": string, \"isBusiness\": boolean}]}\n"

const splitInstructions = "Suggest how to split this transaction into 2-4 categories with estimated amounts. Consider:\n" +
	"- Common purchase patterns for this merchant\n" +
	"- Typical item categories\n" +
	"- Reasonable amount distributions\n\n" +
	"Return ONLY a JSON array of objects with this format:\n" +
	"[{\"description\": \"brief item description\", \"category\": \"category name\", \"amount\": number}]\n"

func buildSuggestionPrompt(req domain.SuggestionRequest, accounts []domain.Account, categories []string) string {
	var b strings.Builder
	b.WriteString(suggestionInstructions)

	b.WriteString("\nTransaction:\n")
	fmt.Fprintf(&b, "- description: %s\n", req.Description)
	if req.Merchant != "" && req.Merchant != req.Description {
		fmt.Fprintf(&b, "- merchant: %s\n", req.Merchant)
	}
	fmt.Fprintf(&b, "- amount: %s\n", req.Amount.StringFixed(2))
	if !req.Date.IsZero() {
		fmt.Fprintf(&b, "- date: %s\n", req.Date.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "- business: %t\n", req.IsBusiness)
	if req.Category != "" {
		fmt.Fprintf(&b, "- current category: %s\n", req.Category)
	}
	if req.UserDescription != "" {
		fmt.Fprintf(&b, "- user notes: %s\n", req.UserDescription)
	}
	if req.OverrideDebitAccountID != "" {
		fmt.Fprintf(&b, "- keep debit account: %s\n", req.OverrideDebitAccountID)
	}
	if req.OverrideCreditAccountID != "" {
		fmt.Fprintf(&b, "- keep credit account: %s\n", req.OverrideCreditAccountID)
	}

	if len(categories) > 0 {
		b.WriteString("\nUser's categories:\n")
		for _, c := range categories {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	if len(accounts) > 0 {
		b.WriteString("\nChart of accounts (id | name | type):\n")
		for _, a := range accounts {
			if !a.IsActive {
				continue
			}
			fmt.Fprintf(&b, "- %s | %s | %s\n", a.AccountID, a.Name, a.AccountType)
		}
	}
	return b.String()
}

func buildSplitPrompt(merchant string, amount decimal.Decimal) string {
	return fmt.Sprintf("A user is entering a transaction for $%s at %s.\n\n%sThe amounts should sum to approximately $%s.",
		amount.Abs().StringFixed(2), merchant, splitInstructions, amount.Abs().StringFixed(2))
}
