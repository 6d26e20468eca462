package dto

import (
	"github.com/SscSPs/ledger_intake/internal/core/domain"
)

// AccountResponse is one entry of the chart of accounts.
type AccountResponse struct {
	AccountID   string             `json:"accountID"`
	Name        string             `json:"name"`
	AccountType domain.AccountType `json:"accountType"`
	IsActive    bool               `json:"isActive"`
}

// ListAccountsResponse wraps the chart of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   acc.AccountID,
		Name:        acc.Name,
		AccountType: acc.AccountType,
		IsActive:    acc.IsActive,
	}
}

// ToListAccountsResponse converts a slice of accounts.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	out := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		out[i] = ToAccountResponse(acc)
	}
	return ListAccountsResponse{Accounts: out}
}

// CreateCategoryRequest adds a custom category.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=64"`
}
